package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownValue is returned when a name matches no variant of an enumeration.
var ErrUnknownValue = errors.New("unknown enumeration value")

// enum maps the variants of a closed enumeration to their wire names.
// Index 0 is the zero variant. Parse accepts its name only when the API
// sends it as a real value ("Invalid"); "Unknown" and "None" are local.
type enum[T ~int] struct {
	kind  string
	names []string
}

func (e enum[T]) String(v T) string {
	if int(v) < 0 || int(v) >= len(e.names) {
		return fmt.Sprintf("%s(%d)", e.kind, int(v))
	}
	return e.names[v]
}

// zeroOnWire is the zero variant name that the API itself uses.
const zeroOnWire = "Invalid"

func (e enum[T]) Parse(s string) (T, error) {
	first := 1
	if len(e.names) > 0 && e.names[0] == zeroOnWire {
		first = 0
	}
	for i := first; i < len(e.names); i++ {
		if e.names[i] == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownValue, e.kind, s)
}

// unmarshal decodes a JSON string; null and "" leave the zero variant.
func (e enum[T]) unmarshal(data []byte, dst *T) error {
	if string(data) == "null" {
		*dst = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%s: %w", e.kind, err)
	}
	if s == "" {
		*dst = 0
		return nil
	}
	v, err := e.Parse(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func (e enum[T]) marshal(v T) ([]byte, error) {
	return json.Marshal(e.String(v))
}

// Currency of a balance, position or listing.
type Currency int

const (
	CurrencyUnknown Currency = iota
	CurrencyUSD
	CurrencyCAD
)

var currencies = enum[Currency]{"currency", []string{"Unknown", "USD", "CAD"}}

func ParseCurrency(s string) (Currency, error)     { return currencies.Parse(s) }
func (v Currency) String() string                  { return currencies.String(v) }
func (v Currency) MarshalJSON() ([]byte, error)    { return currencies.marshal(v) }
func (v *Currency) UnmarshalJSON(data []byte) error { return currencies.unmarshal(data, v) }

// ListingExchange is the primary listing venue of a symbol.
type ListingExchange int

const (
	ListingExchangeUnknown ListingExchange = iota
	ListingExchangeTSX
	ListingExchangeTSXV
	ListingExchangeCNSX
	ListingExchangeMX
	ListingExchangeNASDAQ
	ListingExchangeNYSE
	ListingExchangeNYSEAM
	ListingExchangeARCA
	ListingExchangeOPRA
	ListingExchangePinkSheets
	ListingExchangeOTCBB
)

var listingExchanges = enum[ListingExchange]{"listing exchange", []string{
	"Unknown", "TSX", "TSXV", "CNSX", "MX", "NASDAQ", "NYSE", "NYSEAM", "ARCA", "OPRA", "PinkSheets", "OTCBB",
}}

func ParseListingExchange(s string) (ListingExchange, error) { return listingExchanges.Parse(s) }
func (v ListingExchange) String() string                     { return listingExchanges.String(v) }
func (v ListingExchange) MarshalJSON() ([]byte, error)       { return listingExchanges.marshal(v) }
func (v *ListingExchange) UnmarshalJSON(data []byte) error {
	return listingExchanges.unmarshal(data, v)
}

// AccountType is the registration type of an account.
type AccountType int

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeCash
	AccountTypeMargin
	AccountTypeTFSA
	AccountTypeRRSP
	AccountTypeSRRSP
	AccountTypeLRRSP
	AccountTypeLIRA
	AccountTypeLIF
	AccountTypeRIF
	AccountTypeSRIF
	AccountTypeLRIF
	AccountTypeRRIF
	AccountTypePRIF
	AccountTypeRESP
	AccountTypeFRESP
)

var accountTypes = enum[AccountType]{"account type", []string{
	"Unknown", "Cash", "Margin", "TFSA", "RRSP", "SRRSP", "LRRSP", "LIRA", "LIF",
	"RIF", "SRIF", "LRIF", "RRIF", "PRIF", "RESP", "FRESP",
}}

func ParseAccountType(s string) (AccountType, error) { return accountTypes.Parse(s) }
func (v AccountType) String() string                 { return accountTypes.String(v) }
func (v AccountType) MarshalJSON() ([]byte, error)   { return accountTypes.marshal(v) }
func (v *AccountType) UnmarshalJSON(data []byte) error {
	return accountTypes.unmarshal(data, v)
}

// ClientAccountType is the ownership type of an account. Wire names contain
// spaces ("Informal Trust").
type ClientAccountType int

const (
	ClientAccountTypeUnknown ClientAccountType = iota
	ClientAccountTypeIndividual
	ClientAccountTypeJoint
	ClientAccountTypeInformalTrust
	ClientAccountTypeCorporation
	ClientAccountTypeInvestmentClub
	ClientAccountTypeFormalTrust
	ClientAccountTypePartnership
	ClientAccountTypeSoleProprietorship
	ClientAccountTypeFamily
	ClientAccountTypeJointAndInformalTrust
	ClientAccountTypeInstitution
)

var clientAccountTypes = enum[ClientAccountType]{"client account type", []string{
	"Unknown", "Individual", "Joint", "Informal Trust", "Corporation", "Investment Club",
	"Formal Trust", "Partnership", "Sole Proprietorship", "Family", "Joint and Informal Trust",
	"Institution",
}}

func ParseClientAccountType(s string) (ClientAccountType, error) { return clientAccountTypes.Parse(s) }
func (v ClientAccountType) String() string                       { return clientAccountTypes.String(v) }
func (v ClientAccountType) MarshalJSON() ([]byte, error)         { return clientAccountTypes.marshal(v) }
func (v *ClientAccountType) UnmarshalJSON(data []byte) error {
	return clientAccountTypes.unmarshal(data, v)
}

// TickType is the direction of the last trade.
type TickType int

const (
	TickTypeUnknown TickType = iota
	TickTypeUp
	TickTypeDown
	TickTypeEqual
)

var tickTypes = enum[TickType]{"tick type", []string{"Unknown", "Up", "Down", "Equal"}}

func ParseTickType(s string) (TickType, error)      { return tickTypes.Parse(s) }
func (v TickType) String() string                   { return tickTypes.String(v) }
func (v TickType) MarshalJSON() ([]byte, error)     { return tickTypes.marshal(v) }
func (v *TickType) UnmarshalJSON(data []byte) error { return tickTypes.unmarshal(data, v) }

type OptionType int

const (
	OptionTypeInvalid OptionType = iota
	OptionTypeCall
	OptionTypePut
)

var optionTypes = enum[OptionType]{"option type", []string{"Invalid", "Call", "Put"}}

func ParseOptionType(s string) (OptionType, error)    { return optionTypes.Parse(s) }
func (v OptionType) String() string                   { return optionTypes.String(v) }
func (v OptionType) MarshalJSON() ([]byte, error)     { return optionTypes.marshal(v) }
func (v *OptionType) UnmarshalJSON(data []byte) error { return optionTypes.unmarshal(data, v) }

type OptionDurationType int

const (
	OptionDurationTypeInvalid OptionDurationType = iota
	OptionDurationTypeWeekly
	OptionDurationTypeMonthly
	OptionDurationTypeQuarterly
	OptionDurationTypeLEAP
)

var optionDurationTypes = enum[OptionDurationType]{"option duration type", []string{
	"Invalid", "Weekly", "Monthly", "Quarterly", "LEAP",
}}

func ParseOptionDurationType(s string) (OptionDurationType, error) { return optionDurationTypes.Parse(s) }
func (v OptionDurationType) String() string                        { return optionDurationTypes.String(v) }
func (v OptionDurationType) MarshalJSON() ([]byte, error)          { return optionDurationTypes.marshal(v) }
func (v *OptionDurationType) UnmarshalJSON(data []byte) error {
	return optionDurationTypes.unmarshal(data, v)
}

type OptionExerciseType int

const (
	OptionExerciseTypeInvalid OptionExerciseType = iota
	OptionExerciseTypeAmerican
	OptionExerciseTypeEuropean
)

var optionExerciseTypes = enum[OptionExerciseType]{"option exercise type", []string{
	"Invalid", "American", "European",
}}

func ParseOptionExerciseType(s string) (OptionExerciseType, error) { return optionExerciseTypes.Parse(s) }
func (v OptionExerciseType) String() string                        { return optionExerciseTypes.String(v) }
func (v OptionExerciseType) MarshalJSON() ([]byte, error)          { return optionExerciseTypes.marshal(v) }
func (v *OptionExerciseType) UnmarshalJSON(data []byte) error {
	return optionExerciseTypes.unmarshal(data, v)
}

type SecurityType int

const (
	SecurityTypeUnknown SecurityType = iota
	SecurityTypeStock
	SecurityTypeOption
	SecurityTypeBond
	SecurityTypeRight
	SecurityTypeGold
	SecurityTypeMutualFund
	SecurityTypeIndex
)

var securityTypes = enum[SecurityType]{"security type", []string{
	"Unknown", "Stock", "Option", "Bond", "Right", "Gold", "MutualFund", "Index",
}}

func ParseSecurityType(s string) (SecurityType, error)  { return securityTypes.Parse(s) }
func (v SecurityType) String() string                   { return securityTypes.String(v) }
func (v SecurityType) MarshalJSON() ([]byte, error)     { return securityTypes.marshal(v) }
func (v *SecurityType) UnmarshalJSON(data []byte) error { return securityTypes.unmarshal(data, v) }

// OrderStateFilter selects orders by state. The zero value sends no filter.
type OrderStateFilter int

const (
	OrderStateFilterNone OrderStateFilter = iota
	OrderStateFilterAll
	OrderStateFilterOpen
	OrderStateFilterClosed
)

var orderStateFilters = enum[OrderStateFilter]{"order state filter", []string{"None", "All", "Open", "Closed"}}

func ParseOrderStateFilter(s string) (OrderStateFilter, error) { return orderStateFilters.Parse(s) }
func (v OrderStateFilter) String() string                      { return orderStateFilters.String(v) }
func (v OrderStateFilter) MarshalJSON() ([]byte, error)        { return orderStateFilters.marshal(v) }
func (v *OrderStateFilter) UnmarshalJSON(data []byte) error {
	return orderStateFilters.unmarshal(data, v)
}

// OrderAction is the direction of a strategy leg.
type OrderAction int

const (
	OrderActionUnknown OrderAction = iota
	OrderActionBuy
	OrderActionSell
)

var orderActions = enum[OrderAction]{"order action", []string{"Unknown", "Buy", "Sell"}}

func ParseOrderAction(s string) (OrderAction, error)   { return orderActions.Parse(s) }
func (v OrderAction) String() string                   { return orderActions.String(v) }
func (v OrderAction) MarshalJSON() ([]byte, error)     { return orderActions.marshal(v) }
func (v *OrderAction) UnmarshalJSON(data []byte) error { return orderActions.unmarshal(data, v) }

type OrderSide int

const (
	OrderSideUnknown OrderSide = iota
	OrderSideBuy
	OrderSideSell
	OrderSideShort
	OrderSideCov
	OrderSideBTO
	OrderSideSTC
	OrderSideSTO
	OrderSideBTC
)

var orderSides = enum[OrderSide]{"order side", []string{
	"Unknown", "Buy", "Sell", "Short", "Cov", "BTO", "STC", "STO", "BTC",
}}

func ParseOrderSide(s string) (OrderSide, error)     { return orderSides.Parse(s) }
func (v OrderSide) String() string                   { return orderSides.String(v) }
func (v OrderSide) MarshalJSON() ([]byte, error)     { return orderSides.marshal(v) }
func (v *OrderSide) UnmarshalJSON(data []byte) error { return orderSides.unmarshal(data, v) }

type OrderType int

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeMarket
	OrderTypeLimit
	OrderTypeStop
	OrderTypeStopLimit
	OrderTypeTrailStopInPercentage
	OrderTypeTrailStopInDollar
	OrderTypeTrailStopLimitInPercentage
	OrderTypeTrailStopLimitInDollar
	OrderTypeLimitOnOpen
	OrderTypeLimitOnClose
)

var orderTypes = enum[OrderType]{"order type", []string{
	"Unknown", "Market", "Limit", "Stop", "StopLimit", "TrailStopInPercentage", "TrailStopInDollar",
	"TrailStopLimitInPercentage", "TrailStopLimitInDollar", "LimitOnOpen", "LimitOnClose",
}}

func ParseOrderType(s string) (OrderType, error)     { return orderTypes.Parse(s) }
func (v OrderType) String() string                   { return orderTypes.String(v) }
func (v OrderType) MarshalJSON() ([]byte, error)     { return orderTypes.marshal(v) }
func (v *OrderType) UnmarshalJSON(data []byte) error { return orderTypes.unmarshal(data, v) }

type OrderTimeInForce int

const (
	OrderTimeInForceUnknown OrderTimeInForce = iota
	OrderTimeInForceDay
	OrderTimeInForceGoodTillCanceled
	OrderTimeInForceGoodTillExtendedDay
	OrderTimeInForceGoodTillDate
	OrderTimeInForceImmediateOrCancel
	OrderTimeInForceFillOrKill
)

var orderTimesInForce = enum[OrderTimeInForce]{"time in force", []string{
	"Unknown", "Day", "GoodTillCanceled", "GoodTillExtendedDay", "GoodTillDate",
	"ImmediateOrCancel", "FillOrKill",
}}

func ParseOrderTimeInForce(s string) (OrderTimeInForce, error) { return orderTimesInForce.Parse(s) }
func (v OrderTimeInForce) String() string                      { return orderTimesInForce.String(v) }
func (v OrderTimeInForce) MarshalJSON() ([]byte, error)        { return orderTimesInForce.marshal(v) }
func (v *OrderTimeInForce) UnmarshalJSON(data []byte) error {
	return orderTimesInForce.unmarshal(data, v)
}

type OrderState int

const (
	OrderStateUnknown OrderState = iota
	OrderStateFailed
	OrderStatePending
	OrderStateAccepted
	OrderStateRejected
	OrderStateCancelPending
	OrderStateCanceled
	OrderStatePartialCanceled
	OrderStatePartial
	OrderStateExecuted
	OrderStateReplacePending
	OrderStateReplaced
	OrderStateStopped
	OrderStateSuspended
	OrderStateExpired
	OrderStateQueued
	OrderStateTriggered
	OrderStateActivated
	OrderStatePendingRiskReview
	OrderStateContingentOrder
)

var orderStates = enum[OrderState]{"order state", []string{
	"Unknown", "Failed", "Pending", "Accepted", "Rejected", "CancelPending", "Canceled",
	"PartialCanceled", "Partial", "Executed", "ReplacePending", "Replaced", "Stopped",
	"Suspended", "Expired", "Queued", "Triggered", "Activated", "PendingRiskReview",
	"ContingentOrder",
}}

func ParseOrderState(s string) (OrderState, error)    { return orderStates.Parse(s) }
func (v OrderState) String() string                   { return orderStates.String(v) }
func (v OrderState) MarshalJSON() ([]byte, error)     { return orderStates.marshal(v) }
func (v *OrderState) UnmarshalJSON(data []byte) error { return orderStates.unmarshal(data, v) }

// Granularity is the interval of a single candlestick.
type Granularity int

const (
	GranularityUnknown Granularity = iota
	GranularityOneMinute
	GranularityTwoMinutes
	GranularityThreeMinutes
	GranularityFourMinutes
	GranularityFiveMinutes
	GranularityTenMinutes
	GranularityFifteenMinutes
	GranularityTwentyMinutes
	GranularityHalfHour
	GranularityOneHour
	GranularityTwoHours
	GranularityFourHours
	GranularityOneDay
	GranularityOneWeek
	GranularityOneMonth
	GranularityOneYear
)

var granularities = enum[Granularity]{"granularity", []string{
	"Unknown", "OneMinute", "TwoMinutes", "ThreeMinutes", "FourMinutes", "FiveMinutes",
	"TenMinutes", "FifteenMinutes", "TwentyMinutes", "HalfHour", "OneHour", "TwoHours",
	"FourHours", "OneDay", "OneWeek", "OneMonth", "OneYear",
}}

func ParseGranularity(s string) (Granularity, error)   { return granularities.Parse(s) }
func (v Granularity) String() string                   { return granularities.String(v) }
func (v Granularity) MarshalJSON() ([]byte, error)     { return granularities.marshal(v) }
func (v *Granularity) UnmarshalJSON(data []byte) error { return granularities.unmarshal(data, v) }

type OrderClass int

const (
	OrderClassInvalid OrderClass = iota
	OrderClassPrimary
	OrderClassLimit
	OrderClassStopLoss
)

var orderClasses = enum[OrderClass]{"order class", []string{"Invalid", "Primary", "Limit", "StopLoss"}}

func ParseOrderClass(s string) (OrderClass, error)    { return orderClasses.Parse(s) }
func (v OrderClass) String() string                   { return orderClasses.String(v) }
func (v OrderClass) MarshalJSON() ([]byte, error)     { return orderClasses.marshal(v) }
func (v *OrderClass) UnmarshalJSON(data []byte) error { return orderClasses.unmarshal(data, v) }

type StrategyType int

const (
	StrategyTypeUnknown StrategyType = iota
	StrategyTypeSingleLeg
	StrategyTypeCoveredCall
	StrategyTypeMarriedPuts
	StrategyTypeVerticalCallSpread
	StrategyTypeVerticalPutSpread
	StrategyTypeCalendarCallSpread
	StrategyTypeCalendarPutSpread
	StrategyTypeDiagonalCallSpread
	StrategyTypeDiagonalPutSpread
	StrategyTypeCollar
	StrategyTypeStraddle
	StrategyTypeStrangle
	StrategyTypeButterflyCall
	StrategyTypeButterflyPut
	StrategyTypeIronButterfly
	StrategyTypeCondorCall
	StrategyTypeCustom
)

var strategyTypes = enum[StrategyType]{"strategy type", []string{
	"Unknown", "SingleLeg", "CoveredCall", "MarriedPuts", "VerticalCallSpread",
	"VerticalPutSpread", "CalendarCallSpread", "CalendarPutSpread", "DiagonalCallSpread",
	"DiagonalPutSpread", "Collar", "Straddle", "Strangle", "ButterflyCall", "ButterflyPut",
	"IronButterfly", "CondorCall", "Custom",
}}

func ParseStrategyType(s string) (StrategyType, error)  { return strategyTypes.Parse(s) }
func (v StrategyType) String() string                   { return strategyTypes.String(v) }
func (v StrategyType) MarshalJSON() ([]byte, error)     { return strategyTypes.marshal(v) }
func (v *StrategyType) UnmarshalJSON(data []byte) error { return strategyTypes.unmarshal(data, v) }

// SocketMode selects the transport of a streaming port.
type SocketMode int

const (
	SocketModeUnknown SocketMode = iota
	SocketModeRawSocket
	SocketModeWebSocket
)

var socketModes = enum[SocketMode]{"socket mode", []string{"Unknown", "RawSocket", "WebSocket"}}

func ParseSocketMode(s string) (SocketMode, error)    { return socketModes.Parse(s) }
func (v SocketMode) String() string                   { return socketModes.String(v) }
func (v SocketMode) MarshalJSON() ([]byte, error)     { return socketModes.marshal(v) }
func (v *SocketMode) UnmarshalJSON(data []byte) error { return socketModes.unmarshal(data, v) }
