package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// SymbolIdentifier is implemented by every entity that carries a symbol id.
type SymbolIdentifier interface {
	GetSymbolID() int
}

// Account is one brokerage account of the authorized user
type Account struct {
	Number            string            `json:"number"`
	Type              AccountType       `json:"type"`
	Status            string            `json:"status"`
	IsPrimary         bool              `json:"isPrimary"`
	IsBilling         bool              `json:"isBilling"`
	ClientAccountType ClientAccountType `json:"clientAccountType"`
}

func (a Account) String() string {
	return a.Number + " " + a.Type.String()
}

// Activity is a single account activity (trade, dividend, deposit, ...)
type Activity struct {
	TradeDate       time.Time `json:"tradeDate"`
	TransactionDate time.Time `json:"transactionDate"`
	SettlementDate  time.Time `json:"settlementDate"`
	Action          string    `json:"action"`
	Symbol          string    `json:"symbol"`
	SymbolID        int       `json:"symbolId"`
	Description     string    `json:"description"`
	Currency        Currency  `json:"currency"`
	Quantity        float64   `json:"quantity"`
	Price           float64   `json:"price"`
	GrossAmount     float64   `json:"grossAmount"`
	Commission      float64   `json:"commission"`
	NetAmount       float64   `json:"netAmount"`
	Type            string    `json:"type"`
}

func (a Activity) GetSymbolID() int { return a.SymbolID }

// Balance is a per-currency or combined balance snapshot
type Balance struct {
	Currency          Currency `json:"currency"`
	Cash              float64  `json:"cash"`
	MarketValue       float64  `json:"marketValue"`
	TotalEquity       float64  `json:"totalEquity"`
	BuyingPower       float64  `json:"buyingPower"`
	MaintenanceExcess float64  `json:"maintenanceExcess"`
	IsRealTime        bool     `json:"isRealTime"`
}

// Balances groups the four balance views returned for an account.
// The sod prefix means start of day.
type Balances struct {
	PerCurrency    []Balance `json:"perCurrencyBalances"`
	Combined       []Balance `json:"combinedBalances"`
	SODPerCurrency []Balance `json:"sodPerCurrencyBalances"`
	SODCombined    []Balance `json:"sodCombinedBalances"`
}

// Position is an open or recently closed holding
type Position struct {
	Symbol             string  `json:"symbol"`
	SymbolID           int     `json:"symbolId"`
	OpenQuantity       float64 `json:"openQuantity"`
	ClosedQuantity     float64 `json:"closedQuantity"`
	CurrentMarketValue float64 `json:"currentMarketValue"`
	CurrentPrice       float64 `json:"currentPrice"`
	AverageEntryPrice  float64 `json:"averageEntryPrice"`
	ClosedPnL          float64 `json:"closedPnl"`
	OpenPnL            float64 `json:"openPnl"`
	DayPnL             float64 `json:"dayPnl"`
	TotalCost          float64 `json:"totalCost"`
	IsRealTime         bool    `json:"isRealTime"`
	IsUnderReorg       bool    `json:"isUnderReorg"`
}

func (p Position) GetSymbolID() int { return p.SymbolID }

// UnderlyingMultiplier is one underlying of an option deliverable.
type UnderlyingMultiplier struct {
	Multiplier         int    `json:"multiplier"`
	UnderlyingSymbol   string `json:"underlyingSymbol"`
	UnderlyingSymbolID int    `json:"underlyingSymbolId"`
}

// UnmarshalJSON accepts underlyingSymbolId both as a number and as a string.
func (u *UnderlyingMultiplier) UnmarshalJSON(data []byte) error {
	var raw struct {
		Multiplier         int         `json:"multiplier"`
		UnderlyingSymbol   string      `json:"underlyingSymbol"`
		UnderlyingSymbolID json.Number `json:"underlyingSymbolId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.Multiplier = raw.Multiplier
	u.UnderlyingSymbol = raw.UnderlyingSymbol
	u.UnderlyingSymbolID = 0
	if raw.UnderlyingSymbolID != "" {
		id, err := strconv.Atoi(raw.UnderlyingSymbolID.String())
		if err != nil {
			return fmt.Errorf("underlyingSymbolId: %w", err)
		}
		u.UnderlyingSymbolID = id
	}
	return nil
}

type OptionDeliverables struct {
	Underlyings []UnderlyingMultiplier `json:"underlyings"`
	CashInLieu  float64                `json:"cashInLieu"`
}

type MinTick struct {
	Pivot   float64 `json:"pivot"`
	MinTick float64 `json:"minTick"`
}

// Ticker is the short symbol record returned by symbol search
type Ticker struct {
	Symbol          string          `json:"symbol"`
	SymbolID        int             `json:"symbolId"`
	Description     string          `json:"description"`
	SecurityType    SecurityType    `json:"securityType"`
	ListingExchange ListingExchange `json:"listingExchange"`
	IsQuotable      bool            `json:"isQuotable"`
	IsTradable      bool            `json:"isTradable"`
	Currency        Currency        `json:"currency"`
}

func (t Ticker) GetSymbolID() int { return t.SymbolID }

func (t Ticker) String() string {
	return fmt.Sprintf("%s:%s - %s", t.ListingExchange, t.Symbol, t.Description)
}

// TickerDetails is the full symbol record
type TickerDetails struct {
	Symbol                     string             `json:"symbol"`
	SymbolID                   int                `json:"symbolId"`
	PrevDayClosePrice          float64            `json:"prevDayClosePrice"`
	HighPrice52                float64            `json:"highPrice52"`
	LowPrice52                 float64            `json:"lowPrice52"`
	AverageVol3Months          int64              `json:"averageVol3Months"`
	AverageVol20Days           int64              `json:"averageVol20Days"`
	OutstandingShares          int64              `json:"outstandingShares"`
	EPS                        float64            `json:"eps"`
	PE                         float64            `json:"pe"`
	Dividend                   float64            `json:"dividend"`
	Yield                      float64            `json:"yield"`
	ExDate                     *time.Time         `json:"exDate"`
	MarketCap                  float64            `json:"marketCap"`
	TradeUnit                  int                `json:"tradeUnit"`
	OptionType                 OptionType         `json:"optionType"`
	OptionDurationType         OptionDurationType `json:"optionDurationType"`
	OptionRoot                 string             `json:"optionRoot"`
	OptionContractDeliverables OptionDeliverables `json:"optionContractDeliverables"`
	OptionExerciseType         OptionExerciseType `json:"optionExerciseType"`
	ListingExchange            ListingExchange    `json:"listingExchange"`
	Description                string             `json:"description"`
	SecurityType               SecurityType       `json:"securityType"`
	OptionExpiryDate           *time.Time         `json:"optionExpiryDate"`
	DividendDate               *time.Time         `json:"dividendDate"`
	OptionStrikePrice          float64            `json:"optionStrikePrice"`
	IsTradable                 bool               `json:"isTradable"`
	IsQuotable                 bool               `json:"isQuotable"`
	HasOptions                 bool               `json:"hasOptions"`
	MinTicks                   []MinTick          `json:"minTicks"`
	Currency                   Currency           `json:"currency"`
	IndustrySector             string             `json:"industrySector"`
	IndustryGroup              string             `json:"industryGroup"`
	IndustrySubgroup           string             `json:"industrySubgroup"`
}

func (t TickerDetails) GetSymbolID() int { return t.SymbolID }

// DisplayName renders options as "ROOT 15 Oct 2021 300.00 Call" and anything
// else as its plain symbol.
func (t TickerDetails) DisplayName() string {
	if t.OptionExpiryDate != nil && t.OptionRoot != "" {
		return fmt.Sprintf("%s %s %.2f %s",
			t.OptionRoot, t.OptionExpiryDate.Format("02 Jan 2006"), t.OptionStrikePrice, t.OptionType)
	}
	return t.Symbol
}

func (t TickerDetails) String() string { return t.DisplayName() }

type OrderLeg struct {
	LegID            int       `json:"legId"`
	Symbol           string    `json:"symbol"`
	SymbolID         int       `json:"symbolId"`
	LegRatioQuantity int       `json:"legRatioQuantity"`
	Side             OrderSide `json:"side"`
	AvgExecPrice     float64   `json:"avgExecPrice"`
	LastExecPrice    float64   `json:"lastExecPrice"`
}

func (l OrderLeg) GetSymbolID() int { return l.SymbolID }

// Order is one order of an account. Nullable prices decode to zero.
type Order struct {
	ID                    int              `json:"id"`
	Symbol                string           `json:"symbol"`
	SymbolID              int              `json:"symbolId"`
	TotalQuantity         float64          `json:"totalQuantity"`
	OpenQuantity          float64          `json:"openQuantity"`
	FilledQuantity        float64          `json:"filledQuantity"`
	CanceledQuantity      float64          `json:"canceledQuantity"`
	Side                  OrderSide        `json:"side"`
	Type                  OrderType        `json:"orderType"`
	LimitPrice            float64          `json:"limitPrice"`
	StopPrice             float64          `json:"stopPrice"`
	IsAllOrNone           bool             `json:"isAllOrNone"`
	IsAnonymous           bool             `json:"isAnonymous"`
	IcebergQuantity       float64          `json:"icebergQuantity"`
	MinQuantity           float64          `json:"minQuantity"`
	AvgExecPrice          float64          `json:"avgExecPrice"`
	LastExecPrice         float64          `json:"lastExecPrice"`
	Source                string           `json:"source"`
	TimeInForce           OrderTimeInForce `json:"timeInForce"`
	GTDDate               *time.Time       `json:"gtdDate"`
	State                 OrderState       `json:"state"`
	ClientReason          string           `json:"clientReasonStr"`
	ChainID               int              `json:"chainId"`
	CreationTime          time.Time        `json:"creationTime"`
	UpdateTime            time.Time        `json:"updateTime"`
	Notes                 string           `json:"notes"`
	PrimaryRoute          string           `json:"primaryRoute"`
	SecondaryRoute        string           `json:"secondaryRoute"`
	OrderRoute            string           `json:"orderRoute"`
	VenueHoldingOrder     string           `json:"venueHoldingOrder"`
	CommissionCharged     float64          `json:"comissionCharged"` // sic, as spelled by the API
	ExchangeOrderID       string           `json:"exchangeOrderId"`
	IsLimitOffsetInDollar bool             `json:"isLimitOffsetInDollar"`
	PlacementCommission   float64          `json:"placementCommission"`
	Legs                  []OrderLeg       `json:"legs"`
	StrategyType          StrategyType     `json:"strategyType"`
	TriggerStopPrice      float64          `json:"triggerStopPrice"`
	OrderGroupID          int              `json:"orderGroupId"`
	OrderClass            OrderClass       `json:"orderClass"`
}

func (o Order) GetSymbolID() int { return o.SymbolID }

// PriceLabel describes the price terms of the order, e.g. "12.50 Limit".
func (o Order) PriceLabel() string {
	switch o.Type {
	case OrderTypeMarket:
		return "Market"
	case OrderTypeLimit:
		return fmt.Sprintf("%.2f Limit", o.LimitPrice)
	case OrderTypeStop:
		return fmt.Sprintf("%.2f Stop", o.StopPrice)
	case OrderTypeStopLimit:
		return fmt.Sprintf("%.2f Limit %.2f Stop", o.LimitPrice, o.StopPrice)
	case OrderTypeTrailStopInPercentage:
		return fmt.Sprintf("%.2f%% TrlStop", o.StopPrice)
	case OrderTypeTrailStopInDollar:
		return fmt.Sprintf("%.2f TrlStop", o.StopPrice)
	case OrderTypeTrailStopLimitInPercentage:
		return fmt.Sprintf("%.2f%% TrlLimit %.2f%% TrlStop", o.LimitPrice, o.StopPrice)
	case OrderTypeTrailStopLimitInDollar:
		return fmt.Sprintf("%.2f TrlLimit %.2f TrlStop", o.LimitPrice, o.StopPrice)
	case OrderTypeLimitOnOpen:
		return fmt.Sprintf("%.2f LimitOnOpen", o.LimitPrice)
	case OrderTypeLimitOnClose:
		return fmt.Sprintf("%.2f LimitOnClose", o.LimitPrice)
	}
	return "<unknown>"
}

func (o Order) String() string {
	return fmt.Sprintf("%s %g %s %s @ %s %s (%s)",
		o.Side, o.TotalQuantity, o.Symbol, o.StrategyType, o.PriceLabel(), o.TimeInForce, o.State)
}

type Execution struct {
	ID                       int       `json:"id"`
	Symbol                   string    `json:"symbol"`
	SymbolID                 int       `json:"symbolId"`
	Quantity                 float64   `json:"quantity"`
	Side                     OrderSide `json:"side"`
	Price                    float64   `json:"price"`
	OrderID                  int       `json:"orderId"`
	OrderChainID             int       `json:"orderChainId"`
	ExchangeExecID           string    `json:"exchangeExecId"`
	Timestamp                time.Time `json:"timestamp"`
	Notes                    string    `json:"notes"`
	Venue                    string    `json:"venue"`
	TotalCost                float64   `json:"totalCost"`
	OrderPlacementCommission float64   `json:"orderPlacementCommission"`
	Commission               float64   `json:"commission"`
	ExecutionFee             float64   `json:"executionFee"`
	SECFee                   float64   `json:"secFee"`
	CanadianExecutionFee     float64   `json:"canadianExecutionFee"`
	ParentID                 int       `json:"parentId"`
}

func (e Execution) GetSymbolID() int { return e.SymbolID }

// Quote is a Level 1 market data snapshot
type Quote struct {
	Symbol              string     `json:"symbol"`
	SymbolID            int        `json:"symbolId"`
	Tier                string     `json:"tier"`
	BidPrice            float64    `json:"bidPrice"`
	BidSize             int64      `json:"bidSize"`
	AskPrice            float64    `json:"askPrice"`
	AskSize             int64      `json:"askSize"`
	LastTradePriceTrHrs float64    `json:"lastTradePriceTrHrs"`
	LastTradePrice      float64    `json:"lastTradePrice"`
	LastTradeSize       int64      `json:"lastTradeSize"`
	LastTradeTick       TickType   `json:"lastTradeTick"`
	LastTradeTime       *time.Time `json:"lastTradeTime"`
	Volume              int64      `json:"volume"`
	VWAP                float64    `json:"VWAP"`
	OpenPrice           float64    `json:"openPrice"`
	HighPrice           float64    `json:"highPrice"`
	LowPrice            float64    `json:"lowPrice"`
	Delay               int        `json:"delay"`
	IsHalted            bool       `json:"isHalted"`
}

func (q Quote) GetSymbolID() int { return q.SymbolID }

func (q Quote) String() string {
	return fmt.Sprintf("%s Last: %.2f,%d; Bid: %g,%d; Ask: %g,%d; Volume: %d",
		q.Symbol, q.LastTradePrice, q.LastTradeSize, q.BidPrice, q.BidSize, q.AskPrice, q.AskSize, q.Volume)
}

// OptionQuote is a Level 1 option quote with greeks
type OptionQuote struct {
	Quote
	Underlying   string  `json:"underlying"`
	UnderlyingID int     `json:"underlyingId"`
	Volatility   float64 `json:"volatility"`
	Delta        float64 `json:"delta"`
	Gamma        float64 `json:"gamma"`
	Theta        float64 `json:"theta"`
	Vega         float64 `json:"vega"`
	Rho          float64 `json:"rho"`
	OpenInterest int64   `json:"openInterest"`
}

// DisplayName expands an option symbol like "MSFT15Oct21C300.00" into
// "MSFT 15 Oct 2021 300.00 Call". Unparseable symbols are returned as is.
func (q OptionQuote) DisplayName() string {
	sym, ok := ParseOptionSymbol(q.Underlying, q.Symbol)
	if !ok {
		return q.Symbol
	}
	return sym.String()
}

type ChainPerStrike struct {
	StrikePrice  float64 `json:"strikePrice"`
	CallSymbolID int     `json:"callSymbolId"`
	PutSymbolID  int     `json:"putSymbolId"`
}

// ChainPerRoot holds the strikes of one option root, indexed by strike price.
type ChainPerRoot struct {
	OptionRoot string                     `json:"optionRoot"`
	Strikes    []ChainPerStrike           `json:"chainPerStrikePrice"`
	Multiplier float64                    `json:"multiplier"`
	ByStrike   map[float64]ChainPerStrike `json:"-"`
}

func (c *ChainPerRoot) UnmarshalJSON(data []byte) error {
	type plain ChainPerRoot
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.ByStrike = make(map[float64]ChainPerStrike, len(p.Strikes))
	for _, s := range p.Strikes {
		p.ByStrike[s.StrikePrice] = s
	}
	*c = ChainPerRoot(p)
	return nil
}

// ChainPerExpiry holds the option roots of one expiry date, indexed by root.
type ChainPerExpiry struct {
	ExpiryDate         time.Time               `json:"expiryDate"`
	Description        string                  `json:"description"`
	ListingExchange    ListingExchange         `json:"listingExchange"`
	OptionExerciseType OptionExerciseType      `json:"optionExerciseType"`
	Roots              []ChainPerRoot          `json:"chainPerRoot"`
	ByRoot             map[string]ChainPerRoot `json:"-"`
}

func (c *ChainPerExpiry) UnmarshalJSON(data []byte) error {
	type plain ChainPerExpiry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.ByRoot = make(map[string]ChainPerRoot, len(p.Roots))
	for _, r := range p.Roots {
		p.ByRoot[r.OptionRoot] = r
	}
	*c = ChainPerExpiry(p)
	return nil
}

// OptionIDFilter selects option ids server side for option quotes.
type OptionIDFilter struct {
	OptionType     OptionType
	UnderlyingID   int
	ExpiryDate     time.Time
	MinStrikePrice float64
	MaxStrikePrice float64
}

// MarshalJSON writes the filter in the shape the API expects: ids and strikes
// as strings, strike keys in lower camel "minstrikePrice".
func (f OptionIDFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"optionType":     f.OptionType.String(),
		"underlyingId":   strconv.Itoa(f.UnderlyingID),
		"expiryDate":     FormatTime(f.ExpiryDate),
		"minstrikePrice": fmt.Sprintf("%.2f", f.MinStrikePrice),
		"maxstrikePrice": fmt.Sprintf("%.2f", f.MaxStrikePrice),
	})
}

type StrategyLeg struct {
	SymbolID int         `json:"symbolId"`
	Action   OrderAction `json:"action"`
	Ratio    int         `json:"ratio"`
}

type StrategyVariantRequest struct {
	VariantID int           `json:"variantId"`
	Strategy  StrategyType  `json:"strategy"`
	Legs      []StrategyLeg `json:"legs"`
}

// StrategyVariantQuote is the calculated quote of one strategy variant.
// Prices are nil when the market has none.
type StrategyVariantQuote struct {
	VariantID    int      `json:"variantId"`
	BidPrice     *float64 `json:"bidPrice"`
	AskPrice     *float64 `json:"askPrice"`
	Underlying   string   `json:"underlying"`
	UnderlyingID int      `json:"underlyingId"`
	OpenPrice    *float64 `json:"openPrice"`
	Volatility   float64  `json:"volatility"`
	Delta        float64  `json:"delta"`
	Gamma        float64  `json:"gamma"`
	Theta        float64  `json:"theta"`
	Vega         float64  `json:"vega"`
	Rho          float64  `json:"rho"`
	IsRealTime   bool     `json:"isRealTime"`
}

// Candle represents a single candlestick (OHLCV data)
type Candle struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
	VWAP   float64   `json:"VWAP"`
}

// FormatTime renders t the way the API expects timestamps in queries and
// bodies: ISO-8601 with a numeric offset.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func SortAccounts(accounts []Account) {
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Number < accounts[j].Number
	})
}

func SortPositions(positions []Position) {
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})
}

func SortActivities(activities []Activity) {
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].TransactionDate.Before(activities[j].TransactionDate)
	})
}
