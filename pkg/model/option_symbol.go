package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var optionSuffix = regexp.MustCompile(`^(\d\d)([A-Z][a-z][a-z])(\d\d)(C|P)(\d+\.\d\d)$`)

// OptionSymbol is a decoded option ticker such as "MSFT15Oct21C300.00".
type OptionSymbol struct {
	Underlying string
	Expiry     time.Time
	Type       OptionType
	Strike     float64
}

// ParseOptionSymbol splits an option ticker into its parts. The ticker must
// start with underlying followed by day, month abbreviation, two digit year,
// C or P and the strike with two decimals.
func ParseOptionSymbol(underlying, symbol string) (OptionSymbol, bool) {
	if underlying == "" || len(symbol) <= len(underlying) || symbol[:len(underlying)] != underlying {
		return OptionSymbol{}, false
	}
	m := optionSuffix.FindStringSubmatch(symbol[len(underlying):])
	if m == nil {
		return OptionSymbol{}, false
	}
	expiry, err := time.Parse("02 Jan 06", m[1]+" "+m[2]+" "+m[3])
	if err != nil {
		return OptionSymbol{}, false
	}
	strike, err := strconv.ParseFloat(m[5], 64)
	if err != nil {
		return OptionSymbol{}, false
	}
	typ := OptionTypeCall
	if m[4] == "P" {
		typ = OptionTypePut
	}
	return OptionSymbol{Underlying: underlying, Expiry: expiry, Type: typ, Strike: strike}, true
}

func (o OptionSymbol) String() string {
	return fmt.Sprintf("%s %s %.2f %s", o.Underlying, o.Expiry.Format("02 Jan 2006"), o.Strike, o.Type)
}
