package questrade

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"iqtrade/pkg/model"
)

// GetQuotes returns Level 1 quotes in the order of refs. Every name costs
// one extra symbols call to find its id before the quotes call is made.
func (c *Client) GetQuotes(ctx context.Context, refs ...Ref) ([]model.Quote, error) {
	ids, err := c.resolveIDs(ctx, refs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Quote{}, nil
	}

	env, err := c.request(ctx, http.MethodGet, "markets/quotes", params{"ids": ids}, nil)
	if err != nil {
		return nil, err
	}
	var quotes []model.Quote
	if err := env.decode("quotes", &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

func (c *Client) resolveIDs(ctx context.Context, refs []Ref) ([]int, error) {
	if err := validateRefs("tickers", refs); err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(refs))
	for _, r := range refs {
		id, err := c.resolveID(ctx, "tickers", r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type optionQuotesRequest struct {
	OptionIDs []int                  `json:"optionIds,omitempty"`
	Filters   []model.OptionIDFilter `json:"filters,omitempty"`
}

// GetOptionQuotes returns quotes and greeks for option ids, for options
// matching filters, or both. Nothing to ask for means no call.
func (c *Client) GetOptionQuotes(ctx context.Context, ids []int, filters []model.OptionIDFilter) ([]model.OptionQuote, error) {
	if len(ids) == 0 && len(filters) == 0 {
		return nil, nil
	}
	body := optionQuotesRequest{OptionIDs: ids, Filters: filters}
	env, err := c.request(ctx, http.MethodPost, "markets/quotes/options", nil, body)
	if err != nil {
		return nil, err
	}
	var quotes []model.OptionQuote
	if err := env.decode("optionQuotes", &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

type strategyQuotesRequest struct {
	Variants []model.StrategyVariantRequest `json:"variants"`
}

// GetStrategyQuotes prices multi-leg strategy variants.
func (c *Client) GetStrategyQuotes(ctx context.Context, variants []model.StrategyVariantRequest) ([]model.StrategyVariantQuote, error) {
	if len(variants) == 0 {
		return nil, nil
	}
	env, err := c.request(ctx, http.MethodPost, "markets/quotes/strategies", nil, strategyQuotesRequest{Variants: variants})
	if err != nil {
		return nil, err
	}
	var quotes []model.StrategyVariantQuote
	if err := env.decode("strategyQuotes", &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// GetCandles returns OHLC candles between start and end. The server returns
// at most 2000 candles per call.
func (c *Client) GetCandles(ctx context.Context, ref Ref, interval model.Granularity, start, end time.Time) ([]model.Candle, error) {
	if interval == model.GranularityUnknown {
		return nil, &TypeInvalidError{Arg: "interval", Value: interval, Reason: "granularity is required"}
	}
	if start.IsZero() || end.IsZero() {
		return nil, &TypeInvalidError{Arg: "time range", Reason: "start and end are required"}
	}
	id, err := c.resolveID(ctx, "ticker", ref)
	if err != nil {
		return nil, err
	}
	p := params{
		"startTime": start,
		"endTime":   end,
		"interval":  interval,
	}
	env, err := c.request(ctx, http.MethodGet, "markets/candles/"+strconv.Itoa(id), p, nil)
	if err != nil {
		return nil, err
	}
	var candles []model.Candle
	if err := env.decode("candles", &candles); err != nil {
		return nil, err
	}
	return candles, nil
}
