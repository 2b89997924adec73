package questrade

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"iqtrade/pkg/model"
)

// GetTickers fetches symbol details. Ids and names travel in one call as the
// ids and names parameters. No refs means no call.
func (c *Client) GetTickers(ctx context.Context, refs ...Ref) ([]model.TickerDetails, error) {
	if err := validateRefs("tickers", refs); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return []model.TickerDetails{}, nil
	}

	ids, names := partition(refs)
	p := params{}
	if len(ids) > 0 {
		p["ids"] = ids
	}
	if len(names) > 0 {
		p["names"] = names
	}

	env, err := c.request(ctx, http.MethodGet, "symbols", p, nil)
	if err != nil {
		return nil, err
	}
	var tickers []model.TickerDetails
	if err := env.decode("symbols", &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

// SearchSymbols finds symbols by prefix of the ticker or any word of the
// description. A negative offset is not sent.
func (c *Client) SearchSymbols(ctx context.Context, prefix string, offset int) ([]model.Ticker, error) {
	p := params{"prefix": prefix}
	if offset >= 0 {
		p["offset"] = offset
	}
	env, err := c.request(ctx, http.MethodGet, "symbols/search", p, nil)
	if err != nil {
		return nil, err
	}
	var tickers []model.Ticker
	if err := env.decode("symbols", &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

// GetOptionChain returns the option chain of an underlying, one entry per
// expiry date in server order.
func (c *Client) GetOptionChain(ctx context.Context, ref Ref) ([]model.ChainPerExpiry, error) {
	id, err := c.resolveID(ctx, "ticker", ref)
	if err != nil {
		return nil, err
	}
	env, err := c.request(ctx, http.MethodGet, "symbols/"+strconv.Itoa(id)+"/options", nil, nil)
	if err != nil {
		return nil, err
	}
	var chain []model.ChainPerExpiry
	if err := env.decode("optionChain", &chain); err != nil {
		return nil, err
	}
	return chain, nil
}

// resolveID turns a ref into a symbol id, looking names up with one
// symbols call each.
func (c *Client) resolveID(ctx context.Context, arg string, ref Ref) (int, error) {
	if !ref.valid() {
		return 0, &TypeInvalidError{Arg: arg, Value: ref, Reason: "invalid ref"}
	}
	if id, ok := ref.ID(); ok {
		return id, nil
	}
	tickers, err := c.GetTickers(ctx, ref)
	if err != nil {
		return 0, err
	}
	if len(tickers) == 0 {
		return 0, &ProtocolError{Path: "symbols", Err: errors.WithMessagef(ErrSymbolNotFound, "%q", ref.String())}
	}
	return tickers[0].SymbolID, nil
}
