package questrade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iqtrade/pkg/model"
)

var symbolIDs = map[string]int{"AAPL": 8049, "MSFT": 27426, "SPY": 34987}

// handleSymbols answers symbols?names=X with one record per known name.
func handleSymbols(m *mockAPI) {
	m.handleFunc("GET", "symbols", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("names")
		id, ok := symbolIDs[name]
		if !ok {
			writeJSON(w, http.StatusOK, `{"symbols": []}`)
			return
		}
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"symbols": [{"symbol": %q, "symbolId": %d, "currency": "USD"}]}`, name, id))
	})
}

func TestGetTickersSingleCall(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantIDs   string
		wantNames string
	}{
		{"string", "AAPL", "", "AAPL"},
		{"int", 8049, "8049", ""},
		{"string slice", []string{"AAPL"}, "", "AAPL"},
		{"int slice", []int{8049}, "8049", ""},
		{"string set", map[string]struct{}{"AAPL": {}}, "", "AAPL"},
		{"int set", map[int]bool{8049: true}, "8049", ""},
		{"entity", model.Ticker{SymbolID: 8049}, "8049", ""},
		{"mixed list", []any{"AAPL", 8049, "MSFT", 27426}, "8049,27426", "AAPL,MSFT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockAPI(t)
			m.handle("GET", "symbols", `{"symbols": [{"symbol": "AAPL", "symbolId": 8049}]}`)
			c := m.client(t)

			refs, err := Refs(tt.input)
			require.NoError(t, err)
			tickers, err := c.GetTickers(context.Background(), refs...)
			require.NoError(t, err)
			assert.Len(t, tickers, 1)

			calls := m.apiCalls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantIDs, calls[0].Query.Get("ids"))
			assert.Equal(t, tt.wantNames, calls[0].Query.Get("names"))
			if tt.wantIDs == "" {
				assert.NotContains(t, calls[0].Query, "ids")
			}
			if tt.wantNames == "" {
				assert.NotContains(t, calls[0].Query, "names")
			}
		})
	}
}

func TestGetTickersNoRefs(t *testing.T) {
	m := newMockAPI(t)
	c := m.client(t)

	tickers, err := c.GetTickers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tickers)

	_, err = c.GetTickers(context.Background(), Ref{})
	assert.ErrorIs(t, err, ErrTypeInvalid)

	assert.Empty(t, m.apiCalls())
}

func TestSearchSymbols(t *testing.T) {
	m := newMockAPI(t)
	m.handle("GET", "symbols/search", `{"symbols": [{"symbol": "BMO", "symbolId": 9292,
		"description": "BANK OF MONTREAL", "securityType": "Stock", "listingExchange": "TSX",
		"isTradable": true, "isQuotable": true, "currency": "CAD"}]}`)
	c := m.client(t)

	found, err := c.SearchSymbols(context.Background(), "BMO", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, model.ListingExchangeTSX, found[0].ListingExchange)
	assert.Equal(t, "TSX:BMO - BANK OF MONTREAL", found[0].String())

	_, err = c.SearchSymbols(context.Background(), "BMO", -1)
	require.NoError(t, err)

	calls := m.apiCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "BMO", calls[0].Query.Get("prefix"))
	assert.Equal(t, "0", calls[0].Query.Get("offset"))
	assert.NotContains(t, calls[1].Query, "offset")
}

func TestGetQuotesResolvesNames(t *testing.T) {
	m := newMockAPI(t)
	handleSymbols(m)
	m.handle("GET", "markets/quotes", `{"quotes": [
		{"symbol": "AAPL", "symbolId": 8049, "lastTradePrice": 140.5, "lastTradeTick": "Up"},
		{"symbol": "SPY", "symbolId": 34987, "lastTradePrice": 440},
		{"symbol": "MSFT", "symbolId": 27426, "lastTradePrice": 300}
	]}`)
	c := m.client(t)

	quotes, err := c.GetQuotes(context.Background(), ByName("AAPL"), ByID(34987), ByName("MSFT"))
	require.NoError(t, err)
	require.Len(t, quotes, 3)
	assert.Equal(t, model.TickTypeUp, quotes[0].LastTradeTick)

	calls := m.apiCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, "AAPL", calls[0].Query.Get("names"))
	assert.Equal(t, "MSFT", calls[1].Query.Get("names"))
	assert.Equal(t, "/v1/markets/quotes", calls[2].Path)
	assert.Equal(t, "8049,34987,27426", calls[2].Query.Get("ids"))
}

func TestGetQuotesUnknownSymbol(t *testing.T) {
	m := newMockAPI(t)
	handleSymbols(m)
	c := m.client(t)

	_, err := c.GetQuotes(context.Background(), ByName("NOPE"))
	assert.ErrorIs(t, err, ErrProtocol)
	assert.ErrorIs(t, err, ErrSymbolNotFound)
	assert.Len(t, m.apiCalls(), 1)
}

func TestGetQuotesLookupMissingKey(t *testing.T) {
	m := newMockAPI(t)
	m.handle(http.MethodGet, "symbols", `{"tickers": []}`)
	m.handle(http.MethodGet, "markets/quotes", `{"quotes": []}`)
	c := m.client(t)

	_, err := c.GetQuotes(context.Background(), ByName("AAPL"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "symbols", pe.Key)

	calls := m.apiCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/v1/symbols", calls[0].Path)
}

func TestGetQuotesNoRefs(t *testing.T) {
	m := newMockAPI(t)
	c := m.client(t)

	quotes, err := c.GetQuotes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, quotes)

	// invalid refs are rejected before any name is looked up
	_, err = c.GetQuotes(context.Background(), ByName("AAPL"), Ref{})
	assert.ErrorIs(t, err, ErrTypeInvalid)
	assert.Empty(t, m.apiCalls())
}

func TestGetOptionChain(t *testing.T) {
	m := newMockAPI(t)
	handleSymbols(m)
	m.handle("GET", "symbols/27426/options", `{"optionChain": [{
		"expiryDate": "2021-10-15T00:00:00.000000-04:00",
		"description": "MICROSOFT CORP",
		"listingExchange": "MX",
		"optionExerciseType": "American",
		"chainPerRoot": [{"optionRoot": "MSFT", "multiplier": 100, "chainPerStrikePrice": [
			{"strikePrice": 300, "callSymbolId": 100, "putSymbolId": 101}
		]}]
	}]}`)
	c := m.client(t)

	chain, err := c.GetOptionChain(context.Background(), ByName("MSFT"))
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, 100, chain[0].ByRoot["MSFT"].ByStrike[300].CallSymbolID)

	_, err = c.GetOptionChain(context.Background(), ByID(27426))
	require.NoError(t, err)
	assert.Len(t, m.apiCalls(), 3)
}

func TestGetOptionQuotes(t *testing.T) {
	m := newMockAPI(t)
	m.handle("POST", "markets/quotes/options", `{"optionQuotes": [{"underlying": "MSFT",
		"underlyingId": 27426, "symbol": "MSFT15Oct21C300.00", "symbolId": 100,
		"delta": 0.5, "openInterest": 1200}]}`)
	c := m.client(t)

	filter := model.OptionIDFilter{
		OptionType:     model.OptionTypeCall,
		UnderlyingID:   27426,
		ExpiryDate:     time.Date(2021, 10, 15, 0, 0, 0, 0, edt),
		MinStrikePrice: 290,
		MaxStrikePrice: 310,
	}
	quotes, err := c.GetOptionQuotes(context.Background(), []int{100}, []model.OptionIDFilter{filter})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "MSFT 15 Oct 2021 300.00 Call", quotes[0].DisplayName())
	assert.Equal(t, 0.5, quotes[0].Delta)

	calls := m.apiCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "application/json", calls[0].Header.Get("Content-Type"))
	assert.JSONEq(t, `{
		"optionIds": [100],
		"filters": [{
			"optionType": "Call",
			"underlyingId": "27426",
			"expiryDate": "2021-10-15T00:00:00-04:00",
			"minstrikePrice": "290.00",
			"maxstrikePrice": "310.00"
		}]
	}`, string(calls[0].Body))

	quotes, err = c.GetOptionQuotes(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, quotes)
	assert.Len(t, m.apiCalls(), 1)
}

func TestGetStrategyQuotes(t *testing.T) {
	m := newMockAPI(t)
	m.handle("POST", "markets/quotes/strategies", `{"strategyQuotes": [{"variantId": 1,
		"bidPrice": 27.2, "askPrice": null, "underlying": "MSFT", "underlyingId": 27426}]}`)
	c := m.client(t)

	variants := []model.StrategyVariantRequest{{
		VariantID: 1,
		Strategy:  model.StrategyTypeCoveredCall,
		Legs: []model.StrategyLeg{
			{SymbolID: 27426, Action: model.OrderActionBuy, Ratio: 100},
			{SymbolID: 100, Action: model.OrderActionSell, Ratio: 1},
		},
	}}
	quotes, err := c.GetStrategyQuotes(context.Background(), variants)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	require.NotNil(t, quotes[0].BidPrice)
	assert.Equal(t, 27.2, *quotes[0].BidPrice)
	assert.Nil(t, quotes[0].AskPrice)

	calls := m.apiCalls()
	require.Len(t, calls, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Body, &body))
	assert.JSONEq(t, `{"variants": [{"variantId": 1, "strategy": "CoveredCall", "legs": [
		{"symbolId": 27426, "action": "Buy", "ratio": 100},
		{"symbolId": 100, "action": "Sell", "ratio": 1}
	]}]}`, string(calls[0].Body))

	quotes, err = c.GetStrategyQuotes(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, quotes)
	assert.Len(t, m.apiCalls(), 1)
}

func TestGetCandles(t *testing.T) {
	m := newMockAPI(t)
	handleSymbols(m)
	m.handle("GET", "markets/candles/8049", `{"candles": [{"start": "2021-10-01T00:00:00.000000-04:00",
		"end": "2021-10-02T00:00:00.000000-04:00", "open": 141.9, "high": 142.9, "low": 139.1,
		"close": 142.65, "volume": 94639581, "VWAP": 141.4}]}`)
	c := m.client(t)

	start := time.Date(2021, 10, 1, 0, 0, 0, 0, edt)
	end := time.Date(2021, 10, 2, 0, 0, 0, 0, edt)
	candles, err := c.GetCandles(context.Background(), ByName("AAPL"), model.GranularityOneDay, start, end)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, 142.65, candles[0].Close)
	assert.Equal(t, int64(94639581), candles[0].Volume)

	calls := m.apiCalls()
	require.Len(t, calls, 2)
	q := calls[1].Query
	assert.Equal(t, "OneDay", q.Get("interval"))
	assert.Equal(t, "2021-10-01T00:00:00-04:00", q.Get("startTime"))
	assert.Equal(t, "2021-10-02T00:00:00-04:00", q.Get("endTime"))

	_, err = c.GetCandles(context.Background(), ByID(8049), model.GranularityUnknown, start, end)
	assert.ErrorIs(t, err, ErrTypeInvalid)
	assert.Len(t, m.apiCalls(), 2)
}

func TestStreamPorts(t *testing.T) {
	m := newMockAPI(t)
	m.handle("GET", "notifications", `{"streamPort": 10001}`)
	m.handle("GET", "markets/quotes", `{"streamPort": 10002}`)
	c := m.client(t)
	ctx := context.Background()

	port, err := c.GetNotificationsStreamPort(ctx, model.SocketModeWebSocket)
	require.NoError(t, err)
	assert.Equal(t, 10001, port)

	port, err = c.GetQuotesStreamPort(ctx, model.SocketModeRawSocket, ByID(8049), ByID(9291))
	require.NoError(t, err)
	assert.Equal(t, 10002, port)

	calls := m.apiCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "true", calls[0].Query.Get("stream"))
	assert.Equal(t, "WebSocket", calls[0].Query.Get("mode"))
	assert.Equal(t, "8049,9291", calls[1].Query.Get("ids"))
	assert.Equal(t, "RawSocket", calls[1].Query.Get("mode"))

	_, err = c.GetQuotesStreamPort(ctx, model.SocketModeRawSocket)
	assert.ErrorIs(t, err, ErrTypeInvalid)
	_, err = c.GetNotificationsStreamPort(ctx, model.SocketModeUnknown)
	assert.ErrorIs(t, err, ErrTypeInvalid)
	assert.Len(t, m.apiCalls(), 2)
}
