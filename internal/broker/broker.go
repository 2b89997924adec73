package broker

import (
	"context"

	"iqtrade/pkg/model"
	"iqtrade/pkg/questrade"
)

// Reader is the read-only brokerage surface used by reports and commands.
type Reader interface {
	// accounts
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetBalances(ctx context.Context, account string) (*model.Balances, error)
	GetPositions(ctx context.Context, account string) ([]model.Position, error)

	// market data
	GetTickers(ctx context.Context, refs ...questrade.Ref) ([]model.TickerDetails, error)
	GetQuotes(ctx context.Context, refs ...questrade.Ref) ([]model.Quote, error)
}

var _ Reader = (*questrade.Client)(nil)
