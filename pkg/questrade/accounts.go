package questrade

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"iqtrade/pkg/model"
)

// OrdersQuery filters GetOrders. Nil times and OrderStateFilterNone are not
// sent.
type OrdersQuery struct {
	StartTime   *time.Time
	EndTime     *time.Time
	StateFilter model.OrderStateFilter
}

func (q OrdersQuery) params() params {
	p := params{}
	if q.StartTime != nil {
		p["startTime"] = *q.StartTime
	}
	if q.EndTime != nil {
		p["endTime"] = *q.EndTime
	}
	if q.StateFilter != model.OrderStateFilterNone {
		p["stateFilter"] = q.StateFilter
	}
	return p
}

// TimeRange bounds GetExecutions. Nil ends are not sent.
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

func (r TimeRange) params() params {
	p := params{}
	if r.Start != nil {
		p["startTime"] = *r.Start
	}
	if r.End != nil {
		p["endTime"] = *r.End
	}
	return p
}

func accountPath(account string, rest string) (string, error) {
	if account == "" {
		return "", &TypeInvalidError{Arg: "account", Value: account, Reason: "empty account number"}
	}
	return "accounts/" + url.PathEscape(account) + "/" + rest, nil
}

// GetTime returns the current server time.
func (c *Client) GetTime(ctx context.Context) (time.Time, error) {
	env, err := c.request(ctx, http.MethodGet, "time", nil, nil)
	if err != nil {
		return time.Time{}, err
	}
	var t time.Time
	if err := env.decode("time", &t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// GetAccounts lists the accounts of the authorized user.
func (c *Client) GetAccounts(ctx context.Context) ([]model.Account, error) {
	env, err := c.request(ctx, http.MethodGet, "accounts", nil, nil)
	if err != nil {
		return nil, err
	}
	var accounts []model.Account
	if err := env.decode("accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetActivities returns account activity between start and end. The API
// caps the range at 31 days.
func (c *Client) GetActivities(ctx context.Context, account string, start, end time.Time) ([]model.Activity, error) {
	if start.IsZero() || end.IsZero() {
		return nil, &TypeInvalidError{Arg: "time range", Reason: "start and end are required"}
	}
	path, err := accountPath(account, "activities")
	if err != nil {
		return nil, err
	}
	env, err := c.request(ctx, http.MethodGet, path, params{"startTime": start, "endTime": end}, nil)
	if err != nil {
		return nil, err
	}
	var activities []model.Activity
	if err := env.decode("activities", &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// GetBalances returns the per-currency, combined and start of day balances.
func (c *Client) GetBalances(ctx context.Context, account string) (*model.Balances, error) {
	path, err := accountPath(account, "balances")
	if err != nil {
		return nil, err
	}
	env, err := c.request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var b model.Balances
	for _, f := range []struct {
		key string
		dst *[]model.Balance
	}{
		{"perCurrencyBalances", &b.PerCurrency},
		{"combinedBalances", &b.Combined},
		{"sodPerCurrencyBalances", &b.SODPerCurrency},
		{"sodCombinedBalances", &b.SODCombined},
	} {
		if err := env.decode(f.key, f.dst); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

func (c *Client) GetPositions(ctx context.Context, account string) ([]model.Position, error) {
	path, err := accountPath(account, "positions")
	if err != nil {
		return nil, err
	}
	env, err := c.request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var positions []model.Position
	if err := env.decode("positions", &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// GetOrders lists orders of an account. A zero query sends no parameters and
// the server applies its defaults.
func (c *Client) GetOrders(ctx context.Context, account string, q OrdersQuery) ([]model.Order, error) {
	path, err := accountPath(account, "orders")
	if err != nil {
		return nil, err
	}
	env, err := c.request(ctx, http.MethodGet, path, q.params(), nil)
	if err != nil {
		return nil, err
	}
	var orders []model.Order
	if err := env.decode("orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches a single order. An empty result is a protocol error
// wrapping ErrOrderNotFound.
func (c *Client) GetOrder(ctx context.Context, account string, orderID int) (*model.Order, error) {
	path, err := accountPath(account, "orders/"+strconv.Itoa(orderID))
	if err != nil {
		return nil, err
	}
	env, err := c.request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var orders []model.Order
	if err := env.decode("orders", &orders); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, &ProtocolError{Path: path, Err: errors.WithMessagef(ErrOrderNotFound, "order %d", orderID)}
	}
	return &orders[0], nil
}

func (c *Client) GetExecutions(ctx context.Context, account string, r TimeRange) ([]model.Execution, error) {
	path, err := accountPath(account, "executions")
	if err != nil {
		return nil, err
	}
	env, err := c.request(ctx, http.MethodGet, path, r.params(), nil)
	if err != nil {
		return nil, err
	}
	var executions []model.Execution
	if err := env.decode("executions", &executions); err != nil {
		return nil, err
	}
	return executions, nil
}
