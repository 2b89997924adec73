package questrade

import (
	"context"
	"net/http"

	"iqtrade/pkg/model"
)

// GetNotificationsStreamPort asks the server for the port that streams order
// and execution notifications. Connecting to it is up to the caller.
func (c *Client) GetNotificationsStreamPort(ctx context.Context, mode model.SocketMode) (int, error) {
	if mode == model.SocketModeUnknown {
		return 0, &TypeInvalidError{Arg: "mode", Value: mode, Reason: "socket mode is required"}
	}
	return c.streamPort(ctx, "notifications", params{"stream": true, "mode": mode})
}

// GetQuotesStreamPort asks for the port that streams Level 1 quotes of refs.
func (c *Client) GetQuotesStreamPort(ctx context.Context, mode model.SocketMode, refs ...Ref) (int, error) {
	if mode == model.SocketModeUnknown {
		return 0, &TypeInvalidError{Arg: "mode", Value: mode, Reason: "socket mode is required"}
	}
	ids, err := c.resolveIDs(ctx, refs)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, &TypeInvalidError{Arg: "tickers", Value: refs, Reason: "at least one symbol is required"}
	}
	return c.streamPort(ctx, "markets/quotes", params{"ids": ids, "stream": true, "mode": mode})
}

func (c *Client) streamPort(ctx context.Context, path string, p params) (int, error) {
	env, err := c.request(ctx, http.MethodGet, path, p, nil)
	if err != nil {
		return 0, err
	}
	var port int
	if err := env.decode("streamPort", &port); err != nil {
		return 0, err
	}
	return port, nil
}
