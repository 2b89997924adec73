package questrade

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"iqtrade/pkg/credstore"
)

const tokenPath = "oauth2/token"

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	APIServer    string `json:"api_server"`
}

// authenticate trades the stored refresh token for an access token and the
// API server. The rotated refresh token is stored (and persisted when
// configured) before the new credentials are installed.
func (c *Client) authenticate(ctx context.Context) error {
	refresh, ok := c.store.GetString(credstore.RefreshTokenKey)
	if !ok || refresh == "" {
		return configError(credstore.ErrMissingKey)
	}

	ctx, cancel := context.WithTimeout(ctx, tokenTimeout)
	defer cancel()

	endpoint := strings.TrimSuffix(c.loginURL, "/") + "/" + tokenPath
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refresh,
		}).
		Get(endpoint)
	if err != nil {
		return &TransportError{Method: http.MethodGet, Path: tokenPath, Err: redact(err, endpoint)}
	}
	if !resp.IsSuccess() {
		return &TransportError{
			Method:     http.MethodGet,
			Path:       tokenPath,
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}

	var tok tokenResponse
	if err := json.Unmarshal(resp.Body(), &tok); err != nil {
		return &ProtocolError{Path: tokenPath, Err: err}
	}
	for _, f := range []struct{ key, value string }{
		{"access_token", tok.AccessToken},
		{"refresh_token", tok.RefreshToken},
		{"api_server", tok.APIServer},
	} {
		if f.value == "" {
			return &ProtocolError{Path: tokenPath, Key: f.key}
		}
	}

	if err := c.store.Set(credstore.RefreshTokenKey, tok.RefreshToken); err != nil {
		return configError(errors.Wrap(err, "store refresh token"))
	}

	c.accessToken = tok.AccessToken
	c.tokenType = tok.TokenType
	if c.tokenType == "" {
		c.tokenType = "Bearer"
	}
	c.apiServer = strings.TrimSuffix(tok.APIServer, "/")

	c.log.WithFields(logrus.Fields{
		"api_server": c.apiServer,
		"expires_in": tok.ExpiresIn,
		"persisted":  c.store.Persistent(),
	}).Debug("authenticated")
	return nil
}

// redact drops the query string, which carries the refresh token, from
// errors produced by the HTTP client.
func redact(err error, endpoint string) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: endpoint, Err: ue.Err}
	}
	return err
}
