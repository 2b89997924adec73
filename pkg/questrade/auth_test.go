package questrade

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iqtrade/pkg/credstore"
)

func TestAuthenticate(t *testing.T) {
	m := newMockAPI(t)
	c := m.client(t)

	require.Len(t, m.tokenCalls, 1)
	assert.Equal(t, "refresh_token", m.tokenCalls[0].Get("grant_type"))
	assert.Equal(t, "refresh-1", m.tokenCalls[0].Get("refresh_token"))

	assert.Equal(t, "access-1", c.AccessToken())
	assert.Equal(t, "Bearer", c.TokenType())
	assert.Equal(t, m.srv.URL, c.APIServer())
	assert.Equal(t, "Bearer access-1", c.AuthorizationHeader())

	u, err := c.APIURL()
	require.NoError(t, err)
	assert.Equal(t, m.srv.URL+"/v1/", u.String())

	tok, _ := c.Config().GetString(credstore.RefreshTokenKey)
	assert.Equal(t, "refresh-2", tok)
	assert.Empty(t, m.apiCalls())
}

func TestAuthenticateTokenType(t *testing.T) {
	m := newMockAPI(t)
	m.token = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"access_token":"a","refresh_token":"r","api_server":"`+m.srv.URL+`"}`)
	}
	c := m.client(t)
	assert.Equal(t, "Bearer", c.TokenType())
	assert.Equal(t, m.srv.URL, c.APIServer())

	m.token = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"access_token":"a","token_type":"MAC","refresh_token":"r","api_server":"`+m.srv.URL+`/"}`)
	}
	c = m.client(t)
	assert.Equal(t, "MAC a", c.AuthorizationHeader())
}

func TestAuthenticateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantKey string
	}{
		{"bad refresh token", http.StatusBadRequest, `{"error":"invalid_grant"}`, ErrTransport, ""},
		{"server error", http.StatusInternalServerError, `oops`, ErrTransport, ""},
		{"not json", http.StatusOK, `<html></html>`, ErrProtocol, ""},
		{"missing access token", http.StatusOK, `{"refresh_token":"r","api_server":"http://x"}`, ErrProtocol, "access_token"},
		{"missing refresh token", http.StatusOK, `{"access_token":"a","api_server":"http://x"}`, ErrProtocol, "refresh_token"},
		{"missing api server", http.StatusOK, `{"access_token":"a","refresh_token":"r"}`, ErrProtocol, "api_server"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockAPI(t)
			m.token = func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}
			orig := map[string]any{credstore.RefreshTokenKey: "refresh-1"}
			c, err := NewFromMap(context.Background(), orig, WithLoginURL(m.srv.URL))
			require.Error(t, err)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tt.wantErr)

			var te *TransportError
			if tt.wantErr == ErrTransport {
				require.ErrorAs(t, err, &te)
				assert.Equal(t, tt.status, te.StatusCode)
				assert.Equal(t, tt.body, te.Body)
			}
			var pe *ProtocolError
			if tt.wantKey != "" {
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, tt.wantKey, pe.Key)
			}
			assert.NotContains(t, err.Error(), "refresh-1")
		})
	}
}

func TestAuthenticateNetworkError(t *testing.T) {
	m := newMockAPI(t)
	loginURL := m.srv.URL
	m.srv.Close()

	_, err := NewFromMap(context.Background(), map[string]any{credstore.RefreshTokenKey: "secret-token"}, WithLoginURL(loginURL))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestNewFromFilePersists(t *testing.T) {
	m := newMockAPI(t)
	path := filepath.Join(t.TempDir(), "secrets.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"iq_refresh_token":"refresh-1","account":"123"}`), 0600))

	_, err := NewFromFile(context.Background(), path, WithLoginURL(m.srv.URL))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "refresh-2", saved[credstore.RefreshTokenKey])
	assert.Equal(t, "123", saved["account"])
}

func TestNewFromFileWithoutPersistence(t *testing.T) {
	m := newMockAPI(t)
	path := filepath.Join(t.TempDir(), "secrets.json")
	original := []byte(`{"iq_refresh_token":"refresh-1"}`)
	require.NoError(t, os.WriteFile(path, original, 0600))

	c, err := NewFromFile(context.Background(), path, WithLoginURL(m.srv.URL), WithPersistence(false))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data)
	tok, _ := c.Config().GetString(credstore.RefreshTokenKey)
	assert.Equal(t, "refresh-2", tok)
}

func TestNewFromFileFailedRefreshLeavesFile(t *testing.T) {
	m := newMockAPI(t)
	m.token = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{}`)
	}
	path := filepath.Join(t.TempDir(), "secrets.json")
	original := []byte(`{"iq_refresh_token":"refresh-1"}`)
	require.NoError(t, os.WriteFile(path, original, 0600))

	_, err := NewFromFile(context.Background(), path, WithLoginURL(m.srv.URL))
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestNewFromMapDoesNotMutate(t *testing.T) {
	m := newMockAPI(t)
	orig := map[string]any{credstore.RefreshTokenKey: "refresh-1", "extra": []any{"a"}}

	c, err := NewFromMap(context.Background(), orig, WithLoginURL(m.srv.URL))
	require.NoError(t, err)

	assert.Equal(t, "refresh-1", orig[credstore.RefreshTokenKey])
	assert.False(t, c.Config().Persistent())
	snap := c.Config().Snapshot()
	assert.Equal(t, []any{"a"}, snap["extra"])
}

func TestConfigErrors(t *testing.T) {
	m := newMockAPI(t)

	_, err := NewFromMap(context.Background(), map[string]any{"other": "x"}, WithLoginURL(m.srv.URL))
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, credstore.ErrMissingKey)

	_, err = NewFromFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"), WithLoginURL(m.srv.URL))
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0600))
	_, err = NewFromFile(context.Background(), path, WithLoginURL(m.srv.URL))
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, credstore.ErrParse)

	assert.Empty(t, m.tokenCalls)
}

func TestUnauthenticatedClient(t *testing.T) {
	var c Client
	_, err := c.GetAccounts(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, c.AuthorizationHeader())

	var nilClient *Client
	_, err = nilClient.GetTime(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.APIURL()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestWithHTTPClientNotModified(t *testing.T) {
	m := newMockAPI(t)
	hc := &http.Client{}
	m.client(t, WithHTTPClient(hc))
	assert.Zero(t, hc.Timeout)
}
