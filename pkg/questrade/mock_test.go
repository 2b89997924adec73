package questrade

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"iqtrade/pkg/credstore"
)

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// mockAPI serves both the OAuth token endpoint and the versioned API from a
// single httptest server, recording every API call.
type mockAPI struct {
	srv *httptest.Server

	mu         sync.Mutex
	calls      []recorded
	tokenCalls []url.Values
	token      http.HandlerFunc
	routes     map[string]http.HandlerFunc
}

func newMockAPI(t *testing.T) *mockAPI {
	t.Helper()
	m := &mockAPI{routes: map[string]http.HandlerFunc{}}
	m.srv = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.srv.Close)
	m.token = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"access_token": "access-1",
			"token_type": "Bearer",
			"expires_in": 1800,
			"refresh_token": "refresh-2",
			"api_server": "`+m.srv.URL+`/"
		}`)
	}
	return m
}

func (m *mockAPI) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/oauth2/token" {
		m.mu.Lock()
		m.tokenCalls = append(m.tokenCalls, r.URL.Query())
		m.mu.Unlock()
		m.token(w, r)
		return
	}

	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	m.mu.Lock()
	m.calls = append(m.calls, recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	h, ok := m.routes[r.Method+" "+r.URL.Path]
	m.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// handle registers a fixed JSON response for method and API path, e.g.
// handle("GET", "accounts", `{"accounts": []}`).
func (m *mockAPI) handle(method, path, body string) {
	m.handleFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	})
}

func (m *mockAPI) handleFunc(method, path string, h http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[method+" /v1/"+path] = h
}

func (m *mockAPI) apiCalls() []recorded {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recorded(nil), m.calls...)
}

func (m *mockAPI) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLoginURL(m.srv.URL)}, opts...)
	c, err := NewFromMap(context.Background(), map[string]any{credstore.RefreshTokenKey: "refresh-1"}, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
