// Package questrade is a typed client for the Questrade REST trading API.
//
// A Client exchanges the refresh token held in a credstore.Store for an
// access token once, at construction, and then issues authenticated calls
// against the API server returned by that exchange. There is no automatic
// re-authentication: build a new Client once the access token expires.
package questrade

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"iqtrade/pkg/credstore"
)

const (
	LoginURL         = "https://login.questrade.com"
	PracticeLoginURL = "https://practicelogin.questrade.com"

	apiVersion     = "v1"
	tokenTimeout   = 10 * time.Second
	defaultTimeout = 30 * time.Second
)

// Client is an authenticated Questrade API client. It is not safe for
// concurrent use.
type Client struct {
	store *credstore.Store
	http  *resty.Client
	log   logrus.FieldLogger

	loginURL string

	accessToken string
	tokenType   string
	apiServer   string
}

type options struct {
	loginURL   string
	httpClient *http.Client
	timeout    time.Duration
	logger     logrus.FieldLogger
	persist    bool
}

// Option configures a Client.
type Option func(*options)

// WithLoginURL overrides the OAuth host, e.g. PracticeLoginURL.
func WithLoginURL(u string) Option {
	return func(o *options) { o.loginURL = u }
}

// WithHTTPClient sets the underlying transport. The client is copied, not
// modified.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout bounds every API call. The token exchange always uses 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithPersistence controls whether a file backed configuration is rewritten
// after the refresh token rotates. Enabled by default.
func WithPersistence(persist bool) Option {
	return func(o *options) { o.persist = persist }
}

func newOptions(opts []Option) options {
	o := options{
		loginURL: LoginURL,
		timeout:  defaultTimeout,
		persist:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.logger = l
	}
	return o
}

// New loads the configuration from src and authenticates.
func New(ctx context.Context, src credstore.Source, opts ...Option) (*Client, error) {
	o := newOptions(opts)

	store, err := credstore.Load(src, o.persist)
	if err != nil {
		return nil, configError(err)
	}

	hc := &http.Client{}
	if o.httpClient != nil {
		copied := *o.httpClient
		hc = &copied
	}
	rc := resty.NewWithClient(hc).
		SetTimeout(o.timeout).
		SetRetryCount(0).
		SetLogger(o.logger).
		SetHeader("Accept", "application/json")

	c := &Client{
		store:    store,
		http:     rc,
		log:      o.logger,
		loginURL: o.loginURL,
	}
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromFile reads the JSON configuration at path and authenticates. The
// rotated refresh token is written back unless WithPersistence(false) is set.
func NewFromFile(ctx context.Context, path string, opts ...Option) (*Client, error) {
	return New(ctx, credstore.FileSource(path), opts...)
}

// NewFromMap authenticates with a copy of m. Nothing is ever written to disk
// and m is left untouched.
func NewFromMap(ctx context.Context, m map[string]any, opts ...Option) (*Client, error) {
	return New(ctx, credstore.MapSource(m), opts...)
}

func (c *Client) AccessToken() string { return c.accessToken }
func (c *Client) TokenType() string   { return c.tokenType }
func (c *Client) APIServer() string   { return c.apiServer }

// APIURL is the versioned root every endpoint path is joined to.
func (c *Client) APIURL() (*url.URL, error) {
	if !c.authenticated() {
		return nil, ErrNotAuthenticated
	}
	return url.Parse(c.apiServer + "/" + apiVersion + "/")
}

// AuthorizationHeader is the value sent in the Authorization header.
func (c *Client) AuthorizationHeader() string {
	if !c.authenticated() {
		return ""
	}
	return c.tokenType + " " + c.accessToken
}

// Config returns the configuration store, including the current refresh token.
func (c *Client) Config() *credstore.Store { return c.store }

func (c *Client) authenticated() bool {
	return c != nil && c.http != nil && c.accessToken != "" && c.apiServer != ""
}
