package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

// Client performs requests and normalizes their responses. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	httpClient      *http.Client
	baseURL         *neturl.URL
	timeout         time.Duration
	validateSSL     bool
	proxyURL        string
	defaultHeaders  map[string]string
	requestIDHeader string
	logger          zerolog.Logger
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		validateSSL:    true,
		defaultHeaders: make(map[string]string),
		logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		return c
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	c.httpClient = &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}

	return c
}

// WithHTTPClient uses hc as is; transport options are then ignored.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request. Zero means no client-side limit.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithBaseURL resolves relative targets against base. An unparsable base is
// ignored.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if u, err := neturl.Parse(base); err == nil {
			c.baseURL = u
		}
	}
}

// WithRequestID sets header to a fresh UUID on every request that does not
// already carry it.
func WithRequestID(header string) ClientOption {
	return func(c *Client) {
		c.requestIDHeader = header
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

var defaultClient = NewClient()

// NiceFetch fetches target with a default client.
func NiceFetch(ctx context.Context, target string, opts *RequestOptions) (*NiceResponse, error) {
	return defaultClient.Fetch(ctx, target, opts)
}

// Fetch parses target, resolving it against the base URL when relative, and
// fetches it.
func (c *Client) Fetch(ctx context.Context, target string, opts *RequestOptions) (*NiceResponse, error) {
	u, err := c.resolve(target)
	if err != nil {
		return nil, err
	}
	return c.FetchURL(ctx, u, opts)
}

func (c *Client) resolve(target string) (*neturl.URL, error) {
	u, err := neturl.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if !u.IsAbs() && c.baseURL != nil {
		u = c.baseURL.ResolveReference(u)
	}
	return u, nil
}

// FetchURL performs one request and returns the normalized response.
// Nothing is retried. Round-trip and body read failures come back as
// *TransportError, body decoding failures as *DecodeError.
func (c *Client) FetchURL(ctx context.Context, target *neturl.URL, opts *RequestOptions) (*NiceResponse, error) {
	u := *target
	opts.applyQuery(&u)
	if err := ValidateURL(&u); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, &u, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", req.Method).Str("url", u.String()).Msg("request failed")
		return nil, &TransportError{Method: req.Method, URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	kind := ClassifyContentType(resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: u.String(), Err: err}
	}

	body, err := Decode(kind, data)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", u.String()).Stringer("kind", kind).Msg("decoding body failed")
		return nil, err
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", u.String()).
		Int("status", resp.StatusCode).
		Stringer("kind", kind).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("fetched")

	return NewNiceResponse(resp.StatusCode, resp.Header, kind, body), nil
}

func (c *Client) newRequest(ctx context.Context, u *neturl.URL, opts *RequestOptions) (*http.Request, error) {
	var body io.Reader
	if opts != nil {
		body = opts.Body
	}

	req, err := http.NewRequestWithContext(ctx, opts.method(), u.String(), body)
	if err != nil {
		return nil, err
	}

	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}
	if opts != nil {
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}
	}

	if c.requestIDHeader != "" && req.Header.Get(c.requestIDHeader) == "" {
		req.Header.Set(c.requestIDHeader, uuid.NewString())
	}

	return req, nil
}

// ValidateURL checks that a URL is absolute and uses an allowed scheme
func ValidateURL(u *neturl.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}
