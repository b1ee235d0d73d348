package places

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/time/rate"

	"github.com/rendis/openinghours/internal/model"
)

const userAgent = "openinghours/0.1 (+places poller)"

// StatusError is a non-2xx HTTP response or a non-OK API status.
type StatusError struct {
	StatusCode int    // HTTP status, 200 when the API status field failed
	APIStatus  string // Places "status" field, empty for HTTP failures
	Message    string
}

func (e *StatusError) Error() string {
	if e.APIStatus != "" {
		if e.Message != "" {
			return fmt.Sprintf("places api status %s: %s", e.APIStatus, e.Message)
		}
		return fmt.Sprintf("places api status %s", e.APIStatus)
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// Client talks to the Places web service. It never retries.
type Client struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	language string
	limiter  *rate.Limiter
	requests atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the default utls-backed http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLanguage sets the details language parameter.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithProxy routes requests through an HTTP/SOCKS5 proxy.
func WithProxy(proxyURL string) Option {
	return func(c *Client) {
		if proxyURL == "" {
			return
		}
		c.http = newHTTPClient(proxyURL)
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		http:     newHTTPClient(""),
		baseURL:  defaultBaseURL,
		apiKey:   apiKey,
		language: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient(proxyURL string) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}

			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				host = addr
			}

			// Chrome hello with ALPN pinned to HTTP/1.1; net/http cannot
			// speak h2 over a custom TLS conn.
			spec, err := utls.UTLSIdToSpec(utls.HelloChrome_Auto)
			if err != nil {
				conn.Close()
				return nil, err
			}
			for i, ext := range spec.Extensions {
				if alpn, ok := ext.(*utls.ALPNExtension); ok {
					alpn.AlpnProtocols = []string{"http/1.1"}
					spec.Extensions[i] = alpn
					break
				}
			}

			tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloCustom)
			if err := tlsConn.ApplyPreset(&spec); err != nil {
				conn.Close()
				return nil, err
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}

	if proxyURL != "" {
		if proxyParsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyParsed)
			// the proxy owns the connection, use standard TLS through it
			transport.DialTLSContext = nil
			transport.TLSClientConfig = &tls.Config{}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   15 * time.Second,
	}
}

// FindPlace runs a text search asking only for place_id.
// locationBias is passed through verbatim when non-empty.
func (c *Client) FindPlace(ctx context.Context, input, locationBias string) (*model.FindPlaceResponse, error) {
	params := url.Values{}
	params.Set("input", input)
	for k, v := range findPlaceParams {
		params.Set(k, v)
	}
	if locationBias != "" {
		params.Set("locationbias", locationBias)
	}
	params.Set("key", c.apiKey)

	var resp model.FindPlaceResponse
	if err := c.getJSON(ctx, findPlacePath, params, &resp); err != nil {
		return nil, err
	}
	if err := checkAPIStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Details fetches the fixed details field set for a place.
func (c *Client) Details(ctx context.Context, placeID string) (*model.DetailsResponse, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", DetailsFieldsCSV)
	params.Set("key", c.apiKey)
	params.Set("language", c.language)

	var resp model.DetailsResponse
	if err := c.getJSON(ctx, detailsPath, params, &resp); err != nil {
		return nil, err
	}
	if err := checkAPIStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Requests returns how many HTTP requests this client has sent.
func (c *Client) Requests() int64 {
	return c.requests.Load()
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.requests.Add(1)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// checkAPIStatus treats anything but OK/ZERO_RESULTS as a failure. An empty
// status is accepted; some proxies strip it.
func checkAPIStatus(status, message string) error {
	switch status {
	case "", statusOK, statusZeroResults:
		return nil
	}
	return &StatusError{StatusCode: http.StatusOK, APIStatus: status, Message: message}
}
