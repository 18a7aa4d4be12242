package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/octabyte/alumni-portal/otel"
	"github.com/octabyte/alumni-portal/otel/metrics"
)

const clientName = "portal-api"

type Config struct {
	BaseURL     string `validate:"required,url"`
	Timeout     time.Duration
	ServiceName string
	// HTTPClient is shared by every visitor's Client so connections are
	// pooled. When set, its own Timeout applies and Timeout is ignored.
	HTTPClient *http.Client
}

func (cfg *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
}

// Client is the REST API client of one visitor. Its bearer credential
// plays the role of the client's default Authorization header.
type Client struct {
	rest        *resty.Client
	baseURL     string
	serviceName string

	mu     sync.RWMutex
	bearer string
}

func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid api config: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg.Timeout)
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
	}

	rest := resty.NewWithClient(httpClient).
		SetBaseURL(c.baseURL).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(c.injectBearer).
		OnBeforeRequest(otel.WithTraceHeaders)
	rest.JSONMarshal = json.Marshal
	rest.JSONUnmarshal = json.Unmarshal
	c.rest = rest

	return c, nil
}

// NewHTTPClient builds the transport shared by all visitors' clients. Each
// round trip gets its own span under the operation span of Client.do.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(
			http.DefaultTransport.(*http.Transport).Clone(),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "HTTP " + r.Method
			}),
		),
	}
}

// SetBearer makes every subsequent request carry "Authorization: Bearer <token>".
func (c *Client) SetBearer(token string) {
	c.mu.Lock()
	c.bearer = token
	c.mu.Unlock()
}

// ClearBearer stops attaching any Authorization header.
func (c *Client) ClearBearer() {
	c.SetBearer("")
}

func (c *Client) Bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer
}

func (c *Client) injectBearer(_ *resty.Client, req *resty.Request) error {
	req.Header.Del("Authorization")
	if token := c.Bearer(); token != "" {
		req.SetAuthToken(token)
	}
	return nil
}

type call struct {
	op     string
	method string
	path   string
	query  map[string]string
	body   interface{}
	// file, when set, sends the request as multipart form data instead of body.
	file *upload
	out  interface{}
}

type upload struct {
	field, name string
	r           io.Reader
}

func (c *Client) do(ctx context.Context, cl call) error {
	ctx, finish := otel.StartHTTPSpan(ctx, c.serviceName, clientName, cl.op, cl.method, c.baseURL, cl.path)
	started := time.Now()

	req := c.rest.R().SetContext(ctx)
	if len(cl.query) > 0 {
		req.SetQueryParams(cl.query)
	}
	switch {
	case cl.file != nil:
		req.SetFileReader(cl.file.field, cl.file.name, cl.file.r)
	case cl.body != nil:
		req.SetHeader("Content-Type", "application/json").SetBody(cl.body)
	}

	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		finish(0, err)
		metrics.RecordAPICall(ctx, cl.op, 0, time.Since(started))
		return &Error{Op: cl.op, Err: err}
	}

	status := resp.StatusCode()
	metrics.RecordAPICall(ctx, cl.op, status, time.Since(started))

	if resp.IsError() {
		apiErr := &Error{Op: cl.op, StatusCode: status, Detail: errorDetail(resp.Body())}
		finish(status, apiErr)
		return apiErr
	}

	if cl.out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), cl.out); err != nil {
			decodeErr := &Error{Op: cl.op, StatusCode: status, Err: fmt.Errorf("decode response: %w", err)}
			finish(status, decodeErr)
			return decodeErr
		}
	}

	finish(status, nil)
	return nil
}
