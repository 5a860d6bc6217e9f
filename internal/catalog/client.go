package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultListRetries = 3
	listRetryBase      = 200 * time.Millisecond
)

// ErrUnexpectedStatus is returned when the catalog answers with a status code
// that carries no usable body.
var ErrUnexpectedStatus = errors.New("unexpected catalog status")

// Client talks to the remote product catalog API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	listRetries uint64
}

type option func(*Client)

// MustNewClient creates a client from catalog.base_url and catalog.timeout_seconds.
func MustNewClient(opts ...option) *Client {
	baseURL := viper.GetString("catalog.base_url")
	if baseURL == "" {
		panic("catalog.base_url is not set")
	}

	timeout := defaultTimeout
	if seconds := viper.GetInt("catalog.timeout_seconds"); seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	c, err := NewClient(baseURL, append([]option{WithHTTPClient(&http.Client{Timeout: timeout})}, opts...)...)
	if err != nil {
		panic(err)
	}

	return c
}

// NewClient creates a client for the catalog at baseURL.
func NewClient(baseURL string, opts ...option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid catalog base url: %w", err)
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: defaultTimeout},
		listRetries: defaultListRetries,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// WithHTTPClient sets the underlying HTTP client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithHTTPClient(httpClient *http.Client) option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithListRetries sets how many times a failed product listing is retried.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithListRetries(retries uint64) option {
	return func(c *Client) {
		c.listRetries = retries
	}
}

// ListProducts returns every product of the catalog. Transport errors and 5xx
// answers are retried with exponential backoff.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	ctx, span := otel.Tracer("catalog").Start(ctx, "CatalogClient.ListProducts")
	defer span.End()

	var products []Product
	backoff := retry.WithMaxRetries(c.listRetries, retry.NewExponential(listRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		products = nil
		code, err := c.do(ctx, http.MethodGet, "/api/products", nil, &products)
		if err == nil && code >= http.StatusBadRequest {
			err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, code)
		}
		if err != nil && (code == 0 || code >= http.StatusInternalServerError) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if products == nil {
		products = []Product{}
	}
	span.SetAttributes(attribute.Int("catalog.products", len(products)))

	return products, nil
}

// AddProduct asks the catalog to create p. The id of p is ignored.
func (c *Client) AddProduct(ctx context.Context, p Product) (AddResponse, error) {
	ctx, span := otel.Tracer("catalog").Start(ctx, "CatalogClient.AddProduct")
	defer span.End()

	var resp AddResponse
	code, err := c.do(ctx, http.MethodPost, "/api/addproduct", p, &resp)
	resp.HTTPStatus = code
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return resp, fmt.Errorf("failed to add product: %w", err)
	}

	slog.DebugContext(ctx, "Catalog product added", "product_id", resp.ID, "status", resp.Status, "http_status", code)

	return resp, nil
}

// EditProduct asks the catalog to overwrite the product identified by p.ID.
func (c *Client) EditProduct(ctx context.Context, p Product) (StatusResponse, error) {
	ctx, span := otel.Tracer("catalog").Start(ctx, "CatalogClient.EditProduct")
	defer span.End()

	var resp StatusResponse
	code, err := c.do(ctx, http.MethodPost, "/api/editproduct", p, &resp)
	resp.HTTPStatus = code
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return resp, fmt.Errorf("failed to edit product: %w", err)
	}

	return resp, nil
}

// DeleteProduct asks the catalog to remove the product with id.
func (c *Client) DeleteProduct(ctx context.Context, id Int) (StatusResponse, error) {
	ctx, span := otel.Tracer("catalog").Start(ctx, "CatalogClient.DeleteProduct")
	defer span.End()

	var resp StatusResponse
	path := "/api/deleteproduct?id=" + strconv.Itoa(int(id))
	code, err := c.do(ctx, http.MethodGet, path, nil, &resp)
	resp.HTTPStatus = code
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return resp, fmt.Errorf("failed to delete product: %w", err)
	}

	return resp, nil
}

// do sends one request and decodes the JSON answer into out. The HTTP status
// code is returned even when decoding fails; it is 0 when nothing was received.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		if res.StatusCode >= http.StatusBadRequest {
			return res.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
		}
		return res.StatusCode, nil
	}

	if err := decode(data, out); err != nil {
		if res.StatusCode >= http.StatusBadRequest {
			return res.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
		}
		return res.StatusCode, err
	}

	return res.StatusCode, nil
}
