// Package gateway performs the create/update/delete/list round-trips against
// the remote backend. Every call is single-shot: no retries, no caching. The
// caller reconciles the record store from the returned records.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kresfloral/kres-console/internal/intake"
	"github.com/kresfloral/kres-console/internal/records"
	"github.com/kresfloral/kres-console/pkg/config"
	pkgerrors "github.com/kresfloral/kres-console/pkg/errors"
	"github.com/kresfloral/kres-console/pkg/logger"
	"github.com/kresfloral/kres-console/pkg/metrics"
)

var errBaseURLRequired = errors.New("backend base URL is required")

// TokenProvider supplies the anti-forgery token attached to every mutating
// call. The value comes from the page/session context and is opaque here.
type TokenProvider func() string

// Client talks to the remote backend over JSON/HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	csrfHeader string
	tokens     TokenProvider
	logg       *logger.Logger
	metrics    *metrics.GatewayMetrics
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMetrics attaches a gateway metrics recorder.
func WithMetrics(m *metrics.GatewayMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithClock overrides the time source used for generated SKUs.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a gateway client from the backend configuration.
func NewClient(cfg config.BackendConfig, tokens TokenProvider, logg *logger.Logger, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if tokens == nil {
		tokens = func() string { return cfg.CSRFToken }
	}

	client := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		csrfHeader: cfg.CSRFHeader,
		tokens:     tokens,
		logg:       logg,
		now:        time.Now,
	}
	if client.csrfHeader == "" {
		client.csrfHeader = "X-CSRFToken"
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// ListProducts fetches the full product collection.
func (c *Client) ListProducts(ctx context.Context) ([]records.Product, error) {
	const op = "list_products"
	body, err := c.do(ctx, op, http.MethodGet, "/products/list", nil)
	if err != nil {
		return nil, err
	}

	var wires []productWire
	if err := json.Unmarshal(body, &wires); err != nil {
		return nil, c.fail(ctx, op, pkgerrors.Wrap(pkgerrors.KindMalformedResponse, err, "product list did not match the expected shape"))
	}

	products := make([]records.Product, len(wires))
	for i, wire := range wires {
		products[i] = wire.toRecord()
	}
	c.metrics.IncSuccess(op)
	return products, nil
}

// GetProduct fetches one product for edit pre-population.
func (c *Client) GetProduct(ctx context.Context, id string) (records.Product, error) {
	const op = "get_product"
	env, err := c.roundTrip(ctx, op, http.MethodGet, "/products/"+url.PathEscape(id), nil)
	if err != nil {
		return records.Product{}, err
	}
	if env.Product == nil {
		return records.Product{}, c.fail(ctx, op, pkgerrors.New(pkgerrors.KindMalformedResponse, "response carried no product"))
	}
	c.metrics.IncSuccess(op)
	return env.Product.toRecord(), nil
}

// CreateProduct sends a validated product payload. New products get a
// client-generated SKU the way the console always has.
func (c *Client) CreateProduct(ctx context.Context, payload intake.ProductPayload) (records.Product, error) {
	const op = "create_product"
	req := createProductRequest{
		Name:              payload.Name,
		SKU:               "SKU-" + strconv.FormatInt(c.now().UnixMilli(), 10),
		Category:          payload.Category.String(),
		StockQuantity:     payload.StockQuantity,
		Unit:              payload.Unit,
		Price:             payload.UnitPrice,
		LowStockThreshold: payload.LowStockThreshold,
	}
	env, err := c.roundTrip(ctx, op, http.MethodPost, "/products/create", req)
	if err != nil {
		return records.Product{}, err
	}
	if env.Product == nil {
		return records.Product{}, c.fail(ctx, op, pkgerrors.New(pkgerrors.KindMalformedResponse, "response carried no product"))
	}
	c.metrics.IncSuccess(op)
	return env.Product.toRecord(), nil
}

// UpdateProduct replaces an existing product's fields.
func (c *Client) UpdateProduct(ctx context.Context, id string, payload intake.ProductPayload) (records.Product, error) {
	const op = "update_product"
	req := createProductRequest{
		Name:              payload.Name,
		Category:          payload.Category.String(),
		StockQuantity:     payload.StockQuantity,
		Unit:              payload.Unit,
		Price:             payload.UnitPrice,
		LowStockThreshold: payload.LowStockThreshold,
	}
	env, err := c.roundTrip(ctx, op, http.MethodPost, "/products/"+url.PathEscape(id)+"/update", req)
	if err != nil {
		return records.Product{}, err
	}
	if env.Product == nil {
		return records.Product{}, c.fail(ctx, op, pkgerrors.New(pkgerrors.KindMalformedResponse, "response carried no product"))
	}
	c.metrics.IncSuccess(op)
	return env.Product.toRecord(), nil
}

// UpdateStock adjusts only the stock quantity of a product.
func (c *Client) UpdateStock(ctx context.Context, id string, quantity int) (records.Product, error) {
	const op = "update_stock"
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return records.Product{}, pkgerrors.Wrap(pkgerrors.KindValidationRejected, err, "Please select a product.").WithField("product_id")
	}
	if quantity < 0 {
		return records.Product{}, pkgerrors.New(pkgerrors.KindValidationRejected, "Quantity cannot be negative.").WithField("stock_quantity")
	}
	env, err := c.roundTrip(ctx, op, http.MethodPost, "/products/update-stock", updateStockRequest{
		ProductID:     numericID,
		StockQuantity: quantity,
	})
	if err != nil {
		return records.Product{}, err
	}
	if env.Product == nil {
		return records.Product{}, c.fail(ctx, op, pkgerrors.New(pkgerrors.KindMalformedResponse, "response carried no product"))
	}
	c.metrics.IncSuccess(op)
	return env.Product.toRecord(), nil
}

// DeleteProduct removes a product. The backend treats deletion of an absent
// id as not found; duplicate submits are the session layer's concern.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	const op = "delete_product"
	if _, err := c.roundTrip(ctx, op, http.MethodDelete, "/products/"+url.PathEscape(id)+"/delete", nil); err != nil {
		return err
	}
	c.metrics.IncSuccess(op)
	return nil
}

// CreateOrder submits a validated order payload.
func (c *Client) CreateOrder(ctx context.Context, payload intake.OrderPayload) (records.Order, error) {
	const op = "create_order"
	env, err := c.roundTrip(ctx, op, http.MethodPost, "/orders/create", newCreateOrderRequest(payload))
	if err != nil {
		return records.Order{}, err
	}
	if env.Order == nil {
		return records.Order{}, c.fail(ctx, op, pkgerrors.New(pkgerrors.KindMalformedResponse, "response carried no order"))
	}
	c.metrics.IncSuccess(op)
	return env.Order.toRecord(), nil
}

// CreateCustomer registers a customer from the customers page.
func (c *Client) CreateCustomer(ctx context.Context, firstName, lastName, email, phone, address string) (records.Customer, error) {
	const op = "create_customer"
	env, err := c.roundTrip(ctx, op, http.MethodPost, "/customers/create", createCustomerRequest{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     phone,
		Address:   address,
	})
	if err != nil {
		return records.Customer{}, err
	}
	if env.Customer == nil {
		return records.Customer{}, c.fail(ctx, op, pkgerrors.New(pkgerrors.KindMalformedResponse, "response carried no customer"))
	}
	c.metrics.IncSuccess(op)
	return env.Customer.toRecord(), nil
}

// roundTrip performs a call whose response is the uniform envelope and maps
// the failure surface onto error kinds.
func (c *Client) roundTrip(ctx context.Context, op, method, path string, payload any) (*envelope, error) {
	body, err := c.do(ctx, op, method, path, payload)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, c.fail(ctx, op, pkgerrors.Wrap(pkgerrors.KindMalformedResponse, err, "response did not match the expected shape"))
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = pkgerrors.MetadataFor(pkgerrors.KindServerRejected).FallbackMessage
		}
		return nil, c.fail(ctx, op, pkgerrors.New(pkgerrors.KindServerRejected, message))
	}
	return &env, nil
}

// do issues the HTTP request and returns the raw body. Transport failures and
// non-2xx statuses are mapped here; envelope semantics are the caller's job.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	started := c.now()
	defer func() {
		c.metrics.ObserveDuration(op, c.now().Sub(started))
	}()

	var bodyReader *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, c.fail(ctx, op, pkgerrors.Wrap(pkgerrors.KindInternal, err, "encoding request"))
		}
		bodyReader = bytes.NewReader(encoded)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, c.fail(ctx, op, pkgerrors.Wrap(pkgerrors.KindInternal, err, "building request"))
	}
	req.Header.Set("Content-Type", "application/json")
	if method != http.MethodGet {
		req.Header.Set(c.csrfHeader, c.tokens())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(ctx, op, pkgerrors.Wrap(pkgerrors.KindUnreachable, err,
			pkgerrors.MetadataFor(pkgerrors.KindUnreachable).FallbackMessage))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, op, pkgerrors.Wrap(pkgerrors.KindUnreachable, err,
			pkgerrors.MetadataFor(pkgerrors.KindUnreachable).FallbackMessage))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, c.fail(ctx, op, pkgerrors.New(pkgerrors.KindNotFound, messageFrom(body,
			pkgerrors.MetadataFor(pkgerrors.KindNotFound).FallbackMessage)))
	case resp.StatusCode >= 500:
		return nil, c.fail(ctx, op, pkgerrors.New(pkgerrors.KindServerRejected, messageFrom(body,
			fmt.Sprintf("Server error %d", resp.StatusCode))))
	}
	return body, nil
}

// fail logs the mapped failure and counts it before handing it back.
func (c *Client) fail(ctx context.Context, op string, err *pkgerrors.Error) *pkgerrors.Error {
	if c.logg != nil {
		c.logg.Warn(c.logg.WithOperation(ctx, op), "backend call failed: "+err.Error())
	}
	c.metrics.IncFailure(op, string(err.Kind()))
	return err
}

// messageFrom pulls the envelope message out of an error body when present.
func messageFrom(body []byte, fallback string) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fallback
}
