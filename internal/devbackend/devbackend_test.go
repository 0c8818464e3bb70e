package devbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kresfloral/kres-console/internal/gateway"
	"github.com/kresfloral/kres-console/internal/intake"
	"github.com/kresfloral/kres-console/pkg/config"
	pkgerrors "github.com/kresfloral/kres-console/pkg/errors"
	"github.com/kresfloral/kres-console/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var devNow = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

var dbSeq int

// newFixture boots a fresh in-memory backend and a gateway client pointed at
// it, the same client the console ships with.
func newFixture(t *testing.T) *gateway.Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "devbackend-test", Output: io.Discard})

	dbSeq++
	db, err := Open(context.Background(), config.DevDBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:devbackend_test_%d?mode=memory&cache=shared", dbSeq),
	}, logg)
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(db, logg, WithServerClock(func() time.Time { return devNow })).Handler())
	t.Cleanup(srv.Close)

	tick := int64(0)
	client, err := gateway.NewClient(config.BackendConfig{
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		CSRFHeader: "X-CSRFToken",
	}, func() string { return "dev-token" }, logg,
		gateway.WithClock(func() time.Time {
			// Monotonic ticks keep generated SKUs distinct across calls.
			tick++
			return devNow.Add(time.Duration(tick) * time.Millisecond)
		}))
	require.NoError(t, err)
	return client
}

func TestProductLifecycle(t *testing.T) {
	client := newFixture(t)
	ctx := context.Background()

	created, err := client.CreateProduct(ctx, intake.ProductPayload{
		Name:              "Red Roses",
		Category:          "Flowers",
		StockQuantity:     150,
		Unit:              "stems",
		UnitPrice:         decimal.NewFromFloat(120.50),
		LowStockThreshold: 10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Red Roses", created.Name)

	listed, err := client.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	fetched, err := client.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, fetched.StockQuantity)

	restocked, err := client.UpdateStock(ctx, created.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, restocked.StockQuantity)

	updated, err := client.UpdateProduct(ctx, created.ID, intake.ProductPayload{
		Name:              "Premium Red Roses",
		Category:          "Flowers",
		StockQuantity:     40,
		Unit:              "stems",
		UnitPrice:         decimal.NewFromFloat(150),
		LowStockThreshold: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Premium Red Roses", updated.Name)

	require.NoError(t, client.DeleteProduct(ctx, created.ID))

	_, err = client.GetProduct(ctx, created.ID)
	assert.Equal(t, pkgerrors.KindNotFound, pkgerrors.KindOf(err))

	err = client.DeleteProduct(ctx, created.ID)
	assert.Equal(t, pkgerrors.KindNotFound, pkgerrors.KindOf(err))
}

func TestCreateOrderComputesTotalsAndNumber(t *testing.T) {
	client := newFixture(t)
	ctx := context.Background()

	order, err := client.CreateOrder(ctx, intake.OrderPayload{
		CustomerEmail:     "customer_09175551234_1741617000000@kres.local",
		CustomerFirstName: "Chloe",
		CustomerLastName:  "Elizha Borcillo",
		CustomerPhone:     "0917-555-1234",
		CustomerAddress:   "12 Sampaguita St",
		Items: []intake.ItemPayload{
			{ProductName: "2 dozen red roses", Quantity: 2, UnitPrice: decimal.NewFromInt(250)},
		},
		PaymentMethod: "gcash",
		PaymentStatus: "pending",
		DeliveryDate:  time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Tax:           decimal.NewFromInt(50),
		Discount:      decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	assert.Equal(t, "ORD-0001-20250310", order.Number)
	assert.Equal(t, "pending", order.Status.String())
	assert.Equal(t, "Chloe Elizha Borcillo", order.Customer.FullName())
	assert.Equal(t, "500", order.Subtotal.String())
	assert.Equal(t, "525", order.Total.String())
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestDuplicateCustomerEmailRejected(t *testing.T) {
	client := newFixture(t)
	ctx := context.Background()

	_, err := client.CreateCustomer(ctx, "Chloe", "Borcillo", "chloe@kres.local", "0917", "QC")
	require.NoError(t, err)

	_, err = client.CreateCustomer(ctx, "Other", "Person", "chloe@kres.local", "0918", "QC")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.KindServerRejected, typed.Kind())
	assert.Equal(t, "A customer with this email already exists", typed.Message())
}

func TestNegativeStockRejected(t *testing.T) {
	client := newFixture(t)
	ctx := context.Background()

	created, err := client.CreateProduct(ctx, intake.ProductPayload{
		Name:          "Gypsophila",
		Category:      "Fillers",
		StockQuantity: 25,
		Unit:          "bundles",
		UnitPrice:     decimal.NewFromInt(45),
	})
	require.NoError(t, err)

	// The client guards negatives itself; the server enforces the same rule
	// for callers that bypass the client.
	_, err = client.UpdateStock(ctx, created.ID, -1)
	assert.Equal(t, pkgerrors.KindValidationRejected, pkgerrors.KindOf(err))

	after, err := client.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, after.StockQuantity)
}

func TestMissingCSRFTokenRejected(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "devbackend-test", Output: io.Discard})

	dbSeq++
	db, err := Open(context.Background(), config.DevDBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:devbackend_test_%d?mode=memory&cache=shared", dbSeq),
	}, logg)
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(db, logg).Handler())
	defer srv.Close()

	bare, err := gateway.NewClient(config.BackendConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, func() string { return "" }, logg)
	require.NoError(t, err)

	_, err = bare.CreateProduct(context.Background(), intake.ProductPayload{
		Name: "Roses", Category: "Flowers", StockQuantity: 1, UnitPrice: decimal.NewFromInt(1),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.KindServerRejected, typed.Kind())
	assert.Equal(t, "Missing CSRF token", typed.Message())

	// Reads stay open.
	products, err := bare.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestDuplicateSKURejected(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "devbackend-test", Output: io.Discard})

	dbSeq++
	db, err := Open(context.Background(), config.DevDBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:devbackend_test_%d?mode=memory&cache=shared", dbSeq),
	}, logg)
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(db, logg).Handler())
	defer srv.Close()

	post := func() *http.Response {
		body := `{"name":"Roses","sku":"SKU-FIXED","category":"Flowers","stock_quantity":10,"price":100}`
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/products/create", strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-CSRFToken", "dev-token")
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		return resp
	}

	first := post()
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second := post()
	defer second.Body.Close()
	assert.Equal(t, http.StatusBadRequest, second.StatusCode)

	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(second.Body).Decode(&envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "Duplicate SKU", envelope.Message)
}
