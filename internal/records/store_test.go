package records

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kresfloral/kres-console/pkg/enums"
	"github.com/kresfloral/kres-console/pkg/logger"
	"github.com/shopspring/decimal"
)

func testStore(t *testing.T) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "records-test", Output: &buf})
	return NewStore(logg), &buf
}

func sampleProduct(id, name string, category enums.Category, quantity int) Product {
	return Product{
		ID:            id,
		Name:          name,
		Category:      category,
		StockQuantity: quantity,
		UnitPrice:     decimal.NewFromInt(120),
	}
}

func TestUpsertThenGetDerivesStatus(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	if err := store.Products.Upsert(ctx, sampleProduct("1", "Red Roses", enums.CategoryFlowers, 45)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, ok := store.Products.Get("1")
	if !ok {
		t.Fatal("expected product to be present")
	}
	if got.Status() != enums.StockStatusCritical {
		t.Fatalf("expected critical for 45 flowers, got %s", got.Status())
	}
	if got.StockLabel() != "45 stems" {
		t.Fatalf("unexpected stock label %q", got.StockLabel())
	}

	// Replacing the record re-derives from the new quantity.
	if err := store.Products.Upsert(ctx, sampleProduct("1", "Red Roses", enums.CategoryFlowers, 150)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ = store.Products.Get("1")
	if got.Status() != enums.StockStatusInStock {
		t.Fatalf("expected in stock after restock, got %s", got.Status())
	}
	if store.Products.Len() != 1 {
		t.Fatalf("expected replacement, got %d rows", store.Products.Len())
	}
}

func TestUpsertRejectsNegativeQuantity(t *testing.T) {
	store, _ := testStore(t)
	err := store.Products.Upsert(context.Background(), sampleProduct("1", "Red Roses", enums.CategoryFlowers, -5))
	if err == nil {
		t.Fatal("expected negative quantity to be rejected")
	}
	if store.Products.Len() != 0 {
		t.Fatal("rejected record must not enter the store")
	}
}

func TestLoadPreservesInsertionOrder(t *testing.T) {
	store, _ := testStore(t)
	store.Products.Load(context.Background(), []Product{
		sampleProduct("3", "Stargazer Lilies", enums.CategoryFlowers, 80),
		sampleProduct("1", "Gypsophila", enums.CategoryFillers, 15),
		sampleProduct("2", "Eucalyptus", enums.CategoryGreens, 40),
	})

	all := store.Products.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}
	wantOrder := []string{"3", "1", "2"}
	for i, want := range wantOrder {
		if all[i].ID != want {
			t.Fatalf("position %d: expected id %s, got %s", i, want, all[i].ID)
		}
	}
}

func TestLoadMalformedEmptiesAndLogs(t *testing.T) {
	store, buf := testStore(t)
	ctx := context.Background()

	store.Products.Load(ctx, []Product{sampleProduct("1", "Red Roses", enums.CategoryFlowers, 200)})
	if store.Products.Len() != 1 {
		t.Fatal("expected initial load to succeed")
	}

	store.Products.Load(ctx, []Product{
		sampleProduct("1", "Red Roses", enums.CategoryFlowers, 200),
		sampleProduct("2", "Carnations", enums.CategoryFlowers, -1),
	})
	if store.Products.Len() != 0 {
		t.Fatalf("expected malformed snapshot to empty the collection, got %d rows", store.Products.Len())
	}
	if !strings.Contains(buf.String(), "malformed snapshot") {
		t.Fatal("expected the malformed condition to be logged")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	store.Products.Load(ctx, []Product{
		sampleProduct("1", "Red Roses", enums.CategoryFlowers, 200),
		sampleProduct("2", "Carnations", enums.CategoryFlowers, 90),
	})

	store.Products.Remove("1")
	store.Products.Remove("1")
	store.Products.Remove("does-not-exist")

	if store.Products.Len() != 1 {
		t.Fatalf("expected 1 product left, got %d", store.Products.Len())
	}
	if _, ok := store.Products.Get("1"); ok {
		t.Fatal("removed product still present")
	}
	if _, ok := store.Products.Get("2"); !ok {
		t.Fatal("unrelated product vanished")
	}
}

func TestOrderValidationRequiresLineItems(t *testing.T) {
	store, _ := testStore(t)
	err := store.Orders.Upsert(context.Background(), Order{ID: "7"})
	if err == nil {
		t.Fatal("expected order without items to be rejected")
	}
}
