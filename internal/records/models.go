package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/kresfloral/kres-console/internal/stock"
	"github.com/kresfloral/kres-console/pkg/enums"
	"github.com/shopspring/decimal"
)

// Product is the client-side view of an inventory row. Stock status is never
// a field here; it is always derived from category and quantity.
type Product struct {
	ID                string
	Name              string
	SKU               string
	Category          enums.Category
	StockQuantity     int
	Unit              string
	UnitPrice         decimal.Decimal
	LowStockThreshold int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (p Product) RecordID() string {
	return p.ID
}

// Status classifies the current quantity. Computed on every call so the
// store can never hold a stale badge.
func (p Product) Status() enums.StockStatus {
	return stock.Classify(p.Category, p.StockQuantity)
}

// DisplayUnit is the category-derived label shown next to the quantity.
func (p Product) DisplayUnit() string {
	return stock.DisplayUnit(p.Category)
}

// StockLabel renders the quantity the way the inventory table displays it.
func (p Product) StockLabel() string {
	return fmt.Sprintf("%d %s", p.StockQuantity, p.DisplayUnit())
}

func (p Product) validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product %s: name is required", p.ID)
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("product %s: stock quantity must not be negative", p.ID)
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("product %s: unit price must not be negative", p.ID)
	}
	return nil
}

// OrderCustomer is the customer snapshot embedded in an order.
type OrderCustomer struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
	Email     string
}

// FullName joins the split name back for display and search.
func (c OrderCustomer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Order is the client-side view of an order row.
type Order struct {
	ID            string
	Number        string
	Customer      OrderCustomer
	Items         []OrderItem
	Notes         string
	PaymentMethod enums.PaymentMethod
	PaymentStatus enums.PaymentStatus
	Status        enums.OrderStatus
	DeliveryDate  time.Time
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	CreatedAt     time.Time
}

func (o Order) RecordID() string {
	return o.ID
}

func (o Order) validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("order id is required")
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("order %s: at least one line item is required", o.ID)
	}
	return nil
}

// Customer is the client-side view of a customer row.
type Customer struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}

func (c Customer) RecordID() string {
	return c.ID
}

// FullName joins the split name for display and search.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c Customer) validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("customer id is required")
	}
	return nil
}
