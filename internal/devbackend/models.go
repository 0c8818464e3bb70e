package devbackend

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRow is the persisted product shape. Column names follow the wire
// contract so the JSON mapping stays mechanical.
type ProductRow struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"product_id"`
	Name              string          `gorm:"not null" json:"name"`
	SKU               string          `gorm:"uniqueIndex;not null" json:"sku"`
	Category          string          `gorm:"not null" json:"category"`
	StockQuantity     int             `gorm:"not null;default:0" json:"stock_quantity"`
	Unit              string          `json:"unit"`
	Price             decimal.Decimal `gorm:"type:numeric" json:"price"`
	LowStockThreshold int             `gorm:"not null;default:10" json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (ProductRow) TableName() string { return "products" }

// CustomerRow is the persisted customer shape.
type CustomerRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"customer_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

func (CustomerRow) TableName() string { return "customers" }

// OrderRow is the persisted order shape. Customer fields are denormalized the
// way the order endpoints exchange them.
type OrderRow struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"order_id"`
	OrderNumber   string          `gorm:"uniqueIndex;not null" json:"order_number"`
	Status        string          `gorm:"not null;default:pending" json:"status"`
	CustomerID    int64           `json:"-"`
	Notes         string          `json:"notes"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	DeliveryDate  string          `json:"delivery_date"`
	Subtotal      decimal.Decimal `gorm:"type:numeric" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:numeric" json:"tax"`
	Discount      decimal.Decimal `gorm:"type:numeric" json:"discount"`
	Total         decimal.Decimal `gorm:"type:numeric" json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (OrderRow) TableName() string { return "orders" }

// OrderItemRow is one line of an order.
type OrderItemRow struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID     int64           `gorm:"index;not null" json:"-"`
	ProductName string          `json:"product_name"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric" json:"unit_price"`
}

func (OrderItemRow) TableName() string { return "order_items" }
