package gateway

import (
	"strconv"
	"time"

	"github.com/kresfloral/kres-console/internal/intake"
	"github.com/kresfloral/kres-console/internal/records"
	"github.com/kresfloral/kres-console/pkg/enums"
	"github.com/shopspring/decimal"
)

// wireDateLayout is the calendar-date format the backend exchanges.
const wireDateLayout = "2006-01-02"

// envelope is the uniform mutation response shape. Absence of success:true is
// a handled failure, never a crash.
type envelope struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Product  *productWire  `json:"product,omitempty"`
	Order    *orderWire    `json:"order,omitempty"`
	Customer *customerWire `json:"customer,omitempty"`
}

type productWire struct {
	ProductID         int64           `json:"product_id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Category          string          `json:"category"`
	StockQuantity     int             `json:"stock_quantity"`
	Unit              string          `json:"unit"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (w productWire) toRecord() records.Product {
	return records.Product{
		ID:                strconv.FormatInt(w.ProductID, 10),
		Name:              w.Name,
		SKU:               w.SKU,
		Category:          enums.Category(w.Category),
		StockQuantity:     w.StockQuantity,
		Unit:              w.Unit,
		UnitPrice:         w.Price,
		LowStockThreshold: w.LowStockThreshold,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

type orderItemWire struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type orderWire struct {
	OrderID           int64           `json:"order_id"`
	OrderNumber       string          `json:"order_number"`
	Status            string          `json:"status"`
	CustomerFirstName string          `json:"customer_first_name"`
	CustomerLastName  string          `json:"customer_last_name"`
	CustomerPhone     string          `json:"customer_phone"`
	CustomerAddress   string          `json:"customer_address"`
	CustomerEmail     string          `json:"customer_email"`
	Items             []orderItemWire `json:"items"`
	Notes             string          `json:"notes"`
	PaymentMethod     string          `json:"payment_method"`
	PaymentStatus     string          `json:"payment_status"`
	DeliveryDate      string          `json:"delivery_date"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	Discount          decimal.Decimal `json:"discount"`
	Total             decimal.Decimal `json:"total"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (w orderWire) toRecord() records.Order {
	items := make([]records.OrderItem, len(w.Items))
	for i, item := range w.Items {
		items[i] = records.OrderItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	deliveryDate, _ := time.Parse(wireDateLayout, w.DeliveryDate)
	return records.Order{
		ID:     strconv.FormatInt(w.OrderID, 10),
		Number: w.OrderNumber,
		Customer: records.OrderCustomer{
			FirstName: w.CustomerFirstName,
			LastName:  w.CustomerLastName,
			Phone:     w.CustomerPhone,
			Address:   w.CustomerAddress,
			Email:     w.CustomerEmail,
		},
		Items:         items,
		Notes:         w.Notes,
		PaymentMethod: enums.PaymentMethod(w.PaymentMethod),
		PaymentStatus: enums.PaymentStatus(w.PaymentStatus),
		Status:        enums.OrderStatus(w.Status),
		DeliveryDate:  deliveryDate,
		Subtotal:      w.Subtotal,
		Tax:           w.Tax,
		Discount:      w.Discount,
		Total:         w.Total,
		CreatedAt:     w.CreatedAt,
	}
}

type customerWire struct {
	CustomerID int64     `json:"customer_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	CreatedAt  time.Time `json:"created_at"`
}

func (w customerWire) toRecord() records.Customer {
	return records.Customer{
		ID:        strconv.FormatInt(w.CustomerID, 10),
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Email:     w.Email,
		Phone:     w.Phone,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
	}
}

type createProductRequest struct {
	Name              string          `json:"name"`
	SKU               string          `json:"sku,omitempty"`
	Category          string          `json:"category"`
	StockQuantity     int             `json:"stock_quantity"`
	Unit              string          `json:"unit"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

type updateStockRequest struct {
	ProductID     int64 `json:"product_id"`
	StockQuantity int   `json:"stock_quantity"`
}

type createOrderRequest struct {
	CustomerEmail     string          `json:"customer_email"`
	CustomerFirstName string          `json:"customer_first_name"`
	CustomerLastName  string          `json:"customer_last_name"`
	CustomerPhone     string          `json:"customer_phone"`
	CustomerAddress   string          `json:"customer_address"`
	Items             []orderItemWire `json:"items"`
	Notes             string          `json:"notes"`
	PaymentMethod     string          `json:"payment_method"`
	PaymentStatus     string          `json:"payment_status"`
	DeliveryDate      string          `json:"delivery_date"`
	Tax               decimal.Decimal `json:"tax"`
	Discount          decimal.Decimal `json:"discount"`
}

func newCreateOrderRequest(payload intake.OrderPayload) createOrderRequest {
	items := make([]orderItemWire, len(payload.Items))
	for i, item := range payload.Items {
		items[i] = orderItemWire{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return createOrderRequest{
		CustomerEmail:     payload.CustomerEmail,
		CustomerFirstName: payload.CustomerFirstName,
		CustomerLastName:  payload.CustomerLastName,
		CustomerPhone:     payload.CustomerPhone,
		CustomerAddress:   payload.CustomerAddress,
		Items:             items,
		Notes:             payload.Notes,
		PaymentMethod:     payload.PaymentMethod.String(),
		PaymentStatus:     payload.PaymentStatus.String(),
		DeliveryDate:      payload.DeliveryDate.Format(wireDateLayout),
		Tax:               payload.Tax,
		Discount:          payload.Discount,
	}
}

type createCustomerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}
