// Package devbackend is a self-contained stand-in for the remote store API.
// It exists so the console can be developed and exercised end to end without
// the real backend: same paths, same envelopes, same rejection messages.
package devbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/kresfloral/kres-console/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Server serves the development backend API.
type Server struct {
	db         *gorm.DB
	logg       *logger.Logger
	csrfHeader string
	now        func() time.Time
}

// ServerOption configures optional server behavior.
type ServerOption func(*Server)

// WithServerClock overrides the time source used for order numbers.
func WithServerClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer builds the development backend around an open database.
func NewServer(db *gorm.DB, logg *logger.Logger, opts ...ServerOption) *Server {
	s := &Server{
		db:         db,
		logg:       logg,
		csrfHeader: "X-CSRFToken",
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the routed HTTP surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", s.csrfHeader},
	}))
	r.Use(s.requireCSRF)

	r.Route("/products", func(r chi.Router) {
		r.Get("/list", s.listProducts)
		r.Get("/{productID}", s.getProduct)
		r.Post("/create", s.createProduct)
		r.Post("/{productID}/update", s.updateProduct)
		r.Post("/update-stock", s.updateStock)
		r.Delete("/{productID}/delete", s.deleteProduct)
	})
	r.Post("/orders/create", s.createOrder)
	r.Post("/customers/create", s.createCustomer)
	return r
}

// requireCSRF rejects mutations that arrive without the anti-forgery header.
// GETs pass through untouched.
func (s *Server) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodOptions &&
			strings.TrimSpace(r.Header.Get(s.csrfHeader)) == "" {
			s.writeFailure(w, http.StatusForbidden, "Missing CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type productRequest struct {
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Category          string          `json:"category"`
	StockQuantity     int             `json:"stock_quantity"`
	Unit              string          `json:"unit"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

type stockRequest struct {
	ProductID     int64 `json:"product_id"`
	StockQuantity int   `json:"stock_quantity"`
}

type orderItemRequest struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type orderRequest struct {
	CustomerEmail     string             `json:"customer_email"`
	CustomerFirstName string             `json:"customer_first_name"`
	CustomerLastName  string             `json:"customer_last_name"`
	CustomerPhone     string             `json:"customer_phone"`
	CustomerAddress   string             `json:"customer_address"`
	Items             []orderItemRequest `json:"items"`
	Notes             string             `json:"notes"`
	PaymentMethod     string             `json:"payment_method"`
	PaymentStatus     string             `json:"payment_status"`
	DeliveryDate      string             `json:"delivery_date"`
	Tax               decimal.Decimal    `json:"tax"`
	Discount          decimal.Decimal    `json:"discount"`
}

type customerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// orderJSON is the order response: the row plus the denormalized customer
// fields and the line items.
type orderJSON struct {
	OrderRow
	CustomerFirstName string         `json:"customer_first_name"`
	CustomerLastName  string         `json:"customer_last_name"`
	CustomerPhone     string         `json:"customer_phone"`
	CustomerAddress   string         `json:"customer_address"`
	CustomerEmail     string         `json:"customer_email"`
	Items             []OrderItemRow `json:"items"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	var rows []ProductRow
	if err := s.db.WithContext(r.Context()).Order("id").Find(&rows).Error; err != nil {
		s.serverError(w, r, err)
		return
	}
	if rows == nil {
		rows = []ProductRow{}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		s.writeFailure(w, http.StatusNotFound, "Product not found")
		return
	}

	var row ProductRow
	if err := s.db.WithContext(r.Context()).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.writeFailure(w, http.StatusNotFound, "Product not found")
			return
		}
		s.serverError(w, r, err)
		return
	}
	s.writeSuccess(w, "", map[string]any{"product": row})
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if message, ok := validateProductRequest(req); !ok {
		s.writeFailure(w, http.StatusBadRequest, message)
		return
	}

	var existing int64
	if err := s.db.WithContext(r.Context()).Model(&ProductRow{}).
		Where("sku = ?", req.SKU).Count(&existing).Error; err != nil {
		s.serverError(w, r, err)
		return
	}
	if existing > 0 {
		s.writeFailure(w, http.StatusBadRequest, "Duplicate SKU")
		return
	}

	row := ProductRow{
		Name:              req.Name,
		SKU:               req.SKU,
		Category:          req.Category,
		StockQuantity:     req.StockQuantity,
		Unit:              req.Unit,
		Price:             req.Price,
		LowStockThreshold: req.LowStockThreshold,
	}
	if row.LowStockThreshold == 0 {
		row.LowStockThreshold = 10
	}
	if err := s.db.WithContext(r.Context()).Create(&row).Error; err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeSuccess(w, "Product created successfully", map[string]any{"product": row})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		s.writeFailure(w, http.StatusNotFound, "Product not found")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if message, ok := validateProductRequest(req); !ok {
		s.writeFailure(w, http.StatusBadRequest, message)
		return
	}

	var row ProductRow
	if err := s.db.WithContext(r.Context()).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.writeFailure(w, http.StatusNotFound, "Product not found")
			return
		}
		s.serverError(w, r, err)
		return
	}

	row.Name = req.Name
	row.Category = req.Category
	row.StockQuantity = req.StockQuantity
	row.Unit = req.Unit
	row.Price = req.Price
	if req.LowStockThreshold > 0 {
		row.LowStockThreshold = req.LowStockThreshold
	}
	if err := s.db.WithContext(r.Context()).Save(&row).Error; err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeSuccess(w, "Product updated successfully", map[string]any{"product": row})
}

func (s *Server) updateStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.StockQuantity < 0 {
		s.writeFailure(w, http.StatusBadRequest, "Quantity cannot be negative.")
		return
	}

	var row ProductRow
	if err := s.db.WithContext(r.Context()).First(&row, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.writeFailure(w, http.StatusNotFound, "Product not found")
			return
		}
		s.serverError(w, r, err)
		return
	}

	row.StockQuantity = req.StockQuantity
	if err := s.db.WithContext(r.Context()).Save(&row).Error; err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeSuccess(w, "Stock updated successfully", map[string]any{"product": row})
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		s.writeFailure(w, http.StatusNotFound, "Product not found")
		return
	}

	res := s.db.WithContext(r.Context()).Delete(&ProductRow{}, id)
	if res.Error != nil {
		s.serverError(w, r, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		s.writeFailure(w, http.StatusNotFound, "Product not found")
		return
	}
	s.writeSuccess(w, "Product deleted successfully", nil)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Items) == 0 {
		s.writeFailure(w, http.StatusBadRequest, "Order must contain at least one item")
		return
	}
	if req.CustomerEmail == "" {
		s.writeFailure(w, http.StatusBadRequest, "Customer email is required")
		return
	}

	subtotal := decimal.Zero
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			s.writeFailure(w, http.StatusBadRequest, "Item quantity must be positive")
			return
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	var (
		customer CustomerRow
		order    OrderRow
		items    []OrderItemRow
	)
	err := s.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		// Reuse the customer row when the email is already known.
		err := tx.Where("email = ?", req.CustomerEmail).First(&customer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			customer = CustomerRow{
				FirstName: req.CustomerFirstName,
				LastName:  req.CustomerLastName,
				Email:     req.CustomerEmail,
				Phone:     req.CustomerPhone,
				Address:   req.CustomerAddress,
			}
			err = tx.Create(&customer).Error
		}
		if err != nil {
			return err
		}

		order = OrderRow{
			OrderNumber:   "ORD-PENDING-" + strconv.FormatInt(s.now().UnixNano(), 10),
			Status:        "pending",
			CustomerID:    customer.ID,
			Notes:         req.Notes,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: req.PaymentStatus,
			DeliveryDate:  req.DeliveryDate,
			Subtotal:      subtotal,
			Tax:           req.Tax,
			Discount:      req.Discount,
			Total:         subtotal.Add(req.Tax).Sub(req.Discount),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// The number embeds the row id, so it is assigned after insert.
		order.OrderNumber = fmt.Sprintf("ORD-%04d-%s", order.ID, s.now().Format("20060102"))
		if err := tx.Model(&order).Update("order_number", order.OrderNumber).Error; err != nil {
			return err
		}

		for _, item := range req.Items {
			row := OrderItemRow{
				OrderID:     order.ID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			items = append(items, row)
		}
		return nil
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.writeSuccess(w, "Order placed successfully", map[string]any{"order": orderJSON{
		OrderRow:          order,
		CustomerFirstName: customer.FirstName,
		CustomerLastName:  customer.LastName,
		CustomerPhone:     customer.Phone,
		CustomerAddress:   customer.Address,
		CustomerEmail:     customer.Email,
		Items:             items,
	}})
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FirstName == "" {
		s.writeFailure(w, http.StatusBadRequest, "First name is required")
		return
	}
	if req.Email == "" {
		s.writeFailure(w, http.StatusBadRequest, "Email is required")
		return
	}

	var existing int64
	if err := s.db.WithContext(r.Context()).Model(&CustomerRow{}).
		Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		s.serverError(w, r, err)
		return
	}
	if existing > 0 {
		s.writeFailure(w, http.StatusBadRequest, "A customer with this email already exists")
		return
	}

	row := CustomerRow{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}
	if err := s.db.WithContext(r.Context()).Create(&row).Error; err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeSuccess(w, "Customer added successfully", map[string]any{"customer": row})
}

func validateProductRequest(req productRequest) (string, bool) {
	if strings.TrimSpace(req.Name) == "" {
		return "Please enter the item name.", false
	}
	if strings.TrimSpace(req.Category) == "" {
		return "Please select a category.", false
	}
	if req.StockQuantity < 0 {
		return "Quantity cannot be negative.", false
	}
	if req.Price.IsNegative() {
		return "Price cannot be negative.", false
	}
	return "", true
}

func (s *Server) writeSuccess(w http.ResponseWriter, message string, extra map[string]any) {
	payload := map[string]any{"success": true}
	if message != "" {
		payload["message"] = message
	}
	for key, value := range extra {
		payload[key] = value
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) writeFailure(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	if s.logg != nil {
		s.logg.Error(r.Context(), "request failed", err)
	}
	s.writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"message": "Internal server error",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && s.logg != nil {
		s.logg.Error(context.Background(), "failed to encode response", err)
	}
}
