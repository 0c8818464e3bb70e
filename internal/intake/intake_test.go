package intake

import (
	"strings"
	"testing"
	"time"

	"github.com/kresfloral/kres-console/pkg/enums"
	pkgerrors "github.com/kresfloral/kres-console/pkg/errors"
)

var testNow = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

func validOrderForm() OrderForm {
	return OrderForm{
		CustomerName:    "Chloe Elizha Borcillo",
		ContactNumber:   "0917-555-1234",
		Address:         "12 Sampaguita St, Quezon City",
		ProductOrder:    "2 dozen red roses, wrapped",
		DeliveryDate:    "2025-03-14",
		PaymentMethod:   "gcash",
		PaymentStatus:   "pending",
		SpecialRequests: "Leave at the gate",
	}
}

func TestValidateOrderNormalizes(t *testing.T) {
	payload, err := ValidateOrder(validOrderForm(), testNow)
	if err != nil {
		t.Fatalf("expected valid form to pass, got %v", err)
	}

	if payload.CustomerFirstName != "Chloe" {
		t.Fatalf("expected first name Chloe, got %q", payload.CustomerFirstName)
	}
	if payload.CustomerLastName != "Elizha Borcillo" {
		t.Fatalf("expected last name 'Elizha Borcillo', got %q", payload.CustomerLastName)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("expected a single free-text item, got %d", len(payload.Items))
	}
	if payload.Items[0].Quantity != 1 || !payload.Items[0].UnitPrice.IsZero() {
		t.Fatalf("expected default quantity 1 and zero price, got %d / %s",
			payload.Items[0].Quantity, payload.Items[0].UnitPrice)
	}
	if payload.PaymentMethod != enums.PaymentMethodGCash {
		t.Fatalf("unexpected payment method %s", payload.PaymentMethod)
	}
	if !payload.Tax.IsZero() || !payload.Discount.IsZero() {
		t.Fatal("expected zero tax and discount defaults")
	}
}

func TestValidateOrderRejectsEmptyContactFirst(t *testing.T) {
	form := validOrderForm()
	form.ContactNumber = "   "
	// Later fields are also broken; the contact number must win anyway.
	form.DeliveryDate = "not-a-date"
	form.PaymentMethod = ""

	_, err := ValidateOrder(form, testNow)
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Kind() != pkgerrors.KindValidationRejected {
		t.Fatalf("expected validation rejection, got %v", err)
	}
	if typed.Field() != "contact_number" {
		t.Fatalf("expected contact_number to fail first, got %q", typed.Field())
	}
	if typed.Message() != "Please enter a contact number." {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestValidateOrderFieldOrder(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*OrderForm)
		wantField string
	}{
		{"name", func(f *OrderForm) { f.CustomerName = "" }, "customer_name"},
		{"address", func(f *OrderForm) { f.Address = "" }, "address"},
		{"product", func(f *OrderForm) { f.ProductOrder = "" }, "product_order"},
		{"date", func(f *OrderForm) { f.DeliveryDate = "" }, "delivery_date"},
		{"method", func(f *OrderForm) { f.PaymentMethod = "" }, "payment_method"},
		{"status", func(f *OrderForm) { f.PaymentStatus = "" }, "payment_status"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validOrderForm()
			tc.mutate(&form)
			_, err := ValidateOrder(form, testNow)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Field() != tc.wantField {
				t.Fatalf("expected %s to fail, got %v", tc.wantField, err)
			}
		})
	}
}

func TestValidateOrderDeliveryDate(t *testing.T) {
	form := validOrderForm()
	form.DeliveryDate = "2025-03-09"
	if _, err := ValidateOrder(form, testNow); err == nil {
		t.Fatal("expected past delivery date to be rejected")
	}

	// Same-day delivery is allowed.
	form.DeliveryDate = "2025-03-10"
	if _, err := ValidateOrder(form, testNow); err != nil {
		t.Fatalf("expected same-day delivery to pass, got %v", err)
	}

	form.DeliveryDate = "14/03/2025"
	_, err := ValidateOrder(form, testNow)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Field() != "delivery_date" {
		t.Fatalf("expected unparseable date to fail on delivery_date, got %v", err)
	}
}

func TestValidateOrderRejectsUnknownPaymentMethod(t *testing.T) {
	form := validOrderForm()
	form.PaymentMethod = "barter"
	_, err := ValidateOrder(form, testNow)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Field() != "payment_method" {
		t.Fatalf("expected unknown payment method rejection, got %v", err)
	}
}

func TestSplitFullName(t *testing.T) {
	cases := []struct {
		input     string
		wantFirst string
		wantLast  string
	}{
		{"Chloe Elizha Borcillo", "Chloe", "Elizha Borcillo"},
		{"Madonna", "Madonna", ""},
		{"  Juan   dela Cruz  ", "Juan", "dela Cruz"},
		{"", "", ""},
	}
	for _, tc := range cases {
		first, last := SplitFullName(tc.input)
		if first != tc.wantFirst || last != tc.wantLast {
			t.Fatalf("SplitFullName(%q) = %q/%q, want %q/%q",
				tc.input, first, last, tc.wantFirst, tc.wantLast)
		}
	}
}

func TestPlaceholderEmail(t *testing.T) {
	email := PlaceholderEmail("0917-555-1234", testNow)
	if !strings.HasPrefix(email, "customer_09175551234_") {
		t.Fatalf("expected phone digits in local part, got %q", email)
	}
	if !strings.HasSuffix(email, "@kres.local") {
		t.Fatalf("expected kres.local domain, got %q", email)
	}
	// Deterministic for a fixed timestamp.
	if email != PlaceholderEmail("0917-555-1234", testNow) {
		t.Fatal("expected deterministic synthesis")
	}
}

func TestValidateProduct(t *testing.T) {
	payload, err := ValidateProduct(ProductForm{
		Name:          "  Red Roses ",
		Category:      "Flowers",
		StockQuantity: 150,
		Unit:          "stems",
		UnitPrice:     120.50,
	})
	if err != nil {
		t.Fatalf("expected valid product form to pass, got %v", err)
	}
	if payload.Name != "Red Roses" {
		t.Fatalf("expected trimmed name, got %q", payload.Name)
	}
	if payload.Category != enums.CategoryFlowers {
		t.Fatalf("unexpected category %s", payload.Category)
	}
	if payload.LowStockThreshold != DefaultLowStockThreshold {
		t.Fatalf("expected default threshold, got %d", payload.LowStockThreshold)
	}
	if payload.UnitPrice.String() != "120.5" {
		t.Fatalf("unexpected price %s", payload.UnitPrice)
	}
}

func TestValidateProductRejections(t *testing.T) {
	if _, err := ValidateProduct(ProductForm{Category: "Flowers", StockQuantity: 5}); err == nil {
		t.Fatal("expected missing name to be rejected")
	}

	_, err := ValidateProduct(ProductForm{Name: "Roses", Category: "Flowers", StockQuantity: -1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Field() != "stock_quantity" {
		t.Fatalf("expected negative quantity rejection, got %v", err)
	}

	if _, err := ValidateProduct(ProductForm{Name: "Roses", Category: "Flowers", UnitPrice: -3}); err == nil {
		t.Fatal("expected negative price to be rejected")
	}
}
