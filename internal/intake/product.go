package intake

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kresfloral/kres-console/pkg/enums"
	pkgerrors "github.com/kresfloral/kres-console/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold matches the backend default applied when the form
// does not expose a threshold field.
const DefaultLowStockThreshold = 10

// ProductForm carries the raw inventory-modal field values.
type ProductForm struct {
	Name              string  `form:"name" validate:"required"`
	Category          string  `form:"category" validate:"required"`
	StockQuantity     int     `form:"stock_quantity" validate:"min=0"`
	Unit              string  `form:"unit"`
	UnitPrice         float64 `form:"price" validate:"min=0"`
	LowStockThreshold int     `form:"low_stock_threshold" validate:"min=0"`
}

var productFieldMessages = map[string]string{
	"name":                "Please enter the item name.",
	"category":            "Please select a category.",
	"stock_quantity":      "Quantity cannot be negative.",
	"price":               "Price cannot be negative.",
	"low_stock_threshold": "Low stock threshold cannot be negative.",
}

// ProductPayload is the normalized product create/update request.
type ProductPayload struct {
	Name              string
	Category          enums.Category
	StockQuantity     int
	Unit              string
	UnitPrice         decimal.Decimal
	LowStockThreshold int
}

// ValidateProduct checks the inventory form and returns the normalized
// payload. Negative quantities never leave the client.
func ValidateProduct(form ProductForm) (*ProductPayload, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Category = strings.TrimSpace(form.Category)
	form.Unit = strings.TrimSpace(form.Unit)

	if err := validate.Struct(form); err != nil {
		return nil, firstProductFieldError(err)
	}

	threshold := form.LowStockThreshold
	if threshold == 0 {
		threshold = DefaultLowStockThreshold
	}

	return &ProductPayload{
		Name:              form.Name,
		Category:          enums.Category(form.Category),
		StockQuantity:     form.StockQuantity,
		Unit:              form.Unit,
		UnitPrice:         decimal.NewFromFloat(form.UnitPrice),
		LowStockThreshold: threshold,
	}, nil
}

func firstProductFieldError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		field := errs[0].Field()
		message, ok := productFieldMessages[field]
		if !ok {
			message = "Please complete the form."
		}
		return pkgerrors.New(pkgerrors.KindValidationRejected, message).WithField(field)
	}
	return pkgerrors.Wrap(pkgerrors.KindValidationRejected, err, "Please complete the form.")
}
