// Package intake validates and normalizes raw form input before anything is
// sent upstream. Validation mirrors the user's top-to-bottom reading of the
// form and stops at the first failing field.
package intake

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kresfloral/kres-console/pkg/enums"
	pkgerrors "github.com/kresfloral/kres-console/pkg/errors"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// OrderForm carries the raw order-modal field values. Field order matters:
// the validator reports the first failing field in declaration order, which
// matches the form's visual order.
type OrderForm struct {
	CustomerName    string `form:"customer_name" validate:"required"`
	ContactNumber   string `form:"contact_number" validate:"required"`
	Address         string `form:"address" validate:"required"`
	ProductOrder    string `form:"product_order" validate:"required"`
	DeliveryDate    string `form:"delivery_date" validate:"required"`
	PaymentMethod   string `form:"payment_method" validate:"required"`
	PaymentStatus   string `form:"payment_status" validate:"required"`
	SpecialRequests string `form:"special_requests"`
}

var orderFieldMessages = map[string]string{
	"customer_name":  "Please enter the customer name.",
	"contact_number": "Please enter a contact number.",
	"address":        "Please enter a delivery address.",
	"product_order":  "Please enter the product order.",
	"delivery_date":  "Please select a delivery date.",
	"payment_method": "Please select a payment method.",
	"payment_status": "Please select a payment status.",
}

// ItemPayload is one normalized order line.
type ItemPayload struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// OrderPayload is the normalized order-creation request handed to the
// gateway. Every field has already passed validation.
type OrderPayload struct {
	CustomerEmail     string
	CustomerFirstName string
	CustomerLastName  string
	CustomerPhone     string
	CustomerAddress   string
	Items             []ItemPayload
	Notes             string
	PaymentMethod     enums.PaymentMethod
	PaymentStatus     enums.PaymentStatus
	DeliveryDate      time.Time
	Tax               decimal.Decimal
	Discount          decimal.Decimal
}

// ValidateOrder checks the form top to bottom and, on success, returns the
// normalized payload. now anchors the delivery-date floor and the placeholder
// email timestamp.
func ValidateOrder(form OrderForm, now time.Time) (*OrderPayload, error) {
	trimOrderForm(&form)

	if err := validate.Struct(form); err != nil {
		return nil, firstOrderFieldError(err)
	}

	deliveryDate, err := time.Parse("2006-01-02", form.DeliveryDate)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.KindValidationRejected, "Please select a valid delivery date.").
			WithField("delivery_date")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if deliveryDate.Before(today) {
		return nil, pkgerrors.New(pkgerrors.KindValidationRejected, "Delivery date cannot be in the past.").
			WithField("delivery_date")
	}

	method, err := enums.ParsePaymentMethod(form.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.KindValidationRejected, "Please select a payment method.").
			WithField("payment_method")
	}
	status, err := enums.ParsePaymentStatus(form.PaymentStatus)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.KindValidationRejected, "Please select a payment status.").
			WithField("payment_status")
	}

	firstName, lastName := SplitFullName(form.CustomerName)

	return &OrderPayload{
		CustomerEmail:     PlaceholderEmail(form.ContactNumber, now),
		CustomerFirstName: firstName,
		CustomerLastName:  lastName,
		CustomerPhone:     form.ContactNumber,
		CustomerAddress:   form.Address,
		// The order field is free text, not an itemized picker, so the
		// single line defaults to one unit at an unpriced amount.
		Items: []ItemPayload{{
			ProductName: form.ProductOrder,
			Quantity:    1,
			UnitPrice:   decimal.Zero,
		}},
		Notes:         form.SpecialRequests,
		PaymentMethod: method,
		PaymentStatus: status,
		DeliveryDate:  deliveryDate,
		Tax:           decimal.Zero,
		Discount:      decimal.Zero,
	}, nil
}

func trimOrderForm(form *OrderForm) {
	form.CustomerName = strings.TrimSpace(form.CustomerName)
	form.ContactNumber = strings.TrimSpace(form.ContactNumber)
	form.Address = strings.TrimSpace(form.Address)
	form.ProductOrder = strings.TrimSpace(form.ProductOrder)
	form.DeliveryDate = strings.TrimSpace(form.DeliveryDate)
	form.PaymentMethod = strings.TrimSpace(form.PaymentMethod)
	form.PaymentStatus = strings.TrimSpace(form.PaymentStatus)
	form.SpecialRequests = strings.TrimSpace(form.SpecialRequests)
}

func firstOrderFieldError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		field := errs[0].Field()
		message, ok := orderFieldMessages[field]
		if !ok {
			message = "Please complete the form."
		}
		return pkgerrors.New(pkgerrors.KindValidationRejected, message).WithField(field)
	}
	return pkgerrors.Wrap(pkgerrors.KindValidationRejected, err, "Please complete the form.")
}

// SplitFullName splits a single name field at the first whitespace run. The
// first token is the first name; everything after is the last name, which may
// be empty.
func SplitFullName(fullName string) (firstName, lastName string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// PlaceholderEmail synthesizes the contact email the backend requires but the
// form never collects: the phone's digits plus a creation timestamp. This is
// a compatibility workaround for the upstream schema, not a feature.
func PlaceholderEmail(phone string, now time.Time) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return "customer_" + digits.String() + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "@kres.local"
}
