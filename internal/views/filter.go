// Package views projects filtered table rows out of the record store.
// Projections are recomputed from scratch on every input event; collections
// are hundreds of rows at most, so there is nothing to cache.
package views

import (
	"strings"
	"time"

	"github.com/kresfloral/kres-console/internal/records"
	"github.com/kresfloral/kres-console/pkg/enums"
)

// DateRange bounds a date predicate. A zero boundary is unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) active() bool {
	return !r.From.IsZero() || !r.To.IsZero()
}

func (r DateRange) contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// FilterState is the transient filter input for one table. Unset fields are
// inactive predicates and match every row; a row is visible iff every active
// predicate matches.
type FilterState struct {
	Query       string
	Category    enums.Category
	StockStatus enums.StockStatus
	OrderStatus enums.OrderStatus
	Delivery    DateRange
}

// VisibleProducts returns the products matching the filter, in store order.
func VisibleProducts(products []records.Product, f FilterState) []records.Product {
	out := make([]records.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.StockStatus != "" && p.Status() != f.StockStatus {
			continue
		}
		if !matchesQuery(f.Query, p.Name, p.SKU) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// VisibleOrders returns the orders matching the filter, in store order. Text
// matches against the order number and the customer name.
func VisibleOrders(orders []records.Order, f FilterState) []records.Order {
	out := make([]records.Order, 0, len(orders))
	for _, o := range orders {
		if f.OrderStatus != "" && o.Status != f.OrderStatus {
			continue
		}
		if f.Delivery.active() && !f.Delivery.contains(o.DeliveryDate) {
			continue
		}
		if !matchesQuery(f.Query, o.Number, o.ID, o.Customer.FullName()) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// VisibleCustomers returns the customers matching the filter, in store order.
// Text matches against the full name and the phone number.
func VisibleCustomers(customers []records.Customer, f FilterState) []records.Customer {
	out := make([]records.Customer, 0, len(customers))
	for _, c := range customers {
		if !matchesQuery(f.Query, c.FullName(), c.Phone) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// matchesQuery is a case-insensitive substring match over the searchable
// fields. An empty query matches everything.
func matchesQuery(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
