package enums

import "fmt"

// StockStatus is the derived stock-health classification. It is never stored;
// every value is computed from category and quantity at read time.
type StockStatus string

const (
	StockStatusInStock  StockStatus = "in_stock"
	StockStatusLowStock StockStatus = "low_stock"
	StockStatusCritical StockStatus = "critical"
)

var validStockStatuses = []StockStatus{
	StockStatusInStock,
	StockStatusLowStock,
	StockStatusCritical,
}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// Label returns the badge text shown in the inventory table.
func (s StockStatus) Label() string {
	switch s {
	case StockStatusInStock:
		return "In Stock"
	case StockStatusLowStock:
		return "Low Stock"
	case StockStatusCritical:
		return "Critical"
	}
	return string(s)
}

// IsValid reports whether the value is a known StockStatus.
func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockStatus converts raw input into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	for _, candidate := range validStockStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}
