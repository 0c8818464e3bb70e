// Package stock classifies inventory levels into stock-health statuses.
// Classification is a pure function of category and quantity; no status is
// ever persisted, so a stale badge cannot exist.
package stock

import "github.com/kresfloral/kres-console/pkg/enums"

// Thresholds are the category-dependent boundaries. Fillers are bought in
// small bundles, so their scale sits well below the default stem counts.
const (
	defaultInStockMin  = 100
	defaultLowStockMin = 50

	fillersInStockMin  = 20
	fillersLowStockMin = 10
)

// Classify maps a category and a non-negative quantity to a status. Unknown
// categories use the default thresholds, keeping the function total.
func Classify(category enums.Category, quantity int) enums.StockStatus {
	inStockMin, lowStockMin := thresholds(category)
	switch {
	case quantity >= inStockMin:
		return enums.StockStatusInStock
	case quantity >= lowStockMin:
		return enums.StockStatusLowStock
	default:
		return enums.StockStatusCritical
	}
}

func thresholds(category enums.Category) (inStockMin, lowStockMin int) {
	if category == enums.CategoryFillers {
		return fillersInStockMin, fillersLowStockMin
	}
	return defaultInStockMin, defaultLowStockMin
}

// DisplayUnit returns the quantity unit label shown next to a stock count.
// It is derived alongside the status, never stored.
func DisplayUnit(category enums.Category) string {
	if category == enums.CategoryFlowers {
		return "stems"
	}
	return "bundles"
}
