package enums

// Category is a product category as managed on the inventory page. The
// backend stores categories as free text, so values outside the known set
// are carried through unchanged and classified with default thresholds.
type Category string

const (
	CategoryFlowers  Category = "Flowers"
	CategoryFillers  Category = "Fillers"
	CategoryGreens   Category = "Greens"
	CategorySupplies Category = "Supplies"
)

var knownCategories = []Category{
	CategoryFlowers,
	CategoryFillers,
	CategoryGreens,
	CategorySupplies,
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsKnown reports whether the value is one of the curated categories.
func (c Category) IsKnown() bool {
	for _, candidate := range knownCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Categories returns the curated category list in display order.
func Categories() []Category {
	out := make([]Category, len(knownCategories))
	copy(out, knownCategories)
	return out
}
