package aggregate

import "github.com/simaogato/wealthflow-forecast/internal/domain"

// All matches every value with a known category
func All() Predicate {
	return func(domain.Subcategory, domain.Category) bool { return true }
}

// ByType matches values whose category has the given type
func ByType(categoryType domain.CategoryType) Predicate {
	return func(_ domain.Subcategory, cat domain.Category) bool {
		return cat.Type == categoryType
	}
}

// ByAggregate matches values whose category belongs to the given bucket
func ByAggregate(bucket domain.AggregateBucket) Predicate {
	return func(_ domain.Subcategory, cat domain.Category) bool {
		return bucket != domain.AggregateNone && cat.Aggregate == bucket
	}
}

// Options matches values of option categories
func Options() Predicate {
	return func(_ domain.Subcategory, cat domain.Category) bool {
		return cat.IsOption
	}
}

// NonOptionAssets matches asset values outside option categories
func NonOptionAssets() Predicate {
	return func(_ domain.Subcategory, cat domain.Category) bool {
		return cat.Type == domain.CategoryTypeAsset && !cat.IsOption
	}
}

// BySubcategory matches values of a single subcategory
func BySubcategory(id int) Predicate {
	return func(sub domain.Subcategory, _ domain.Category) bool {
		return sub.ID == id
	}
}
