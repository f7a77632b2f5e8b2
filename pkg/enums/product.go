package enums

import "fmt"

// ProductCategory groups catalog entries for browsing and filtering.
type ProductCategory string

const (
	ProductCategoryFruit    ProductCategory = "fruit"
	ProductCategoryBowl     ProductCategory = "bowl"
	ProductCategoryJuice    ProductCategory = "juice"
	ProductCategorySalad    ProductCategory = "salad"
	ProductCategoryDryFruit ProductCategory = "dry_fruit"
	ProductCategoryCombo    ProductCategory = "combo"
)

var validProductCategorys = []ProductCategory{
	ProductCategoryFruit,
	ProductCategoryBowl,
	ProductCategoryJuice,
	ProductCategorySalad,
	ProductCategoryDryFruit,
	ProductCategoryCombo,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategorys {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategorys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductUnit is the selling unit shown next to quantities.
type ProductUnit string

const (
	ProductUnitPiece  ProductUnit = "piece"
	ProductUnitKg     ProductUnit = "kg"
	ProductUnitGram   ProductUnit = "gram"
	ProductUnitBowl   ProductUnit = "bowl"
	ProductUnitBottle ProductUnit = "bottle"
	ProductUnitPack   ProductUnit = "pack"
	ProductUnitBox    ProductUnit = "box"
)

var validProductUnits = []ProductUnit{
	ProductUnitPiece,
	ProductUnitKg,
	ProductUnitGram,
	ProductUnitBowl,
	ProductUnitBottle,
	ProductUnitPack,
	ProductUnitBox,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known ProductUnit.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
