package entity

import "strings"

// ProductType is the kind of grain a batch holds.
type ProductType string

const (
	ProductTypePaddy ProductType = "PADDY"
	ProductTypeRice  ProductType = "RICE"
)

// UnitKG is the base unit every quantity is normalized to.
const UnitKG = "KG"

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	return t == ProductTypePaddy || t == ProductTypeRice
}

// ParseProductType accepts any casing and surrounding spaces.
func ParseProductType(s string) (ProductType, bool) {
	t := ProductType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}
