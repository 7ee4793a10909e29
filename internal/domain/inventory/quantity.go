package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/domain"
)

// Precision and scale of the numeric columns amounts are stored in.
const (
	QuantityPrecision, QuantityScale = 14, 3 // KG quantities
	PricePrecision, PriceScale       = 14, 4 // price per KG
	MoisturePrecision, MoistureScale = 5, 2  // moisture percent
)

// CheckQuantity rejects a KG amount that would not be stored exactly.
func CheckQuantity(field string, q decimal.Decimal) error {
	return checkNumeric(field, q, QuantityPrecision, QuantityScale)
}

// CheckPrice rejects a price per KG that would not be stored exactly.
func CheckPrice(field string, p decimal.Decimal) error {
	return checkNumeric(field, p, PricePrecision, PriceScale)
}

// CheckMoisture rejects a moisture percentage that would not be stored exactly.
func CheckMoisture(m decimal.Decimal) error {
	return checkNumeric("moisture", m, MoisturePrecision, MoistureScale)
}

func checkNumeric(field string, v decimal.Decimal, precision, scale int32) error {
	if !v.Round(scale).Equal(v) {
		return domain.InvalidInput("%s allows at most %d decimal places", field, scale)
	}
	if limit := decimal.New(1, precision-scale); v.Abs().GreaterThanOrEqual(limit) {
		return domain.InvalidInput("%s must be below %s", field, limit.String())
	}
	return nil
}
