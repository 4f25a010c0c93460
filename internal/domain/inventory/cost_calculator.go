package inventory

import "github.com/shopspring/decimal"

// CostCalculator acumula el costo promedio ponderado de un retiro que recorre varios lotes.
// Promedio = ((CantRetirada * Promedio) + (CantLote * CostoLote)) / (CantRetirada + CantLote)
func CostCalculator(cantRetirada, promedio, cantLote, costoLote decimal.Decimal) decimal.Decimal {
	total := cantRetirada.Add(cantLote)
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return cantRetirada.Mul(promedio).Add(cantLote.Mul(costoLote)).Div(total)
}
