package inventory

import (
	"math"
	"time"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AvailableQuantity suma el saldo de los lotes vivos. Satura en math.MaxInt64.
func AvailableQuantity(lots []*entity.StockLot) int64 {
	var total int64
	for _, l := range lots {
		if l.IsLive() && l.QuantityRemaining > 0 {
			total = addSaturating(total, l.QuantityRemaining)
		}
	}
	return total
}

// FitsEntry indica si un lote nuevo de quantity unidades cabe en int64 junto con las
// cantidades iniciales de los lotes vivos. Se mide sobre la inicial para que una
// anulación posterior tampoco desborde la suma.
func FitsEntry(lots []*entity.StockLot, quantity int64) bool {
	if quantity <= 0 {
		return false
	}
	room := int64(math.MaxInt64) - quantity
	var total int64
	for _, l := range lots {
		if !l.IsLive() {
			continue
		}
		if l.QuantityInitial > room-total {
			return false
		}
		total += l.QuantityInitial
	}
	return true
}

func addSaturating(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// Value suma saldo × costo de adquisición de los lotes vivos.
func Value(lots []*entity.StockLot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		if l.IsLive() {
			total = total.Add(l.Value())
		}
	}
	return total
}

// HasExpiredLots indica si algún lote vivo con saldo venció antes de asOf.
func HasExpiredLots(lots []*entity.StockLot, asOf time.Time) bool {
	for _, l := range lots {
		if l.IsLive() && !l.IsExhausted() && l.IsExpired(asOf) {
			return true
		}
	}
	return false
}

// NearExpirationLots devuelve los lotes vivos con saldo cuyo vencimiento cae en
// [asOf, asOf+horizonDays] en días de calendario, ordenados por vencimiento.
func NearExpirationLots(lots []*entity.StockLot, asOf time.Time, horizonDays int) []*entity.StockLot {
	asOf = entity.CalendarDay(asOf)
	limit := asOf.AddDate(0, 0, horizonDays)
	out := make([]*entity.StockLot, 0)
	for _, l := range lots {
		if !l.IsLive() || l.IsExhausted() || l.ExpirationDate == nil {
			continue
		}
		if exp := entity.CalendarDay(*l.ExpirationDate); exp.Before(asOf) || exp.After(limit) {
			continue
		}
		out = append(out, l)
	}
	SortLots(out, entity.PolicyFEFO)
	return out
}

// NearestExpiration vencimiento más próximo entre los lotes vivos con saldo.
func NearestExpiration(lots []*entity.StockLot) *time.Time {
	var nearest *time.Time
	for _, l := range lots {
		if !l.IsLive() || l.IsExhausted() || l.ExpirationDate == nil {
			continue
		}
		if nearest == nil || l.ExpirationDate.Before(*nearest) {
			t := *l.ExpirationDate
			nearest = &t
		}
	}
	return nearest
}

// Derive recalcula la vista materializada del agregado desde los lotes.
func Derive(stock *entity.Stock, lots []*entity.StockLot, now time.Time) {
	stock.Quantity = AvailableQuantity(lots)
	stock.Value = Value(lots)
	stock.ExpirationHint = NearestExpiration(lots)
	stock.UpdatedAt = now
}

// Consistent indica si la vista materializada coincide con el libro de lotes.
func Consistent(stock *entity.Stock, lots []*entity.StockLot) bool {
	return stock.Quantity == AvailableQuantity(lots) && stock.Value.Equal(Value(lots))
}
