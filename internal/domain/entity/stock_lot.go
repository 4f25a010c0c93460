package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLot representa un lote de un artículo adquirido en una misma entrada.
// Solo QuantityRemaining y la marca de borrado cambian después de creado.
type StockLot struct {
	ID                string
	CompanyID         string
	ArticleID         string
	QuantityInitial   int64
	QuantityRemaining int64
	EntryDate         time.Time
	ExpirationDate    *time.Time
	UnitCost          *decimal.Decimal
	Supplier          string
	LotNumber         string
	Comment           string
	Deleted           bool
	DeletedAt         *time.Time
	DeleteReason      string
	CreatedAt         time.Time
}

// IsLive indica si el lote cuenta para el stock (no borrado lógicamente).
func (l *StockLot) IsLive() bool {
	return !l.Deleted
}

// IsExhausted indica si el lote ya no tiene existencias.
func (l *StockLot) IsExhausted() bool {
	return l.QuantityRemaining <= 0
}

// IsExpired indica si el lote vence antes del día de asOf. Compara fechas de calendario (UTC).
func (l *StockLot) IsExpired(asOf time.Time) bool {
	return l.ExpirationDate != nil && CalendarDay(*l.ExpirationDate).Before(CalendarDay(asOf))
}

// CalendarDay medianoche UTC del día de t.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Value valor del saldo del lote al costo de adquisición (cero si no tiene costo).
func (l *StockLot) Value() decimal.Decimal {
	if l.UnitCost == nil {
		return decimal.Zero
	}
	return l.UnitCost.Mul(decimal.NewFromInt(l.QuantityRemaining))
}

// Clone copia el lote, incluidos los punteros.
func (l *StockLot) Clone() *StockLot {
	c := *l
	if l.ExpirationDate != nil {
		t := *l.ExpirationDate
		c.ExpirationDate = &t
	}
	if l.UnitCost != nil {
		d := *l.UnitCost
		c.UnitCost = &d
	}
	if l.DeletedAt != nil {
		t := *l.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}
