package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de un movimiento de stock.
const (
	MovementEntry = "ENTRY" // entrada (reposición o compensación)
	MovementExit  = "EXIT"  // salida por consumo
)

// StockMovement es un asiento inmutable del libro de movimientos: un cambio de
// cantidad sobre un único lote.
type StockMovement struct {
	ID         string
	CompanyID  string
	StockID    string
	ArticleID  string
	LotID      string
	Direction  string
	Quantity   int64 // con signo: positivo entrada, negativo salida
	UnitPrice  decimal.Decimal
	EventRef   string // evento de consumo que lo originó (p. ej. id de la solicitud de examen)
	Reason     string
	ReversalOf string // id de la salida que compensa, vacío si no es compensación
	CreatedAt  time.Time
}

// IsExit indica si el movimiento es una salida.
func (m *StockMovement) IsExit() bool {
	return m.Direction == MovementExit
}
