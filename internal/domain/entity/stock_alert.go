package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de alerta de stock.
const (
	AlertCriticalStock   = "CRITICAL_STOCK"
	AlertNearExpiration  = "NEAR_EXPIRATION"
	AlertLotExpired      = "LOT_EXPIRED"
	AlertColdChainBreach = "COLD_CHAIN_BREACH"
	AlertTemperature     = "TEMPERATURE"
)

// Prioridades.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Estados de una alerta.
const (
	AlertStatusNew        = "NEW"
	AlertStatusInProgress = "IN_PROGRESS"
	AlertStatusResolved   = "RESOLVED"
	AlertStatusIgnored    = "IGNORED"
)

// IsSignalAlertType indica si el tipo proviene de una señal externa (no se deriva de cantidades).
func IsSignalAlertType(t string) bool {
	return t == AlertColdChainBreach || t == AlertTemperature
}

// AlertSnapshot cantidades y umbrales que dispararon la alerta.
type AlertSnapshot struct {
	Quantity       *int64
	Threshold      *int64
	ExpirationDate *time.Time
	Temperature    *decimal.Decimal
}

// Equal compara dos snapshots campo a campo.
func (s AlertSnapshot) Equal(o AlertSnapshot) bool {
	return eqInt(s.Quantity, o.Quantity) &&
		eqInt(s.Threshold, o.Threshold) &&
		eqTime(s.ExpirationDate, o.ExpirationDate) &&
		eqDec(s.Temperature, o.Temperature)
}

// StockAlert alerta operativa sobre un agregado o un lote.
type StockAlert struct {
	ID         string
	CompanyID  string
	StockID    string // vacío si no aplica
	LotID      string // vacío si no aplica
	Type       string
	Priority   string
	Status     string
	Snapshot   AlertSnapshot
	Message    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// IsOpen indica si la alerta sigue abierta (NEW o IN_PROGRESS).
func (a *StockAlert) IsOpen() bool {
	return a.Status == AlertStatusNew || a.Status == AlertStatusInProgress
}

// Refresh actualiza prioridad, snapshot y mensaje. Devuelve true si algo cambió.
func (a *StockAlert) Refresh(priority string, snap AlertSnapshot, message string, now time.Time) bool {
	if a.Priority == priority && a.Snapshot.Equal(snap) && a.Message == message {
		return false
	}
	a.Priority = priority
	a.Snapshot = snap
	a.Message = message
	a.UpdatedAt = now
	return true
}

// Clone copia la alerta.
func (a *StockAlert) Clone() *StockAlert {
	c := *a
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}

func eqInt(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func eqDec(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
