package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Políticas de selección de lotes para las salidas.
const (
	PolicyFIFO = "FIFO" // primero en entrar, primero en salir
	PolicyFEFO = "FEFO" // primero en vencer, primero en salir
)

// ValidPolicy indica si p es una política de salida conocida.
func ValidPolicy(p string) bool {
	return p == PolicyFIFO || p == PolicyFEFO
}

// Stock es el agregado por (empresa, artículo). Quantity y Value son una vista
// materializada de los lotes y se recalculan en la misma transacción que los modifica.
type Stock struct {
	ID                string
	CompanyID         string
	ArticleID         string
	CriticalThreshold int64
	DefaultPolicy     string     // vacío = FEFO
	ExpirationHint    *time.Time // vencimiento más próximo entre lotes vivos con saldo
	Quantity          int64
	Value             decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Clone copia el agregado.
func (s *Stock) Clone() *Stock {
	c := *s
	if s.ExpirationHint != nil {
		t := *s.ExpirationHint
		c.ExpirationHint = &t
	}
	return &c
}
