package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultExpirationAlertDays anticipación por defecto para alertas de vencimiento.
const DefaultExpirationAlertDays = 30

// Article representa un artículo del catálogo (reactivo, consumible).
// El catálogo es externo al motor: aquí solo se lee.
type Article struct {
	ID          string
	CompanyID   string
	Name        string
	UnitMeasure string
	UnitPrice   decimal.Decimal
	CategoryID  string
	Category    *Category // nil si el artículo no tiene categoría
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExpirationLeadDays devuelve la anticipación de alerta de vencimiento del artículo.
func (a *Article) ExpirationLeadDays(def int) int {
	if def <= 0 {
		def = DefaultExpirationAlertDays
	}
	if a == nil || a.Category == nil || a.Category.ExpirationAlertDays <= 0 {
		return def
	}
	return a.Category.ExpirationAlertDays
}

// IsColdChainCritical indica si el artículo requiere cadena de frío continua.
func (a *Article) IsColdChainCritical() bool {
	return a != nil && a.Category != nil && a.Category.ColdChainCritical
}
