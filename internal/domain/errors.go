package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInvalidQuantity     = errors.New("la cantidad debe ser mayor que cero")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrArticleNotFound     = errors.New("artículo no encontrado")
	ErrTenantMismatch      = errors.New("el recurso pertenece a otra empresa")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente la operación")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
)

// InsufficientStockError detalla el faltante de una solicitud de consumo.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientStockError struct {
	ArticleID string
	Requested int64
	Available int64
}

// Shortfall cantidad que falta para cubrir la solicitud.
func (e *InsufficientStockError) Shortfall() int64 {
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el artículo %s: solicitado %d, disponible %d, faltan %d",
		e.ArticleID, e.Requested, e.Available, e.Shortfall())
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
