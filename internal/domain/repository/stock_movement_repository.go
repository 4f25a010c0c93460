package repository

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// MovementFilter filtros de consulta del libro de movimientos.
type MovementFilter struct {
	ArticleID string
	LotID     string
	EventRef  string
	Limit     int // 0 = sin límite
	Offset    int
}

// StockMovementRepository puerto del libro de movimientos (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// List devuelve movimientos en orden de registro (más antiguo primero).
	List(ctx context.Context, companyID string, f MovementFilter) ([]*entity.StockMovement, error)
}
