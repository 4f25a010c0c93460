package repository

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// StockLotRepository puerto de persistencia del libro de lotes.
// Los lotes nunca se eliminan físicamente.
type StockLotRepository interface {
	Create(ctx context.Context, lot *entity.StockLot) error
	GetByID(ctx context.Context, id string) (*entity.StockLot, error)
	// ListByArticle devuelve los lotes del artículo; includeDeleted incluye los borrados lógicamente.
	ListByArticle(ctx context.Context, companyID, articleID string, includeDeleted bool) ([]*entity.StockLot, error)
	// ListLiveByCompany devuelve todos los lotes vivos con saldo de la empresa.
	ListLiveByCompany(ctx context.Context, companyID string) ([]*entity.StockLot, error)
	UpdateRemaining(ctx context.Context, id string, remaining int64) error
	SoftDelete(ctx context.Context, lot *entity.StockLot) error
}
