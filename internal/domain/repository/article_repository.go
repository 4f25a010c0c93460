package repository

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// ArticleRepository puerto de solo lectura hacia el catálogo de artículos (colaborador externo).
type ArticleRepository interface {
	// GetByID devuelve el artículo con su categoría, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Article, error)
	ListByIDs(ctx context.Context, companyID string, ids []string) ([]*entity.Article, error)
}
