package repository

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// StockRepository define el puerto para el agregado por (empresa, artículo).
// Usado dentro de transacciones para garantizar consistencia con los lotes.
type StockRepository interface {
	// Get devuelve el agregado o nil si no existe.
	Get(ctx context.Context, companyID, articleID string) (*entity.Stock, error)
	// GetForUpdate bloquea el agregado (SELECT FOR UPDATE) hasta el fin de la transacción.
	// Devuelve nil si no existe.
	GetForUpdate(ctx context.Context, companyID, articleID string) (*entity.Stock, error)
	// Ensure crea el agregado si no existe y lo devuelve bloqueado.
	Ensure(ctx context.Context, stock *entity.Stock) (*entity.Stock, error)
	// UpdateSettings modifica umbral y política; nunca la cantidad.
	UpdateSettings(ctx context.Context, stock *entity.Stock) error
	// UpdateDerived guarda la vista materializada (cantidad, valor, vencimiento próximo).
	UpdateDerived(ctx context.Context, stock *entity.Stock) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Stock, error)
	// ListCompanyIDs devuelve las empresas con al menos un agregado.
	ListCompanyIDs(ctx context.Context) ([]string, error)
}
