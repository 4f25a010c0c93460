package repository

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// StockAlertRepository puerto de persistencia de alertas.
type StockAlertRepository interface {
	Create(ctx context.Context, alert *entity.StockAlert) error
	// Update reescribe una alerta abierta; una alerta ya cerrada devuelve domain.ErrInvalidTransition.
	Update(ctx context.Context, alert *entity.StockAlert) error
	// RefreshSnapshot escribe prioridad, snapshot, mensaje y updated_at solo si la alerta
	// sigue abierta. Devuelve false si entretanto fue resuelta o ignorada.
	RefreshSnapshot(ctx context.Context, alert *entity.StockAlert) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.StockAlert, error)
	// ListOpen devuelve las alertas NEW o IN_PROGRESS de la empresa.
	ListOpen(ctx context.Context, companyID string) ([]*entity.StockAlert, error)
	// List devuelve alertas de la empresa; status vacío = todas. Más recientes primero.
	List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.StockAlert, error)
}
