package inventory

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error la transacción se revierte completa.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.StockLotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// IdempotencyGuard reserva claves de eventos de consumo para rechazar reenvíos.
type IdempotencyGuard interface {
	// Acquire devuelve false si la clave ya estaba reservada.
	Acquire(ctx context.Context, key string) (bool, error)
	// Release libera la clave (consumo fallido).
	Release(ctx context.Context, key string) error
}

// StockObserver recibe notificaciones después de confirmar un cambio de stock.
type StockObserver interface {
	StockChanged(ctx context.Context, companyID, articleID string)
}
