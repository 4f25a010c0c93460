package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// movementRecorder escribe asientos del libro de movimientos para un agregado
// dentro de una transacción. Cada asiento afecta un único lote.
type movementRecorder struct {
	repo     repository.StockMovementRepository
	stock    *entity.Stock
	now      time.Time
	recorded []*entity.StockMovement
}

func newMovementRecorder(repo repository.StockMovementRepository, stock *entity.Stock, now time.Time) *movementRecorder {
	return &movementRecorder{repo: repo, stock: stock, now: now}
}

// Exit registra una salida; quantity es positiva y se guarda con signo negativo.
func (r *movementRecorder) Exit(ctx context.Context, lot *entity.StockLot, quantity int64, unitPrice decimal.Decimal, eventRef, reason string) (*entity.StockMovement, error) {
	return r.record(ctx, lot, entity.MovementExit, -quantity, unitPrice, eventRef, reason, "")
}

// Entry registra una entrada. reversalOf es el id de la salida compensada, si aplica.
func (r *movementRecorder) Entry(ctx context.Context, lot *entity.StockLot, quantity int64, unitPrice decimal.Decimal, eventRef, reason, reversalOf string) (*entity.StockMovement, error) {
	return r.record(ctx, lot, entity.MovementEntry, quantity, unitPrice, eventRef, reason, reversalOf)
}

func (r *movementRecorder) record(ctx context.Context, lot *entity.StockLot, direction string, quantity int64, unitPrice decimal.Decimal, eventRef, reason, reversalOf string) (*entity.StockMovement, error) {
	if quantity == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if lot.ArticleID != r.stock.ArticleID || lot.CompanyID != r.stock.CompanyID {
		return nil, domain.ErrTenantMismatch
	}
	mov := &entity.StockMovement{
		ID:         uuid.New().String(),
		CompanyID:  r.stock.CompanyID,
		StockID:    r.stock.ID,
		ArticleID:  r.stock.ArticleID,
		LotID:      lot.ID,
		Direction:  direction,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		EventRef:   eventRef,
		Reason:     reason,
		ReversalOf: reversalOf,
		CreatedAt:  r.now,
	}
	if err := r.repo.Create(ctx, mov); err != nil {
		return nil, err
	}
	r.recorded = append(r.recorded, mov)
	return mov, nil
}

// Recorded asientos escritos por este recorder, en orden.
func (r *movementRecorder) Recorded() []*entity.StockMovement {
	return r.recorded
}
