package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// ReplenishUseCase registra la entrada de un lote nuevo y su movimiento ENTRY.
// Crea el agregado del artículo si aún no existe.
type ReplenishUseCase struct {
	txRunner    TxRunner
	articleRepo repository.ArticleRepository
	observer    StockObserver
	now         func() time.Time
}

// NewReplenishUseCase construye el caso de uso de reposición. observer puede ser nil.
func NewReplenishUseCase(txRunner TxRunner, articleRepo repository.ArticleRepository, observer StockObserver) *ReplenishUseCase {
	return &ReplenishUseCase{
		txRunner:    txRunner,
		articleRepo: articleRepo,
		observer:    observer,
		now:         time.Now,
	}
}

// Replenish crea el lote con cantidad inicial = saldo = in.Quantity.
func (uc *ReplenishUseCase) Replenish(ctx context.Context, companyID, articleID string, in dto.ReplenishRequest) (*dto.ReplenishResponse, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	article, err := loadArticle(ctx, uc.articleRepo, companyID, articleID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	entryDate := now
	if t := in.EntryDate.TimePtr(); t != nil {
		entryDate = *t
	}
	expiration := in.ExpirationDate.TimePtr()
	if expiration != nil {
		day := entity.CalendarDay(*expiration)
		if day.Before(entity.CalendarDay(entryDate)) {
			return nil, domain.ErrInvalidInput
		}
		expiration = &day
	}

	lot := &entity.StockLot{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		ArticleID:         articleID,
		QuantityInitial:   in.Quantity,
		QuantityRemaining: in.Quantity,
		EntryDate:         entryDate,
		ExpirationDate:    expiration,
		UnitCost:          in.UnitCost,
		Supplier:          in.Supplier,
		LotNumber:         in.LotNumber,
		Comment:           in.Comment,
		CreatedAt:         now,
	}

	var out *dto.ReplenishResponse
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		stock, err := stockRepo.Ensure(ctx, &entity.Stock{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			ArticleID: articleID,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		current, err := lotRepo.ListByArticle(ctx, companyID, articleID, false)
		if err != nil {
			return err
		}
		if !inventory.FitsEntry(current, in.Quantity) {
			return domain.ErrInvalidQuantity
		}
		if err := lotRepo.Create(ctx, lot); err != nil {
			return err
		}
		mov, err := newMovementRecorder(movRepo, stock, now).
			Entry(ctx, lot, in.Quantity, movementPrice(lot, article), "", "reposición", "")
		if err != nil {
			return err
		}
		lots, err := refreshDerived(ctx, lotRepo, stockRepo, stock, now)
		if err != nil {
			return err
		}
		out = &dto.ReplenishResponse{
			LotID:          lot.ID,
			Movement:       toMovementResponse(mov),
			AvailableAfter: inventory.AvailableQuantity(lots),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.observer != nil {
		uc.observer.StockChanged(ctx, companyID, articleID)
	}
	return out, nil
}
