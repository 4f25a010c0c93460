package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// ReverseUseCase anula un evento de consumo devolviendo a cada lote lo que se le retiró.
// Los movimientos originales no se modifican: se agregan entradas compensatorias.
type ReverseUseCase struct {
	txRunner    TxRunner
	articleRepo repository.ArticleRepository
	guard       IdempotencyGuard
	observer    StockObserver
	log         *logger.Logger
	now         func() time.Time
}

// NewReverseUseCase construye el caso de uso. guard y observer pueden ser nil.
func NewReverseUseCase(txRunner TxRunner, articleRepo repository.ArticleRepository, guard IdempotencyGuard, observer StockObserver, log *logger.Logger) *ReverseUseCase {
	return &ReverseUseCase{
		txRunner:    txRunner,
		articleRepo: articleRepo,
		guard:       guard,
		observer:    observer,
		log:         log.Component("reverse"),
		now:         time.Now,
	}
}

// Reverse compensa las salidas del evento in.EventRef que aún no tengan compensación.
// Devuelve domain.ErrNotFound si no queda nada por compensar.
func (uc *ReverseUseCase) Reverse(ctx context.Context, companyID, articleID string, in dto.ReverseRequest) (*dto.ReverseResponse, error) {
	if in.EventRef == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := loadArticle(ctx, uc.articleRepo, companyID, articleID); err != nil {
		return nil, err
	}
	reason := in.Reason
	if reason == "" {
		reason = "anulación de consumo"
	}

	now := uc.now()
	var out *dto.ReverseResponse
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		stock, err := stockRepo.GetForUpdate(ctx, companyID, articleID)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.ErrNotFound
		}
		movs, err := movRepo.List(ctx, companyID, repository.MovementFilter{ArticleID: articleID, EventRef: in.EventRef})
		if err != nil {
			return err
		}
		all, err := lotRepo.ListByArticle(ctx, companyID, articleID, true)
		if err != nil {
			return err
		}
		lots := make(map[string]*entity.StockLot, len(all))
		for _, l := range all {
			lots[l.ID] = l
		}

		rec := newMovementRecorder(movRepo, stock, now)
		for _, m := range pendingExits(movs) {
			lot := lots[m.LotID]
			if lot == nil {
				return domain.ErrNotFound
			}
			qty := -m.Quantity
			remaining := lot.QuantityRemaining + qty
			if remaining > lot.QuantityInitial {
				return domain.ErrConflict
			}
			if err := lotRepo.UpdateRemaining(ctx, lot.ID, remaining); err != nil {
				return err
			}
			lot.QuantityRemaining = remaining
			if _, err := rec.Entry(ctx, lot, qty, m.UnitPrice, in.EventRef, reason, m.ID); err != nil {
				return err
			}
		}
		if len(rec.Recorded()) == 0 {
			return domain.ErrNotFound
		}

		if _, err := refreshDerived(ctx, lotRepo, stockRepo, stock, now); err != nil {
			return err
		}
		out = &dto.ReverseResponse{
			ArticleID:      articleID,
			EventRef:       in.EventRef,
			Movements:      toMovementResponses(rec.Recorded()),
			AvailableAfter: stock.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// El evento puede volver a consumirse después de anulado.
	if uc.guard != nil {
		if err := uc.guard.Release(ctx, ConsumptionKey(companyID, articleID, in.EventRef)); err != nil {
			uc.log.Warn().Err(err).Str("company_id", companyID).Str("event_ref", in.EventRef).Msg("no se pudo liberar la clave del evento anulado")
		}
	}
	if uc.observer != nil {
		uc.observer.StockChanged(ctx, companyID, articleID)
	}
	return out, nil
}
