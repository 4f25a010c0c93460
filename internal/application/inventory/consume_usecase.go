package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// ConsumeUseCase registra salidas de stock repartidas entre lotes según FIFO o FEFO.
// Todo el consumo ocurre en una transacción con el agregado bloqueado (SELECT FOR UPDATE):
// o se descuenta la cantidad completa o no cambia nada.
type ConsumeUseCase struct {
	txRunner    TxRunner
	articleRepo repository.ArticleRepository
	guard       IdempotencyGuard
	observer    StockObserver
	log         *logger.Logger
	now         func() time.Time
}

// NewConsumeUseCase construye el caso de uso. guard y observer pueden ser nil.
func NewConsumeUseCase(
	txRunner TxRunner,
	articleRepo repository.ArticleRepository,
	guard IdempotencyGuard,
	observer StockObserver,
	log *logger.Logger,
) *ConsumeUseCase {
	return &ConsumeUseCase{
		txRunner:    txRunner,
		articleRepo: articleRepo,
		guard:       guard,
		observer:    observer,
		log:         log.Component("consume"),
		now:         time.Now,
	}
}

// Consume descuenta quantity unidades del artículo. Si el stock disponible no alcanza
// devuelve *domain.InsufficientStockError y no modifica ningún lote.
func (uc *ConsumeUseCase) Consume(ctx context.Context, companyID, articleID string, in dto.ConsumeRequest) (*dto.ConsumeResponse, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.Policy != "" && !entity.ValidPolicy(in.Policy) {
		return nil, domain.ErrInvalidInput
	}
	article, err := loadArticle(ctx, uc.articleRepo, companyID, articleID)
	if err != nil {
		return nil, err
	}

	if in.EventRef != "" && uc.guard != nil {
		key := ConsumptionKey(companyID, articleID, in.EventRef)
		ok, gerr := uc.guard.Acquire(ctx, key)
		if gerr != nil {
			return nil, gerr
		}
		if !ok {
			return nil, domain.ErrDuplicate
		}
		defer func() {
			if err == nil {
				return
			}
			if rerr := uc.guard.Release(context.WithoutCancel(ctx), key); rerr != nil {
				uc.log.Error().Err(rerr).
					Str("company_id", companyID).
					Str("article_id", articleID).
					Str("event_ref", in.EventRef).
					AnErr("cause", err).
					Msg("no se pudo liberar la clave de idempotencia; los reintentos del evento se rechazarán hasta que venza")
			}
		}()
	}

	now := uc.now()
	var out *dto.ConsumeResponse
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		stock, err := stockRepo.GetForUpdate(ctx, companyID, articleID)
		if err != nil {
			return err
		}
		if stock == nil {
			return &domain.InsufficientStockError{ArticleID: articleID, Requested: in.Quantity}
		}
		policy := resolvePolicy(in.Policy, stock)

		// Un evento con salidas sin anular ya se consumió aunque la clave del guard haya vencido.
		if in.EventRef != "" {
			prior, err := movRepo.List(ctx, companyID, repository.MovementFilter{ArticleID: articleID, EventRef: in.EventRef})
			if err != nil {
				return err
			}
			if len(pendingExits(prior)) > 0 {
				return domain.ErrDuplicate
			}
		}

		lots, err := lotRepo.ListByArticle(ctx, companyID, articleID, false)
		if err != nil {
			return err
		}
		plan, err := inventory.PlanWithdrawal(articleID, in.Quantity, lots, policy)
		if err != nil {
			return err
		}

		rec := newMovementRecorder(movRepo, stock, now)
		for _, d := range plan.Deductions {
			if err := lotRepo.UpdateRemaining(ctx, d.Lot.ID, d.Remaining); err != nil {
				return err
			}
			d.Lot.QuantityRemaining = d.Remaining
			if _, err := rec.Exit(ctx, d.Lot, d.Quantity, movementPrice(d.Lot, article), in.EventRef, in.Reason); err != nil {
				return err
			}
		}

		inventory.Derive(stock, lots, now)
		if err := stockRepo.UpdateDerived(ctx, stock); err != nil {
			return err
		}

		out = &dto.ConsumeResponse{
			ArticleID:       articleID,
			Policy:          policy,
			Movements:       toMovementResponses(rec.Recorded()),
			RemainingAfter:  stock.Quantity,
			TotalCost:       plan.TotalCost,
			AverageUnitCost: plan.AverageCost,
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

// ConsumptionKey clave de idempotencia de un evento de consumo.
func ConsumptionKey(companyID, articleID, eventRef string) string {
	return "consume:" + companyID + ":" + articleID + ":" + eventRef
}
