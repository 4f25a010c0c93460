package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// legacyLotComment identifica los lotes creados al migrar stock sin lotes.
const legacyLotComment = "lote sintético: migración de stock sin lotes"

// ReconcileUseCase lleva agregados heredados (cantidad sin lotes) al modelo por lotes
// y recalcula las cachés desalineadas.
type ReconcileUseCase struct {
	txRunner  TxRunner
	stockRepo repository.StockRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewReconcileUseCase construye el caso de uso de reconciliación.
func NewReconcileUseCase(txRunner TxRunner, stockRepo repository.StockRepository, log *logger.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{
		txRunner:  txRunner,
		stockRepo: stockRepo,
		log:       log.Component("stock_reconcile"),
		now:       time.Now,
	}
}

// MigrateLegacyStock para cada agregado de la empresa: si la cantidad guardada supera la
// suma de sus lotes, crea un lote sintético por la diferencia (con su ENTRY); en cualquier
// otra divergencia solo recalcula la caché desde los lotes.
func (uc *ReconcileUseCase) MigrateLegacyStock(ctx context.Context, companyID string) (*dto.ReconcileReport, error) {
	stocks, err := uc.stockRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	report := &dto.ReconcileReport{CompanyID: companyID, SyntheticLots: []string{}, Refreshed: []string{}}
	for _, s := range stocks {
		lotID, refreshed, err := uc.reconcileOne(ctx, companyID, s.ArticleID)
		if err != nil {
			return nil, err
		}
		if lotID != "" {
			report.SyntheticLots = append(report.SyntheticLots, lotID)
			uc.log.Info().
				Str("company_id", companyID).
				Str("article_id", s.ArticleID).
				Str("lot_id", lotID).
				Msg("lote sintético creado para stock heredado")
		} else if refreshed {
			report.Refreshed = append(report.Refreshed, s.ID)
			uc.log.Warn().
				Str("company_id", companyID).
				Str("article_id", s.ArticleID).
				Msg("caché de stock recalculada desde los lotes")
		}
	}
	return report, nil
}

func (uc *ReconcileUseCase) reconcileOne(ctx context.Context, companyID, articleID string) (lotID string, refreshed bool, err error) {
	now := uc.now()
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		stock, err := stockRepo.GetForUpdate(ctx, companyID, articleID)
		if err != nil || stock == nil {
			return err
		}
		lots, err := lotRepo.ListByArticle(ctx, companyID, articleID, false)
		if err != nil {
			return err
		}
		if inventory.Consistent(stock, lots) {
			return nil
		}

		ledgerQty := inventory.AvailableQuantity(lots)
		if diff := stock.Quantity - ledgerQty; diff > 0 {
			lot := &entity.StockLot{
				ID:                uuid.New().String(),
				CompanyID:         companyID,
				ArticleID:         articleID,
				QuantityInitial:   diff,
				QuantityRemaining: diff,
				EntryDate:         stock.CreatedAt,
				UnitCost:          legacyUnitCost(stock, lots, diff),
				Comment:           legacyLotComment,
				CreatedAt:         now,
			}
			if err := lotRepo.Create(ctx, lot); err != nil {
				return err
			}
			price := decimal.Zero
			if lot.UnitCost != nil {
				price = *lot.UnitCost
			}
			if _, err := newMovementRecorder(movRepo, stock, now).Entry(ctx, lot, diff, price, "", "migración de stock heredado", ""); err != nil {
				return err
			}
			lotID = lot.ID
		}
		if _, err := refreshDerived(ctx, lotRepo, stockRepo, stock, now); err != nil {
			return err
		}
		refreshed = true
		return nil
	})
	return lotID, refreshed, err
}

// legacyUnitCost reparte el valor heredado no cubierto por lotes entre las unidades sintéticas.
func legacyUnitCost(stock *entity.Stock, lots []*entity.StockLot, qty int64) *decimal.Decimal {
	uncovered := stock.Value.Sub(inventory.Value(lots))
	if !uncovered.IsPositive() || qty <= 0 {
		return nil
	}
	c := uncovered.Div(decimal.NewFromInt(qty)).Round(4)
	return &c
}
