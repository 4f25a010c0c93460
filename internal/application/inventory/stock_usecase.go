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

// StockUseCase consultas sobre el libro de lotes y administración del agregado
// (umbral, política, borrado lógico de lotes, verificación de consistencia).
type StockUseCase struct {
	txRunner    TxRunner
	articleRepo repository.ArticleRepository
	stockRepo   repository.StockRepository
	lotRepo     repository.StockLotRepository
	movRepo     repository.StockMovementRepository
	observer    StockObserver
	now         func() time.Time
}

// NewStockUseCase construye el caso de uso. Los repositorios sueltos se usan solo para lecturas.
func NewStockUseCase(
	txRunner TxRunner,
	articleRepo repository.ArticleRepository,
	stockRepo repository.StockRepository,
	lotRepo repository.StockLotRepository,
	movRepo repository.StockMovementRepository,
	observer StockObserver,
) *StockUseCase {
	return &StockUseCase{
		txRunner:    txRunner,
		articleRepo: articleRepo,
		stockRepo:   stockRepo,
		lotRepo:     lotRepo,
		movRepo:     movRepo,
		observer:    observer,
		now:         time.Now,
	}
}

// QueryAvailable suma de saldos de los lotes vivos (no la caché del agregado).
func (uc *StockUseCase) QueryAvailable(ctx context.Context, companyID, articleID string) (*dto.AvailableResponse, error) {
	if _, err := loadArticle(ctx, uc.articleRepo, companyID, articleID); err != nil {
		return nil, err
	}
	lots, err := uc.lotRepo.ListByArticle(ctx, companyID, articleID, false)
	if err != nil {
		return nil, err
	}
	return &dto.AvailableResponse{ArticleID: articleID, Available: inventory.AvailableQuantity(lots)}, nil
}

// QueryNearExpiration lotes con saldo que vencen entre hoy y hoy + horizonDays, en orden FEFO.
// horizonDays = 0 usa el plazo de aviso de la categoría del artículo.
func (uc *StockUseCase) QueryNearExpiration(ctx context.Context, companyID, articleID string, horizonDays int) (*dto.NearExpirationResponse, error) {
	if horizonDays < 0 {
		return nil, domain.ErrInvalidInput
	}
	article, err := loadArticle(ctx, uc.articleRepo, companyID, articleID)
	if err != nil {
		return nil, err
	}
	if horizonDays == 0 {
		horizonDays = article.ExpirationLeadDays(entity.DefaultExpirationAlertDays)
	}
	lots, err := uc.lotRepo.ListByArticle(ctx, companyID, articleID, false)
	if err != nil {
		return nil, err
	}
	near := inventory.NearExpirationLots(lots, uc.now(), horizonDays)
	return &dto.NearExpirationResponse{
		ArticleID:   articleID,
		HorizonDays: horizonDays,
		Lots:        toLotResponses(near),
	}, nil
}

// HasExpiredLots indica si algún lote vivo con saldo venció antes de asOf.
func (uc *StockUseCase) HasExpiredLots(ctx context.Context, companyID, articleID string, asOf time.Time) (bool, error) {
	if _, err := loadArticle(ctx, uc.articleRepo, companyID, articleID); err != nil {
		return false, err
	}
	lots, err := uc.lotRepo.ListByArticle(ctx, companyID, articleID, false)
	if err != nil {
		return false, err
	}
	return inventory.HasExpiredLots(lots, asOf), nil
}

// Summary resumen del agregado recalculado desde los lotes.
func (uc *StockUseCase) Summary(ctx context.Context, companyID, articleID string) (*dto.StockResponse, error) {
	if _, err := loadArticle(ctx, uc.articleRepo, companyID, articleID); err != nil {
		return nil, err
	}
	stock, err := uc.stockRepo.Get(ctx, companyID, articleID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.lotRepo.ListByArticle(ctx, companyID, articleID, false)
	if err != nil {
		return nil, err
	}
	view := stock.Clone()
	inventory.Derive(view, lots, stock.UpdatedAt)
	return toStockResponse(view, inventory.HasExpiredLots(lots, uc.now())), nil
}

// ListLots lotes del artículo; includeDeleted agrega los borrados lógicamente.
func (uc *StockUseCase) ListLots(ctx context.Context, companyID, articleID string, includeDeleted bool) ([]dto.LotResponse, error) {
	if _, err := loadArticle(ctx, uc.articleRepo, companyID, articleID); err != nil {
		return nil, err
	}
	lots, err := uc.lotRepo.ListByArticle(ctx, companyID, articleID, includeDeleted)
	if err != nil {
		return nil, err
	}
	inventory.SortLots(lots, entity.PolicyFIFO)
	return toLotResponses(lots), nil
}

// ListMovements libro de movimientos del artículo, más antiguo primero.
func (uc *StockUseCase) ListMovements(ctx context.Context, companyID, articleID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	if _, err := loadArticle(ctx, uc.articleRepo, companyID, articleID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	movs, err := uc.movRepo.List(ctx, companyID, repository.MovementFilter{
		ArticleID: articleID,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &dto.MovementListResponse{
		Items: toMovementResponses(movs),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ConfigureStock fija umbral crítico y política por defecto, creando el agregado si no existe.
func (uc *StockUseCase) ConfigureStock(ctx context.Context, companyID, articleID string, in dto.ConfigureStockRequest) (*dto.StockResponse, error) {
	if in.CriticalThreshold != nil && *in.CriticalThreshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.DefaultPolicy != "" && !entity.ValidPolicy(in.DefaultPolicy) {
		return nil, domain.ErrInvalidInput
	}
	if _, err := loadArticle(ctx, uc.articleRepo, companyID, articleID); err != nil {
		return nil, err
	}

	now := uc.now()
	var out *dto.StockResponse
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		stockRepo repository.StockRepository,
		_ repository.StockMovementRepository,
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
		if in.CriticalThreshold != nil {
			stock.CriticalThreshold = *in.CriticalThreshold
		}
		if in.DefaultPolicy != "" {
			stock.DefaultPolicy = in.DefaultPolicy
		}
		stock.UpdatedAt = now
		if err := stockRepo.UpdateSettings(ctx, stock); err != nil {
			return err
		}
		lots, err := refreshDerived(ctx, lotRepo, stockRepo, stock, now)
		if err != nil {
			return err
		}
		out = toStockResponse(stock, inventory.HasExpiredLots(lots, now))
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

// SoftDeleteLot marca el lote como borrado; deja de contar para stock y asignación.
// No genera movimiento.
func (uc *StockUseCase) SoftDeleteLot(ctx context.Context, companyID, lotID string, in dto.SoftDeleteLotRequest) (*dto.LotResponse, error) {
	if in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	found, err := uc.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	if found.CompanyID != companyID {
		return nil, domain.ErrTenantMismatch
	}
	articleID := found.ArticleID

	now := uc.now()
	var out dto.LotResponse
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.StockLotRepository,
		stockRepo repository.StockRepository,
		_ repository.StockMovementRepository,
	) error {
		stock, err := stockRepo.GetForUpdate(ctx, companyID, articleID)
		if err != nil {
			return err
		}
		lot, err := lotRepo.GetByID(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if lot.Deleted {
			return domain.ErrConflict
		}
		lot.Deleted = true
		lot.DeletedAt = &now
		lot.DeleteReason = in.Reason
		if err := lotRepo.SoftDelete(ctx, lot); err != nil {
			return err
		}
		if stock != nil {
			if _, err := refreshDerived(ctx, lotRepo, stockRepo, stock, now); err != nil {
				return err
			}
		}
		out = toLotResponse(lot)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.observer != nil {
		uc.observer.StockChanged(ctx, companyID, articleID)
	}
	return &out, nil
}

// CheckConsistency lista los agregados cuya caché no coincide con la suma de sus lotes.
func (uc *StockUseCase) CheckConsistency(ctx context.Context, companyID string) ([]dto.ConsistencyIssue, error) {
	stocks, err := uc.stockRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	issues := []dto.ConsistencyIssue{}
	for _, s := range stocks {
		lots, err := uc.lotRepo.ListByArticle(ctx, companyID, s.ArticleID, false)
		if err != nil {
			return nil, err
		}
		if inventory.Consistent(s, lots) {
			continue
		}
		issues = append(issues, dto.ConsistencyIssue{
			StockID:        s.ID,
			ArticleID:      s.ArticleID,
			CachedQuantity: s.Quantity,
			LedgerQuantity: inventory.AvailableQuantity(lots),
			CachedValue:    s.Value,
			LedgerValue:    inventory.Value(lots),
		})
	}
	return issues, nil
}
