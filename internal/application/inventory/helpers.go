package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// loadArticle valida que el artículo exista y pertenezca a la empresa.
func loadArticle(ctx context.Context, repo repository.ArticleRepository, companyID, articleID string) (*entity.Article, error) {
	if companyID == "" || articleID == "" {
		return nil, domain.ErrInvalidInput
	}
	article, err := repo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.ErrArticleNotFound
	}
	if article.CompanyID != companyID {
		return nil, domain.ErrTenantMismatch
	}
	return article, nil
}

// resolvePolicy política solicitada, luego la del agregado, luego FEFO.
func resolvePolicy(requested string, stock *entity.Stock) string {
	if requested != "" {
		return requested
	}
	if stock != nil && entity.ValidPolicy(stock.DefaultPolicy) {
		return stock.DefaultPolicy
	}
	return entity.PolicyFEFO
}

// refreshDerived recalcula la vista materializada del agregado con los lotes actuales.
func refreshDerived(ctx context.Context, lotRepo repository.StockLotRepository, stockRepo repository.StockRepository, stock *entity.Stock, now time.Time) ([]*entity.StockLot, error) {
	lots, err := lotRepo.ListByArticle(ctx, stock.CompanyID, stock.ArticleID, false)
	if err != nil {
		return nil, err
	}
	inventory.Derive(stock, lots, now)
	if err := stockRepo.UpdateDerived(ctx, stock); err != nil {
		return nil, err
	}
	return lots, nil
}

// movementPrice costo del lote si lo tiene; si no, precio del artículo.
func movementPrice(lot *entity.StockLot, article *entity.Article) decimal.Decimal {
	if lot.UnitCost != nil {
		return *lot.UnitCost
	}
	if article != nil {
		return article.UnitPrice
	}
	return decimal.Zero
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:         m.ID,
		LotID:      m.LotID,
		Direction:  m.Direction,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		EventRef:   m.EventRef,
		Reason:     m.Reason,
		ReversalOf: m.ReversalOf,
		CreatedAt:  m.CreatedAt,
	}
}

func toMovementResponses(ms []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toLotResponse(l *entity.StockLot) dto.LotResponse {
	return dto.LotResponse{
		ID:                l.ID,
		ArticleID:         l.ArticleID,
		QuantityInitial:   l.QuantityInitial,
		QuantityRemaining: l.QuantityRemaining,
		EntryDate:         l.EntryDate,
		ExpirationDate:    dto.DatePtr(l.ExpirationDate),
		UnitCost:          l.UnitCost,
		Supplier:          l.Supplier,
		LotNumber:         l.LotNumber,
		Comment:           l.Comment,
		Deleted:           l.Deleted,
		DeleteReason:      l.DeleteReason,
	}
}

func toLotResponses(lots []*entity.StockLot) []dto.LotResponse {
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, toLotResponse(l))
	}
	return out
}

func toStockResponse(s *entity.Stock, hasExpired bool) *dto.StockResponse {
	return &dto.StockResponse{
		ID:                s.ID,
		ArticleID:         s.ArticleID,
		CriticalThreshold: s.CriticalThreshold,
		DefaultPolicy:     resolvePolicy("", s),
		Quantity:          s.Quantity,
		Value:             s.Value,
		ExpirationHint:    dto.DatePtr(s.ExpirationHint),
		HasExpiredLots:    hasExpired,
		UpdatedAt:         s.UpdatedAt,
	}
}

// pendingExits salidas del evento que todavía no tienen compensación.
func pendingExits(movs []*entity.StockMovement) []*entity.StockMovement {
	compensated := make(map[string]bool)
	for _, m := range movs {
		if m.ReversalOf != "" {
			compensated[m.ReversalOf] = true
		}
	}
	var out []*entity.StockMovement
	for _, m := range movs {
		if m.IsExit() && !compensated[m.ID] {
			out = append(out, m)
		}
	}
	return out
}
