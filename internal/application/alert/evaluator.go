package alert

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// EvaluatorUseCase deriva alertas de stock crítico y vencimiento a partir de los
// agregados y lotes, y las reconcilia con las alertas abiertas: una condición ya
// alertada se actualiza en vez de duplicarse. Las alertas abiertas cuya condición
// desapareció no se cierran solas; se resuelven manualmente.
type EvaluatorUseCase struct {
	stockRepo       repository.StockRepository
	lotRepo         repository.StockLotRepository
	articleRepo     repository.ArticleRepository
	alertRepo       repository.StockAlertRepository
	defaultLeadDays int
	log             *logger.Logger
	now             func() time.Time

	locks sync.Map // companyID -> *sync.Mutex
}

// NewEvaluatorUseCase construye el evaluador. defaultLeadDays aplica a artículos cuya
// categoría no define plazo de aviso.
func NewEvaluatorUseCase(
	stockRepo repository.StockRepository,
	lotRepo repository.StockLotRepository,
	articleRepo repository.ArticleRepository,
	alertRepo repository.StockAlertRepository,
	defaultLeadDays int,
	log *logger.Logger,
) *EvaluatorUseCase {
	if defaultLeadDays <= 0 {
		defaultLeadDays = entity.DefaultExpirationAlertDays
	}
	return &EvaluatorUseCase{
		stockRepo:       stockRepo,
		lotRepo:         lotRepo,
		articleRepo:     articleRepo,
		alertRepo:       alertRepo,
		defaultLeadDays: defaultLeadDays,
		log:             log.Component("alert_evaluator"),
		now:             time.Now,
	}
}

// Evaluate recorre todos los agregados de la empresa.
func (uc *EvaluatorUseCase) Evaluate(ctx context.Context, companyID string) (*dto.EvaluateAlertsResponse, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	unlock := uc.lock(companyID)
	defer unlock()

	stocks, err := uc.stockRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	live, err := uc.lotRepo.ListLiveByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	lotsByArticle := make(map[string][]*entity.StockLot)
	for _, l := range live {
		lotsByArticle[l.ArticleID] = append(lotsByArticle[l.ArticleID], l)
	}
	ids := make([]string, 0, len(stocks))
	for _, s := range stocks {
		ids = append(ids, s.ArticleID)
	}
	articles, err := uc.articleRepo.ListByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	articleByID := make(map[string]*entity.Article, len(articles))
	for _, a := range articles {
		articleByID[a.ID] = a
	}

	now := uc.now()
	var conds []inventory.Condition
	for _, s := range stocks {
		conds = append(conds, inventory.EvaluateArticle(articleByID[s.ArticleID], s, lotsByArticle[s.ArticleID], now, uc.defaultLeadDays)...)
	}
	return uc.apply(ctx, companyID, conds, now)
}

// EvaluateArticle evalúa un solo artículo (evaluación en línea tras un cambio de stock).
func (uc *EvaluatorUseCase) EvaluateArticle(ctx context.Context, companyID, articleID string) (*dto.EvaluateAlertsResponse, error) {
	if companyID == "" || articleID == "" {
		return nil, domain.ErrInvalidInput
	}
	article, err := uc.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article != nil && article.CompanyID != companyID {
		return nil, domain.ErrTenantMismatch
	}

	unlock := uc.lock(companyID)
	defer unlock()

	stock, err := uc.stockRepo.Get(ctx, companyID, articleID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return &dto.EvaluateAlertsResponse{Created: []dto.AlertResponse{}, Updated: []dto.AlertResponse{}}, nil
	}
	lots, err := uc.lotRepo.ListByArticle(ctx, companyID, articleID, false)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	return uc.apply(ctx, companyID, inventory.EvaluateArticle(article, stock, lots, now, uc.defaultLeadDays), now)
}

// apply crea o actualiza una alerta por condición.
func (uc *EvaluatorUseCase) apply(ctx context.Context, companyID string, conds []inventory.Condition, now time.Time) (*dto.EvaluateAlertsResponse, error) {
	open, err := uc.alertRepo.ListOpen(ctx, companyID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*entity.StockAlert, len(open))
	for _, a := range open {
		key := inventory.AlertKey(a.Type, a.StockID, a.LotID)
		if _, dup := byKey[key]; !dup {
			byKey[key] = a
		}
	}

	res := &dto.EvaluateAlertsResponse{Created: []dto.AlertResponse{}, Updated: []dto.AlertResponse{}}
	for _, c := range conds {
		if existing, ok := byKey[c.Key()]; ok {
			if !existing.Refresh(c.Priority, c.Snapshot, c.Message, now) {
				continue
			}
			ok, err := uc.alertRepo.RefreshSnapshot(ctx, existing)
			if err != nil {
				return nil, err
			}
			if !ok {
				uc.log.Debug().Str("company_id", companyID).Str("alert_id", existing.ID).Msg("alerta cerrada durante la evaluación")
				continue
			}
			res.Updated = append(res.Updated, toAlertResponse(existing))
			continue
		}
		a := &entity.StockAlert{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			StockID:   c.StockID,
			LotID:     c.LotID,
			Type:      c.Type,
			Priority:  c.Priority,
			Status:    entity.AlertStatusNew,
			Snapshot:  c.Snapshot,
			Message:   c.Message,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.alertRepo.Create(ctx, a); err != nil {
			// Otra instancia abrió la misma alerta en paralelo.
			if errors.Is(err, domain.ErrDuplicate) {
				uc.log.Debug().Str("company_id", companyID).Str("key", c.Key()).Msg("alerta ya abierta por otro proceso")
				continue
			}
			return nil, err
		}
		byKey[c.Key()] = a
		res.Created = append(res.Created, toAlertResponse(a))
	}
	return res, nil
}

func (uc *EvaluatorUseCase) lock(companyID string) func() {
	m, _ := uc.locks.LoadOrStore(companyID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// InlineObserver evalúa el artículo afectado después de cada cambio de stock confirmado.
// Los errores se registran y no afectan la operación que ya se confirmó.
type InlineObserver struct {
	evaluator *EvaluatorUseCase
	log       *logger.Logger
}

// NewInlineObserver construye el observador.
func NewInlineObserver(evaluator *EvaluatorUseCase, log *logger.Logger) *InlineObserver {
	return &InlineObserver{evaluator: evaluator, log: log.Component("alert_inline")}
}

func (o *InlineObserver) StockChanged(ctx context.Context, companyID, articleID string) {
	res, err := o.evaluator.EvaluateArticle(ctx, companyID, articleID)
	if err != nil {
		o.log.Error().Err(err).Str("company_id", companyID).Str("article_id", articleID).Msg("evaluación de alertas en línea falló")
		return
	}
	if len(res.Created) > 0 || len(res.Updated) > 0 {
		o.log.Info().
			Str("company_id", companyID).
			Str("article_id", articleID).
			Int("created", len(res.Created)).
			Int("updated", len(res.Updated)).
			Msg("alertas de stock evaluadas")
	}
}
