package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// allowedTransitions estados destino válidos por estado actual.
var allowedTransitions = map[string][]string{
	entity.AlertStatusNew:        {entity.AlertStatusInProgress, entity.AlertStatusResolved, entity.AlertStatusIgnored},
	entity.AlertStatusInProgress: {entity.AlertStatusResolved, entity.AlertStatusIgnored},
}

// AlertUseCase señales externas, ciclo de vida y consulta de alertas.
type AlertUseCase struct {
	alertRepo   repository.StockAlertRepository
	stockRepo   repository.StockRepository
	lotRepo     repository.StockLotRepository
	articleRepo repository.ArticleRepository
	now         func() time.Time
}

// NewAlertUseCase construye el caso de uso.
func NewAlertUseCase(
	alertRepo repository.StockAlertRepository,
	stockRepo repository.StockRepository,
	lotRepo repository.StockLotRepository,
	articleRepo repository.ArticleRepository,
) *AlertUseCase {
	return &AlertUseCase{
		alertRepo:   alertRepo,
		stockRepo:   stockRepo,
		lotRepo:     lotRepo,
		articleRepo: articleRepo,
		now:         time.Now,
	}
}

// RecordSignal registra una señal de cadena de frío o temperatura. Si ya hay una alerta
// abierta del mismo tipo sobre el mismo agregado/lote, se refresca en lugar de duplicarla.
func (uc *AlertUseCase) RecordSignal(ctx context.Context, companyID string, in dto.RecordSignalRequest) (*dto.RecordSignalResponse, error) {
	if !entity.IsSignalAlertType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	if in.Type == entity.AlertTemperature && in.Temperature == nil {
		return nil, domain.ErrInvalidInput
	}

	articleID := in.ArticleID
	var lot *entity.StockLot
	if in.LotID != "" {
		l, err := uc.lotRepo.GetByID(ctx, in.LotID)
		if err != nil {
			return nil, err
		}
		if l == nil {
			return nil, domain.ErrNotFound
		}
		if l.CompanyID != companyID {
			return nil, domain.ErrTenantMismatch
		}
		if articleID != "" && articleID != l.ArticleID {
			return nil, domain.ErrInvalidInput
		}
		lot = l
		articleID = l.ArticleID
	}

	var article *entity.Article
	stockID := ""
	if articleID != "" {
		a, err := uc.articleRepo.GetByID(ctx, articleID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, domain.ErrArticleNotFound
		}
		if a.CompanyID != companyID {
			return nil, domain.ErrTenantMismatch
		}
		article = a
		stock, err := uc.stockRepo.Get(ctx, companyID, articleID)
		if err != nil {
			return nil, err
		}
		if stock == nil {
			return nil, fmt.Errorf("el artículo %s no tiene stock registrado: %w", articleID, domain.ErrNotFound)
		}
		stockID = stock.ID
	}

	lotID := ""
	if lot != nil {
		lotID = lot.ID
	}
	priority := signalPriority(in, article)
	snap := entity.AlertSnapshot{Temperature: in.Temperature}
	if lot != nil {
		snap.ExpirationDate = lot.ExpirationDate
	}
	msg := in.Message
	if msg == "" {
		msg = signalMessage(in, article, lot)
	}
	now := uc.now()

	open, err := uc.alertRepo.ListOpen(ctx, companyID)
	if err != nil {
		return nil, err
	}
	key := inventory.AlertKey(in.Type, stockID, lotID)
	for _, a := range open {
		if inventory.AlertKey(a.Type, a.StockID, a.LotID) != key {
			continue
		}
		if !a.Refresh(priority, snap, msg, now) {
			return &dto.RecordSignalResponse{Alert: toAlertResponse(a), Created: false}, nil
		}
		ok, err := uc.alertRepo.RefreshSnapshot(ctx, a)
		if err != nil {
			return nil, err
		}
		if ok {
			return &dto.RecordSignalResponse{Alert: toAlertResponse(a), Created: false}, nil
		}
		// Cerrada entretanto: la señal abre una alerta nueva.
		break
	}

	a := &entity.StockAlert{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		StockID:   stockID,
		LotID:     lotID,
		Type:      in.Type,
		Priority:  priority,
		Status:    entity.AlertStatusNew,
		Snapshot:  snap,
		Message:   msg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.alertRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return &dto.RecordSignalResponse{Alert: toAlertResponse(a), Created: true}, nil
}

// signalPriority: ruptura de cadena de frío siempre alta; temperatura alta si el artículo
// es crítico de cadena de frío o la lectura sale de la banda de su categoría.
func signalPriority(in dto.RecordSignalRequest, article *entity.Article) string {
	if in.Type == entity.AlertColdChainBreach || article.IsColdChainCritical() {
		return entity.PriorityHigh
	}
	if in.Temperature != nil && article != nil && article.Category != nil {
		c := article.Category
		if (c.StorageTempMin != nil && in.Temperature.LessThan(*c.StorageTempMin)) ||
			(c.StorageTempMax != nil && in.Temperature.GreaterThan(*c.StorageTempMax)) {
			return entity.PriorityHigh
		}
	}
	return entity.PriorityMedium
}

func signalMessage(in dto.RecordSignalRequest, article *entity.Article, lot *entity.StockLot) string {
	subject := "almacenamiento"
	if article != nil {
		subject = article.Name
	}
	if lot != nil && lot.LotNumber != "" {
		subject += " (lote " + lot.LotNumber + ")"
	}
	if in.Type == entity.AlertColdChainBreach {
		return "Ruptura de cadena de frío: " + subject
	}
	return fmt.Sprintf("Temperatura fuera de rango en %s: %s", subject, in.Temperature.String())
}

// Start marca la alerta como en curso.
func (uc *AlertUseCase) Start(ctx context.Context, companyID, alertID string) (*dto.AlertResponse, error) {
	return uc.transition(ctx, companyID, alertID, entity.AlertStatusInProgress)
}

// Resolve cierra la alerta como resuelta.
func (uc *AlertUseCase) Resolve(ctx context.Context, companyID, alertID string) (*dto.AlertResponse, error) {
	return uc.transition(ctx, companyID, alertID, entity.AlertStatusResolved)
}

// Ignore cierra la alerta sin acción.
func (uc *AlertUseCase) Ignore(ctx context.Context, companyID, alertID string) (*dto.AlertResponse, error) {
	return uc.transition(ctx, companyID, alertID, entity.AlertStatusIgnored)
}

func (uc *AlertUseCase) transition(ctx context.Context, companyID, alertID, target string) (*dto.AlertResponse, error) {
	a, err := uc.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	if a.CompanyID != companyID {
		return nil, domain.ErrTenantMismatch
	}
	if !canTransition(a.Status, target) {
		return nil, domain.ErrInvalidTransition
	}
	now := uc.now()
	a.Status = target
	a.UpdatedAt = now
	if !a.IsOpen() {
		a.ResolvedAt = &now
	}
	if err := uc.alertRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	res := toAlertResponse(a)
	return &res, nil
}

func canTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// List alertas de la empresa, más recientes primero; status vacío = todas.
func (uc *AlertUseCase) List(ctx context.Context, companyID, status string, page dto.PageRequest) (*dto.AlertListResponse, error) {
	switch status {
	case "", entity.AlertStatusNew, entity.AlertStatusInProgress, entity.AlertStatusResolved, entity.AlertStatusIgnored:
	default:
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	alerts, err := uc.alertRepo.List(ctx, companyID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.AlertListResponse{
		Items: toAlertResponses(alerts),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
