package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// Condition condición de alerta detectada sobre el estado actual.
type Condition struct {
	Type     string
	Priority string
	StockID  string
	LotID    string
	Snapshot entity.AlertSnapshot
	Message  string
}

// Key identifica la condición para reconciliarla con alertas abiertas.
func (c Condition) Key() string {
	return AlertKey(c.Type, c.StockID, c.LotID)
}

// AlertKey clave de deduplicación: mismo tipo sobre el mismo agregado/lote.
func AlertKey(alertType, stockID, lotID string) string {
	return alertType + "|" + stockID + "|" + lotID
}

// EvaluateArticle aplica las reglas de stock crítico, vencimiento próximo y lote vencido
// para un artículo. article puede ser nil (se usan valores por defecto).
func EvaluateArticle(article *entity.Article, stock *entity.Stock, lots []*entity.StockLot, now time.Time, defaultLeadDays int) []Condition {
	var out []Condition
	name := stock.ArticleID
	if article != nil && article.Name != "" {
		name = article.Name
	}

	available := AvailableQuantity(lots)
	if available <= stock.CriticalThreshold {
		priority := entity.PriorityMedium
		msg := fmt.Sprintf("Stock crítico de %s: %d disponibles (umbral %d)", name, available, stock.CriticalThreshold)
		if available == 0 {
			priority = entity.PriorityHigh
			msg = fmt.Sprintf("Sin stock de %s (umbral %d)", name, stock.CriticalThreshold)
		}
		qty, threshold := available, stock.CriticalThreshold
		out = append(out, Condition{
			Type:     entity.AlertCriticalStock,
			Priority: priority,
			StockID:  stock.ID,
			Snapshot: entity.AlertSnapshot{Quantity: &qty, Threshold: &threshold},
			Message:  msg,
		})
	}

	lead := article.ExpirationLeadDays(defaultLeadDays)
	nearPriority := entity.PriorityMedium
	if article.IsColdChainCritical() {
		nearPriority = entity.PriorityHigh
	}
	today := entity.CalendarDay(now)
	for _, lot := range Candidates(lots, entity.PolicyFEFO) {
		if lot.ExpirationDate == nil {
			continue
		}
		qty := lot.QuantityRemaining
		exp := entity.CalendarDay(*lot.ExpirationDate)
		snap := entity.AlertSnapshot{Quantity: &qty, ExpirationDate: &exp}
		switch {
		case lot.IsExpired(now):
			out = append(out, Condition{
				Type:     entity.AlertLotExpired,
				Priority: entity.PriorityHigh,
				StockID:  stock.ID,
				LotID:    lot.ID,
				Snapshot: snap,
				Message:  fmt.Sprintf("Lote %s de %s vencido el %s con %d unidades", lotLabel(lot), name, exp.Format(time.DateOnly), qty),
			})
		case !exp.After(today.AddDate(0, 0, lead)):
			out = append(out, Condition{
				Type:     entity.AlertNearExpiration,
				Priority: nearPriority,
				StockID:  stock.ID,
				LotID:    lot.ID,
				Snapshot: snap,
				Message:  fmt.Sprintf("Lote %s de %s vence el %s (%d unidades)", lotLabel(lot), name, exp.Format(time.DateOnly), qty),
			})
		}
	}
	return out
}

func lotLabel(l *entity.StockLot) string {
	if l.LotNumber != "" {
		return l.LotNumber
	}
	return l.ID
}
