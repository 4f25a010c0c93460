package alert

import (
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

func toAlertResponse(a *entity.StockAlert) dto.AlertResponse {
	return dto.AlertResponse{
		ID:             a.ID,
		StockID:        a.StockID,
		LotID:          a.LotID,
		Type:           a.Type,
		Priority:       a.Priority,
		Status:         a.Status,
		Quantity:       a.Snapshot.Quantity,
		Threshold:      a.Snapshot.Threshold,
		ExpirationDate: dto.DatePtr(a.Snapshot.ExpirationDate),
		Temperature:    a.Snapshot.Temperature,
		Message:        a.Message,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		ResolvedAt:     a.ResolvedAt,
	}
}

func toAlertResponses(as []*entity.StockAlert) []dto.AlertResponse {
	out := make([]dto.AlertResponse, 0, len(as))
	for _, a := range as {
		out = append(out, toAlertResponse(a))
	}
	return out
}
