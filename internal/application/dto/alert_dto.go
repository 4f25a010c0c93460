package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertResponse representación de una alerta de stock.
type AlertResponse struct {
	ID             string           `json:"id"`
	StockID        string           `json:"stock_id,omitempty"`
	LotID          string           `json:"lot_id,omitempty"`
	Type           string           `json:"type"`
	Priority       string           `json:"priority"`
	Status         string           `json:"status"`
	Quantity       *int64           `json:"quantity,omitempty"`
	Threshold      *int64           `json:"threshold,omitempty"`
	ExpirationDate *Date            `json:"expiration_date,omitempty"`
	Temperature    *decimal.Decimal `json:"temperature,omitempty"`
	Message        string           `json:"message"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	ResolvedAt     *time.Time       `json:"resolved_at,omitempty"`
}

// EvaluateAlertsResponse alertas creadas y actualizadas en una evaluación.
type EvaluateAlertsResponse struct {
	Created []AlertResponse `json:"created"`
	Updated []AlertResponse `json:"updated"`
}

// RecordSignalRequest señal externa de cadena de frío o temperatura.
type RecordSignalRequest struct {
	Type        string           `json:"type" validate:"required,oneof=COLD_CHAIN_BREACH TEMPERATURE"`
	ArticleID   string           `json:"article_id,omitempty" validate:"omitempty,max=64"`
	LotID       string           `json:"lot_id,omitempty" validate:"omitempty,max=64"`
	Temperature *decimal.Decimal `json:"temperature,omitempty"`
	Message     string           `json:"message,omitempty" validate:"max=500"`
}

// RecordSignalResponse alerta creada o refrescada por una señal.
type RecordSignalResponse struct {
	Alert   AlertResponse `json:"alert"`
	Created bool          `json:"created"`
}

// AlertListResponse listado paginado de alertas.
type AlertListResponse struct {
	Items []AlertResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
