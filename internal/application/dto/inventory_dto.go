package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsumeRequest body para POST /api/inventory/articles/:articleID/consume.
// Quantity <= 0 se rechaza como INVALID_QUANTITY en el caso de uso.
type ConsumeRequest struct {
	Quantity int64  `json:"quantity"`
	Policy   string `json:"policy,omitempty" validate:"omitempty,oneof=FIFO FEFO"` // vacío = política del artículo
	EventRef string `json:"event_ref,omitempty" validate:"max=120"`                 // p. ej. id de la solicitud de examen
	Reason   string `json:"reason,omitempty" validate:"max=255"`
}

// ConsumeResponse resultado de una salida repartida entre lotes.
type ConsumeResponse struct {
	ArticleID       string             `json:"article_id"`
	Policy          string             `json:"policy"`
	Movements       []MovementResponse `json:"movements"`
	RemainingAfter  int64              `json:"remaining_after"`
	TotalCost       decimal.Decimal    `json:"total_cost"`
	AverageUnitCost decimal.Decimal    `json:"average_unit_cost"`
}

// ReplenishRequest body para POST /api/inventory/articles/:articleID/lots.
type ReplenishRequest struct {
	Quantity       int64            `json:"quantity"`
	EntryDate      *Date            `json:"entry_date,omitempty"` // vacío = ahora
	ExpirationDate *Date            `json:"expiration_date,omitempty"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	Supplier       string           `json:"supplier,omitempty" validate:"max=255"`
	LotNumber      string           `json:"lot_number,omitempty" validate:"max=100"`
	Comment        string           `json:"comment,omitempty" validate:"max=500"`
}

// ReplenishResponse lote creado por una reposición.
type ReplenishResponse struct {
	LotID          string           `json:"lot_id"`
	Movement       MovementResponse `json:"movement"`
	AvailableAfter int64            `json:"available_after"`
}

// ReverseRequest body para POST /api/inventory/articles/:articleID/reversals.
type ReverseRequest struct {
	EventRef string `json:"event_ref" validate:"required,max=120"`
	Reason   string `json:"reason,omitempty" validate:"max=255"`
}

// ReverseResponse compensaciones registradas al anular un evento de consumo.
type ReverseResponse struct {
	ArticleID      string             `json:"article_id"`
	EventRef       string             `json:"event_ref"`
	Movements      []MovementResponse `json:"movements"`
	AvailableAfter int64              `json:"available_after"`
}

// ConfigureStockRequest body para PUT /api/inventory/articles/:articleID/stock.
type ConfigureStockRequest struct {
	CriticalThreshold *int64 `json:"critical_threshold,omitempty" validate:"omitempty,gte=0"`
	DefaultPolicy     string `json:"default_policy,omitempty" validate:"omitempty,oneof=FIFO FEFO"`
}

// SoftDeleteLotRequest body para DELETE /api/inventory/lots/:lotID.
type SoftDeleteLotRequest struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

// StockResponse resumen del agregado por artículo.
type StockResponse struct {
	ID                string          `json:"id"`
	ArticleID         string          `json:"article_id"`
	CriticalThreshold int64           `json:"critical_threshold"`
	DefaultPolicy     string          `json:"default_policy"`
	Quantity          int64           `json:"quantity"`
	Value             decimal.Decimal `json:"value"`
	ExpirationHint    *Date           `json:"expiration_hint,omitempty"`
	HasExpiredLots    bool            `json:"has_expired_lots"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AvailableResponse respuesta de QueryAvailable.
type AvailableResponse struct {
	ArticleID string `json:"article_id"`
	Available int64  `json:"available"`
}

// LotResponse representación de un lote.
type LotResponse struct {
	ID                string           `json:"id"`
	ArticleID         string           `json:"article_id"`
	QuantityInitial   int64            `json:"quantity_initial"`
	QuantityRemaining int64            `json:"quantity_remaining"`
	EntryDate         time.Time        `json:"entry_date"`
	ExpirationDate    *Date            `json:"expiration_date,omitempty"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	Supplier          string           `json:"supplier,omitempty"`
	LotNumber         string           `json:"lot_number,omitempty"`
	Comment           string           `json:"comment,omitempty"`
	Deleted           bool             `json:"deleted"`
	DeleteReason      string           `json:"delete_reason,omitempty"`
}

// NearExpirationResponse respuesta de QueryNearExpiration.
type NearExpirationResponse struct {
	ArticleID   string        `json:"article_id"`
	HorizonDays int           `json:"horizon_days"`
	Lots        []LotResponse `json:"lots"`
}

// MovementResponse asiento del libro de movimientos.
type MovementResponse struct {
	ID         string          `json:"id"`
	LotID      string          `json:"lot_id"`
	Direction  string          `json:"direction"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	EventRef   string          `json:"event_ref,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	ReversalOf string          `json:"reversal_of,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// MovementListResponse listado paginado de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ConsistencyIssue agregado cuya vista materializada no coincide con sus lotes.
type ConsistencyIssue struct {
	StockID        string          `json:"stock_id"`
	ArticleID      string          `json:"article_id"`
	CachedQuantity int64           `json:"cached_quantity"`
	LedgerQuantity int64           `json:"ledger_quantity"`
	CachedValue    decimal.Decimal `json:"cached_value"`
	LedgerValue    decimal.Decimal `json:"ledger_value"`
}

// ReconcileReport resultado de la migración de stock sin lotes.
type ReconcileReport struct {
	CompanyID     string   `json:"company_id"`
	SyntheticLots []string `json:"synthetic_lots"`
	Refreshed     []string `json:"refreshed"` // agregados cuya caché se recalculó
}
