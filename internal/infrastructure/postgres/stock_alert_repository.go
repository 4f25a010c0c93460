package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// StockAlertRepo alertas de stock sobre PostgreSQL.
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

const alertColumns = `id, company_id, stock_id, lot_id, type, priority, status,
	snapshot_quantity, snapshot_threshold, snapshot_expiration, snapshot_temperature,
	message, created_at, updated_at, resolved_at`

func scanAlert(row pgx.Row) (*entity.StockAlert, error) {
	var a entity.StockAlert
	var stockID, lotID *string
	err := row.Scan(&a.ID, &a.CompanyID, &stockID, &lotID, &a.Type, &a.Priority, &a.Status,
		&a.Snapshot.Quantity, &a.Snapshot.Threshold, &a.Snapshot.ExpirationDate, &a.Snapshot.Temperature,
		&a.Message, &a.CreatedAt, &a.UpdatedAt, &a.ResolvedAt)
	if err != nil {
		return nil, err
	}
	a.StockID = deref(stockID)
	a.LotID = deref(lotID)
	return &a, nil
}

// Create persiste una alerta. El índice único parcial sobre alertas abiertas devuelve ErrDuplicate
// si ya existe una abierta con la misma clave.
func (r *StockAlertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	query := `
		INSERT INTO stock_alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CompanyID, nullable(a.StockID), nullable(a.LotID), a.Type, a.Priority, a.Status,
		a.Snapshot.Quantity, a.Snapshot.Threshold, a.Snapshot.ExpirationDate, a.Snapshot.Temperature,
		a.Message, a.CreatedAt, a.UpdatedAt, a.ResolvedAt,
	)
	if err != nil {
		return mapError("insert stock alert", err)
	}
	return nil
}

// Update guarda prioridad, estado, snapshot y mensaje.
func (r *StockAlertRepo) Update(ctx context.Context, a *entity.StockAlert) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_alerts SET priority = $2, status = $3,
			snapshot_quantity = $4, snapshot_threshold = $5, snapshot_expiration = $6, snapshot_temperature = $7,
			message = $8, updated_at = $9, resolved_at = $10
		WHERE id = $1 AND status IN ('NEW', 'IN_PROGRESS')`,
		a.ID, a.Priority, a.Status,
		a.Snapshot.Quantity, a.Snapshot.Threshold, a.Snapshot.ExpirationDate, a.Snapshot.Temperature,
		a.Message, a.UpdatedAt, a.ResolvedAt)
	if err != nil {
		return mapError("update stock alert", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// RefreshSnapshot actualiza los datos derivados de una alerta abierta; no toca el estado.
func (r *StockAlertRepo) RefreshSnapshot(ctx context.Context, a *entity.StockAlert) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_alerts SET priority = $2,
			snapshot_quantity = $3, snapshot_threshold = $4, snapshot_expiration = $5, snapshot_temperature = $6,
			message = $7, updated_at = $8
		WHERE id = $1 AND status IN ('NEW', 'IN_PROGRESS')`,
		a.ID, a.Priority,
		a.Snapshot.Quantity, a.Snapshot.Threshold, a.Snapshot.ExpirationDate, a.Snapshot.Temperature,
		a.Message, a.UpdatedAt)
	if err != nil {
		return false, mapError("refresh stock alert", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID obtiene una alerta, o nil si no existe.
func (r *StockAlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx, `SELECT `+alertColumns+` FROM stock_alerts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get stock alert", err)
	}
	return a, nil
}

// ListOpen alertas NEW o IN_PROGRESS, más antiguas primero.
func (r *StockAlertRepo) ListOpen(ctx context.Context, companyID string) ([]*entity.StockAlert, error) {
	return r.list(ctx, `
		SELECT `+alertColumns+` FROM stock_alerts
		WHERE company_id = $1 AND status IN ('NEW', 'IN_PROGRESS')
		ORDER BY created_at, id`, companyID)
}

// List alertas de la empresa, más recientes primero; status vacío = todas.
func (r *StockAlertRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.StockAlert, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.list(ctx, `
		SELECT `+alertColumns+` FROM stock_alerts
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`, companyID, status, limit, offset)
}

func (r *StockAlertRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockAlert, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list stock alerts", err)
	}
	defer rows.Close()
	var out []*entity.StockAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
