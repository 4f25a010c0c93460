package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos (solo inserción) sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento. Un índice único sobre reversal_of impide compensar dos veces la misma salida.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, company_id, stock_id, article_id, lot_id, direction, quantity, unit_price, event_ref, reason, reversal_of, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.StockID, m.ArticleID, m.LotID, m.Direction, m.Quantity,
		m.UnitPrice, m.EventRef, m.Reason, nullable(m.ReversalOf), m.CreatedAt,
	)
	if err != nil {
		return mapError("insert stock movement", err)
	}
	return nil
}

// List movimientos de la empresa en orden de registro.
func (r *StockMovementRepo) List(ctx context.Context, companyID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, company_id, stock_id, article_id, lot_id, direction, quantity, unit_price, event_ref, reason, reversal_of, created_at
		FROM stock_movements WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if f.ArticleID != "" {
		query += ` AND article_id = $` + strconv.Itoa(pos)
		args = append(args, f.ArticleID)
		pos++
	}
	if f.LotID != "" {
		query += ` AND lot_id = $` + strconv.Itoa(pos)
		args = append(args, f.LotID)
		pos++
	}
	if f.EventRef != "" {
		query += ` AND event_ref = $` + strconv.Itoa(pos)
		args = append(args, f.EventRef)
		pos++
	}
	query += ` ORDER BY seq`
	if f.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(pos)
		args = append(args, f.Limit)
		pos++
	}
	if f.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(pos)
		args = append(args, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list stock movements", err)
	}
	defer rows.Close()
	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var reversalOf *string
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.StockID, &m.ArticleID, &m.LotID, &m.Direction, &m.Quantity,
			&m.UnitPrice, &m.EventRef, &m.Reason, &reversalOf, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.ReversalOf = deref(reversalOf)
		out = append(out, &m)
	}
	return out, rows.Err()
}
