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

var _ repository.StockLotRepository = (*StockLotRepo)(nil)

// StockLotRepo libro de lotes sobre PostgreSQL (usable con pool o tx).
type StockLotRepo struct {
	q Querier
}

// NewStockLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLotRepository(q Querier) *StockLotRepo {
	return &StockLotRepo{q: q}
}

const lotColumns = `id, company_id, article_id, quantity_initial, quantity_remaining, entry_date, expiration_date,
	unit_cost, supplier, lot_number, comment, deleted, deleted_at, delete_reason, created_at`

func scanLot(row pgx.Row) (*entity.StockLot, error) {
	var l entity.StockLot
	err := row.Scan(&l.ID, &l.CompanyID, &l.ArticleID, &l.QuantityInitial, &l.QuantityRemaining,
		&l.EntryDate, &l.ExpirationDate, &l.UnitCost, &l.Supplier, &l.LotNumber, &l.Comment,
		&l.Deleted, &l.DeletedAt, &l.DeleteReason, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste un lote nuevo.
func (r *StockLotRepo) Create(ctx context.Context, lot *entity.StockLot) error {
	query := `
		INSERT INTO stock_lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.CompanyID, lot.ArticleID, lot.QuantityInitial, lot.QuantityRemaining,
		lot.EntryDate, lot.ExpirationDate, lot.UnitCost, lot.Supplier, lot.LotNumber, lot.Comment,
		lot.Deleted, lot.DeletedAt, lot.DeleteReason, lot.CreatedAt,
	)
	if err != nil {
		return mapError("insert stock lot", err)
	}
	return nil
}

// GetByID obtiene un lote (incluidos los borrados), o nil si no existe.
func (r *StockLotRepo) GetByID(ctx context.Context, id string) (*entity.StockLot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, `SELECT `+lotColumns+` FROM stock_lots WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get stock lot", err)
	}
	return l, nil
}

// ListByArticle lotes del artículo ordenados por entrada.
func (r *StockLotRepo) ListByArticle(ctx context.Context, companyID, articleID string, includeDeleted bool) ([]*entity.StockLot, error) {
	query := `SELECT ` + lotColumns + ` FROM stock_lots WHERE company_id = $1 AND article_id = $2`
	if !includeDeleted {
		query += ` AND NOT deleted`
	}
	query += ` ORDER BY entry_date, id`
	return r.list(ctx, query, companyID, articleID)
}

// ListLiveByCompany lotes vivos con saldo de toda la empresa.
func (r *StockLotRepo) ListLiveByCompany(ctx context.Context, companyID string) ([]*entity.StockLot, error) {
	return r.list(ctx, `
		SELECT `+lotColumns+` FROM stock_lots
		WHERE company_id = $1 AND NOT deleted AND quantity_remaining > 0
		ORDER BY article_id, entry_date, id`, companyID)
}

func (r *StockLotRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockLot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list stock lots", err)
	}
	defer rows.Close()
	var out []*entity.StockLot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock lot: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateRemaining fija el saldo; el CHECK de la tabla impide salir de [0, inicial].
func (r *StockLotRepo) UpdateRemaining(ctx context.Context, id string, remaining int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE stock_lots SET quantity_remaining = $2 WHERE id = $1`, id, remaining)
	if err != nil {
		return mapError("update stock lot remaining", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca el lote como borrado con fecha y motivo.
func (r *StockLotRepo) SoftDelete(ctx context.Context, lot *entity.StockLot) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_lots SET deleted = true, deleted_at = $2, delete_reason = $3
		WHERE id = $1 AND NOT deleted`, lot.ID, lot.DeletedAt, lot.DeleteReason)
	if err != nil {
		return mapError("soft delete stock lot", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}
