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

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `id, company_id, article_id, critical_threshold, default_policy, expiration_hint, quantity, value, created_at, updated_at`

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(&s.ID, &s.CompanyID, &s.ArticleID, &s.CriticalThreshold, &s.DefaultPolicy,
		&s.ExpirationHint, &s.Quantity, &s.Value, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene el agregado de un artículo, o nil si no existe.
func (r *StockRepo) Get(ctx context.Context, companyID, articleID string) (*entity.Stock, error) {
	return r.get(ctx, `SELECT `+stockColumns+` FROM stocks WHERE company_id = $1 AND article_id = $2`, companyID, articleID)
}

// GetForUpdate obtiene el agregado y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, companyID, articleID string) (*entity.Stock, error) {
	return r.get(ctx, `SELECT `+stockColumns+` FROM stocks WHERE company_id = $1 AND article_id = $2 FOR UPDATE`, companyID, articleID)
}

func (r *StockRepo) get(ctx context.Context, query, companyID, articleID string) (*entity.Stock, error) {
	s, err := scanStock(r.q.QueryRow(ctx, query, companyID, articleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get stock", err)
	}
	return s, nil
}

// Ensure inserta el agregado si no existe y lo devuelve bloqueado.
func (r *StockRepo) Ensure(ctx context.Context, stock *entity.Stock) (*entity.Stock, error) {
	query := `
		INSERT INTO stocks (id, company_id, article_id, critical_threshold, default_policy, quantity, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7)
		ON CONFLICT (company_id, article_id) DO NOTHING`
	_, err := r.q.Exec(ctx, query, stock.ID, stock.CompanyID, stock.ArticleID,
		stock.CriticalThreshold, stock.DefaultPolicy, stock.CreatedAt, stock.UpdatedAt)
	if err != nil {
		return nil, mapError("ensure stock", err)
	}
	s, err := r.GetForUpdate(ctx, stock.CompanyID, stock.ArticleID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// UpdateSettings modifica umbral y política.
func (r *StockRepo) UpdateSettings(ctx context.Context, stock *entity.Stock) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stocks SET critical_threshold = $3, default_policy = $4, updated_at = $5
		WHERE company_id = $1 AND article_id = $2`,
		stock.CompanyID, stock.ArticleID, stock.CriticalThreshold, stock.DefaultPolicy, stock.UpdatedAt)
	if err != nil {
		return mapError("update stock settings", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateDerived guarda cantidad, valor y vencimiento próximo recalculados desde los lotes.
func (r *StockRepo) UpdateDerived(ctx context.Context, stock *entity.Stock) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stocks SET quantity = $3, value = $4, expiration_hint = $5, updated_at = $6
		WHERE company_id = $1 AND article_id = $2`,
		stock.CompanyID, stock.ArticleID, stock.Quantity, stock.Value, stock.ExpirationHint, stock.UpdatedAt)
	if err != nil {
		return mapError("update stock derived", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista los agregados de la empresa.
func (r *StockRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, `SELECT `+stockColumns+` FROM stocks WHERE company_id = $1 ORDER BY article_id`, companyID)
	if err != nil {
		return nil, mapError("list stocks", err)
	}
	defer rows.Close()
	var out []*entity.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListCompanyIDs empresas con al menos un agregado.
func (r *StockRepo) ListCompanyIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT company_id::text FROM stocks ORDER BY 1`)
	if err != nil {
		return nil, mapError("list companies", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
