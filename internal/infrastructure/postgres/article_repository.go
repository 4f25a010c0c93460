package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo lectura del catálogo de artículos con su categoría.
type ArticleRepo struct {
	q Querier
}

// NewArticleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewArticleRepository(q Querier) *ArticleRepo {
	return &ArticleRepo{q: q}
}

const articleSelect = `
	SELECT a.id, a.company_id, a.name, a.unit_measure, a.unit_price, a.category_id, a.created_at, a.updated_at,
	       c.id, c.company_id, c.name, c.storage_temp_min, c.storage_temp_max,
	       c.light_sensitive, c.cold_chain_critical, c.expiration_alert_days
	FROM articles a
	LEFT JOIN article_categories c ON c.id = a.category_id`

func scanArticle(row pgx.Row) (*entity.Article, error) {
	var a entity.Article
	var categoryID, catID, catCompany, catName *string
	var lightSensitive, coldChain *bool
	var alertDays *int
	cat := entity.Category{}
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.Name, &a.UnitMeasure, &a.UnitPrice, &categoryID, &a.CreatedAt, &a.UpdatedAt,
		&catID, &catCompany, &catName, &cat.StorageTempMin, &cat.StorageTempMax,
		&lightSensitive, &coldChain, &alertDays,
	)
	if err != nil {
		return nil, err
	}
	a.CategoryID = deref(categoryID)
	if catID != nil {
		cat.ID = *catID
		cat.CompanyID = deref(catCompany)
		cat.Name = deref(catName)
		cat.LightSensitive = lightSensitive != nil && *lightSensitive
		cat.ColdChainCritical = coldChain != nil && *coldChain
		if alertDays != nil {
			cat.ExpirationAlertDays = *alertDays
		}
		a.Category = &cat
	}
	return &a, nil
}

// GetByID obtiene un artículo por ID, o nil si no existe.
func (r *ArticleRepo) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	a, err := scanArticle(r.q.QueryRow(ctx, articleSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

// ListByIDs obtiene los artículos de la empresa con los IDs dados.
func (r *ArticleRepo) ListByIDs(ctx context.Context, companyID string, ids []string) ([]*entity.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, articleSelect+` WHERE a.company_id = $1 AND a.id = ANY($2::uuid[])`, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	var out []*entity.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
