package memory

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// ArticleRepo catálogo de artículos en memoria.
type ArticleRepo struct {
	store *Store
}

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// NewArticleRepository construye el repositorio.
func NewArticleRepository(store *Store) *ArticleRepo {
	return &ArticleRepo{store: store}
}

func (r *ArticleRepo) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	var out *entity.Article
	err := r.store.read(nil, func(st *state) error {
		if a, ok := st.articles[id]; ok {
			out = cloneArticle(a)
		}
		return nil
	})
	return out, err
}

func (r *ArticleRepo) ListByIDs(ctx context.Context, companyID string, ids []string) ([]*entity.Article, error) {
	var out []*entity.Article
	err := r.store.read(nil, func(st *state) error {
		for _, id := range ids {
			if a, ok := st.articles[id]; ok && a.CompanyID == companyID {
				out = append(out, cloneArticle(a))
			}
		}
		return nil
	})
	return out, err
}
