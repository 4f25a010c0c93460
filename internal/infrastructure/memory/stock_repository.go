package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// StockRepo agregados por (empresa, artículo) en memoria.
type StockRepo struct {
	store *Store
	tx    *state
}

var _ repository.StockRepository = (*StockRepo)(nil)

// NewStockRepository construye el repositorio fuera de transacción.
func NewStockRepository(store *Store) *StockRepo {
	return &StockRepo{store: store}
}

func (r *StockRepo) Get(ctx context.Context, companyID, articleID string) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.store.read(r.tx, func(st *state) error {
		if s, ok := st.stocks[stockKey(companyID, articleID)]; ok {
			out = s.Clone()
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a Get: las transacciones en memoria ya son serializadas.
func (r *StockRepo) GetForUpdate(ctx context.Context, companyID, articleID string) (*entity.Stock, error) {
	return r.Get(ctx, companyID, articleID)
}

func (r *StockRepo) Ensure(ctx context.Context, stock *entity.Stock) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.store.writeLedger(ctx, r.tx, func(st *state) error {
		key := stockKey(stock.CompanyID, stock.ArticleID)
		if s, ok := st.stocks[key]; ok {
			out = s.Clone()
			return nil
		}
		st.stocks[key] = stock.Clone()
		out = stock
		return nil
	})
	return out, err
}

func (r *StockRepo) UpdateSettings(ctx context.Context, stock *entity.Stock) error {
	return r.store.writeLedger(ctx, r.tx, func(st *state) error {
		s, ok := st.stocks[stockKey(stock.CompanyID, stock.ArticleID)]
		if !ok {
			return domain.ErrNotFound
		}
		s.CriticalThreshold = stock.CriticalThreshold
		s.DefaultPolicy = stock.DefaultPolicy
		s.UpdatedAt = stock.UpdatedAt
		return nil
	})
}

func (r *StockRepo) UpdateDerived(ctx context.Context, stock *entity.Stock) error {
	return r.store.writeLedger(ctx, r.tx, func(st *state) error {
		s, ok := st.stocks[stockKey(stock.CompanyID, stock.ArticleID)]
		if !ok {
			return domain.ErrNotFound
		}
		c := stock.Clone()
		s.Quantity = c.Quantity
		s.Value = c.Value
		s.ExpirationHint = c.ExpirationHint
		s.UpdatedAt = c.UpdatedAt
		return nil
	})
}

func (r *StockRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	err := r.store.read(r.tx, func(st *state) error {
		for _, s := range st.stocks {
			if s.CompanyID == companyID {
				out = append(out, s.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ArticleID < out[j].ArticleID })
	return out, err
}

func (r *StockRepo) ListCompanyIDs(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	err := r.store.read(r.tx, func(st *state) error {
		for _, s := range st.stocks {
			if !seen[s.CompanyID] {
				seen[s.CompanyID] = true
				out = append(out, s.CompanyID)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}
