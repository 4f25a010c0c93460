package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// StockLotRepo libro de lotes en memoria.
type StockLotRepo struct {
	store *Store
	tx    *state
}

var _ repository.StockLotRepository = (*StockLotRepo)(nil)

// NewStockLotRepository construye el repositorio fuera de transacción.
func NewStockLotRepository(store *Store) *StockLotRepo {
	return &StockLotRepo{store: store}
}

func (r *StockLotRepo) Create(ctx context.Context, lot *entity.StockLot) error {
	if lot.QuantityRemaining < 0 || lot.QuantityRemaining > lot.QuantityInitial {
		return domain.ErrConflict
	}
	return r.store.writeLedger(ctx, r.tx, func(st *state) error {
		if _, ok := st.lots[lot.ID]; ok {
			return domain.ErrDuplicate
		}
		st.lots[lot.ID] = lot.Clone()
		return nil
	})
}

func (r *StockLotRepo) GetByID(ctx context.Context, id string) (*entity.StockLot, error) {
	var out *entity.StockLot
	err := r.store.read(r.tx, func(st *state) error {
		if l, ok := st.lots[id]; ok {
			out = l.Clone()
		}
		return nil
	})
	return out, err
}

func (r *StockLotRepo) ListByArticle(ctx context.Context, companyID, articleID string, includeDeleted bool) ([]*entity.StockLot, error) {
	return r.list(func(l *entity.StockLot) bool {
		return l.CompanyID == companyID && l.ArticleID == articleID && (includeDeleted || !l.Deleted)
	})
}

func (r *StockLotRepo) ListLiveByCompany(ctx context.Context, companyID string) ([]*entity.StockLot, error) {
	return r.list(func(l *entity.StockLot) bool {
		return l.CompanyID == companyID && !l.Deleted && l.QuantityRemaining > 0
	})
}

func (r *StockLotRepo) list(match func(l *entity.StockLot) bool) ([]*entity.StockLot, error) {
	var out []*entity.StockLot
	err := r.store.read(r.tx, func(st *state) error {
		for _, l := range st.lots {
			if match(l) {
				out = append(out, l.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.Before(out[j].EntryDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// UpdateRemaining exige 0 <= remaining <= cantidad inicial.
func (r *StockLotRepo) UpdateRemaining(ctx context.Context, id string, remaining int64) error {
	return r.store.writeLedger(ctx, r.tx, func(st *state) error {
		l, ok := st.lots[id]
		if !ok {
			return domain.ErrNotFound
		}
		if remaining < 0 || remaining > l.QuantityInitial {
			return domain.ErrConflict
		}
		l.QuantityRemaining = remaining
		return nil
	})
}

func (r *StockLotRepo) SoftDelete(ctx context.Context, lot *entity.StockLot) error {
	return r.store.writeLedger(ctx, r.tx, func(st *state) error {
		l, ok := st.lots[lot.ID]
		if !ok {
			return domain.ErrNotFound
		}
		c := lot.Clone()
		l.Deleted = true
		l.DeletedAt = c.DeletedAt
		l.DeleteReason = c.DeleteReason
		return nil
	})
}
