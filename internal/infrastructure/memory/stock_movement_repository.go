package memory

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// StockMovementRepo libro de movimientos en memoria (solo inserción).
type StockMovementRepo struct {
	store *Store
	tx    *state
}

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// NewStockMovementRepository construye el repositorio fuera de transacción.
func NewStockMovementRepository(store *Store) *StockMovementRepo {
	return &StockMovementRepo{store: store}
}

func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	return r.store.writeLedger(ctx, r.tx, func(st *state) error {
		c := *movement
		st.movements = append(st.movements, &c)
		return nil
	})
}

func (r *StockMovementRepo) List(ctx context.Context, companyID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.store.read(r.tx, func(st *state) error {
		skipped := 0
		for _, m := range st.movements {
			if m.CompanyID != companyID ||
				(f.ArticleID != "" && m.ArticleID != f.ArticleID) ||
				(f.LotID != "" && m.LotID != f.LotID) ||
				(f.EventRef != "" && m.EventRef != f.EventRef) {
				continue
			}
			if skipped < f.Offset {
				skipped++
				continue
			}
			c := *m
			out = append(out, &c)
			if f.Limit > 0 && len(out) == f.Limit {
				break
			}
		}
		return nil
	})
	return out, err
}
