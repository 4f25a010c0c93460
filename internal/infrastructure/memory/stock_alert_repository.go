package memory

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// StockAlertRepo alertas en memoria.
type StockAlertRepo struct {
	store *Store
}

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// NewStockAlertRepository construye el repositorio.
func NewStockAlertRepository(store *Store) *StockAlertRepo {
	return &StockAlertRepo{store: store}
}

func (r *StockAlertRepo) Create(ctx context.Context, alert *entity.StockAlert) error {
	return r.store.writeAlerts(func(st *state) error {
		if _, ok := st.alerts[alert.ID]; ok {
			return domain.ErrDuplicate
		}
		st.alerts[alert.ID] = alert.Clone()
		st.alertSeq = append(st.alertSeq, alert.ID)
		return nil
	})
}

func (r *StockAlertRepo) Update(ctx context.Context, alert *entity.StockAlert) error {
	return r.store.writeAlerts(func(st *state) error {
		stored, ok := st.alerts[alert.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if !stored.IsOpen() {
			return domain.ErrInvalidTransition
		}
		st.alerts[alert.ID] = alert.Clone()
		return nil
	})
}

func (r *StockAlertRepo) RefreshSnapshot(ctx context.Context, alert *entity.StockAlert) (bool, error) {
	refreshed := false
	err := r.store.writeAlerts(func(st *state) error {
		stored, ok := st.alerts[alert.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if !stored.IsOpen() {
			return nil
		}
		c := stored.Clone()
		c.Priority = alert.Priority
		c.Snapshot = alert.Snapshot
		c.Message = alert.Message
		c.UpdatedAt = alert.UpdatedAt
		st.alerts[alert.ID] = c
		refreshed = true
		return nil
	})
	return refreshed, err
}

func (r *StockAlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	var out *entity.StockAlert
	err := r.store.read(nil, func(st *state) error {
		if a, ok := st.alerts[id]; ok {
			out = a.Clone()
		}
		return nil
	})
	return out, err
}

func (r *StockAlertRepo) ListOpen(ctx context.Context, companyID string) ([]*entity.StockAlert, error) {
	var out []*entity.StockAlert
	err := r.store.read(nil, func(st *state) error {
		for _, id := range st.alertSeq {
			a := st.alerts[id]
			if a.CompanyID == companyID && a.IsOpen() {
				out = append(out, a.Clone())
			}
		}
		return nil
	})
	return out, err
}

func (r *StockAlertRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.StockAlert, error) {
	var out []*entity.StockAlert
	err := r.store.read(nil, func(st *state) error {
		skipped := 0
		for i := len(st.alertSeq) - 1; i >= 0; i-- {
			a := st.alerts[st.alertSeq[i]]
			if a.CompanyID != companyID || (status != "" && a.Status != status) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, a.Clone())
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}
