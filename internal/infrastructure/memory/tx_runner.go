package memory

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// TxRunner implementa inventory.TxRunner sobre el Store.
type TxRunner struct {
	store *Store
}

var _ inventory.TxRunner = (*TxRunner)(nil)

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repositorios atados a una copia del libro; si fn devuelve error
// la copia se descarta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.StockLotRepository,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.store.runTx(ctx, func(st *state) error {
		return fn(
			&StockLotRepo{store: r.store, tx: st},
			&StockRepo{store: r.store, tx: st},
			&StockMovementRepo{store: r.store, tx: st},
		)
	})
}
