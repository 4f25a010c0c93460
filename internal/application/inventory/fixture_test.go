package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/internal/infrastructure/cache"
	"github.com/jhoicas/labstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/labstock-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ── helpers ──────────────────────────────────────────────────────────────────

const (
	companyID = "c-1"
	otherCo   = "c-2"
	articleID = "a-1"
	foreignID = "a-foreign"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) StockChanged(_ context.Context, companyID, articleID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, companyID+"/"+articleID)
}

type fixture struct {
	store     *memory.Store
	consume   *inventory.ConsumeUseCase
	replenish *inventory.ReplenishUseCase
	reverse   *inventory.ReverseUseCase
	stock     *inventory.StockUseCase
	reconcile *inventory.ReconcileUseCase
	lots      repository.StockLotRepository
	stocks    repository.StockRepository
	movements repository.StockMovementRepository
	observer  *recordingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddArticle(&entity.Article{
		ID: articleID, CompanyID: companyID, Name: "Reactivo glucosa", UnitMeasure: "ml",
		UnitPrice: decimal.NewFromInt(3),
		Category:  &entity.Category{ID: "cat-1", CompanyID: companyID, Name: "Reactivos", ExpirationAlertDays: 15},
	})
	store.AddArticle(&entity.Article{ID: foreignID, CompanyID: otherCo, Name: "Ajeno"})

	tx := memory.NewTxRunner(store)
	articles := memory.NewArticleRepository(store)
	lots := memory.NewStockLotRepository(store)
	stocks := memory.NewStockRepository(store)
	movs := memory.NewStockMovementRepository(store)
	guard := cache.NewInMemoryIdempotencyGuard(time.Hour)
	obs := &recordingObserver{}

	return &fixture{
		store:     store,
		consume:   inventory.NewConsumeUseCase(tx, articles, guard, obs, logger.Nop()),
		replenish: inventory.NewReplenishUseCase(tx, articles, obs),
		reverse:   inventory.NewReverseUseCase(tx, articles, guard, obs, logger.Nop()),
		stock:     inventory.NewStockUseCase(tx, articles, stocks, lots, movs, obs),
		reconcile: inventory.NewReconcileUseCase(tx, stocks, logger.Nop()),
		lots:      lots,
		stocks:    stocks,
		movements: movs,
		observer:  obs,
	}
}

func dateOffset(days int) *dto.Date {
	d := dto.NewDate(time.Now().UTC().AddDate(0, 0, days))
	return &d
}

func fixedDate(s string) *dto.Date {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	d := dto.NewDate(t)
	return &d
}

func (f *fixture) addLot(t *testing.T, qty int64, entry, expiration *dto.Date, cost int64) string {
	t.Helper()
	c := decimal.NewFromInt(cost)
	res, err := f.replenish.Replenish(context.Background(), companyID, articleID, dto.ReplenishRequest{
		Quantity:       qty,
		EntryDate:      entry,
		ExpirationDate: expiration,
		UnitCost:       &c,
	})
	require.NoError(t, err)
	return res.LotID
}

func (f *fixture) remaining(t *testing.T, lotID string) int64 {
	t.Helper()
	l, err := f.lots.GetByID(context.Background(), lotID)
	require.NoError(t, err)
	require.NotNil(t, l)
	return l.QuantityRemaining
}

func (f *fixture) allMovements(t *testing.T) []*entity.StockMovement {
	t.Helper()
	movs, err := f.movements.List(context.Background(), companyID, repository.MovementFilter{ArticleID: articleID})
	require.NoError(t, err)
	return movs
}

// assertLedgerInvariants: caché = suma de lotes, y por lote
// inicial - saldo = Σ|salidas| - Σ compensaciones.
func (f *fixture) assertLedgerInvariants(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	issues, err := f.stock.CheckConsistency(ctx, companyID)
	require.NoError(t, err)
	require.Empty(t, issues)

	lots, err := f.lots.ListByArticle(ctx, companyID, articleID, true)
	require.NoError(t, err)
	net := map[string]int64{}
	for _, m := range f.allMovements(t) {
		if m.IsExit() {
			net[m.LotID] += -m.Quantity
		} else if m.ReversalOf != "" {
			net[m.LotID] -= m.Quantity
		}
	}
	for _, l := range lots {
		require.GreaterOrEqual(t, l.QuantityRemaining, int64(0))
		require.LessOrEqual(t, l.QuantityRemaining, l.QuantityInitial)
		require.Equal(t, l.QuantityInitial-l.QuantityRemaining, net[l.ID], "lote %s", l.ID)
	}
}

func decimalFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
