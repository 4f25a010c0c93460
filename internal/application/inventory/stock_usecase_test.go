package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryAvailable_SumaLotesVivos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLot(t, 5, nil, nil, 1)
	f.addLot(t, 7, nil, nil, 1)

	res, err := f.stock.QueryAvailable(ctx, companyID, articleID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.Available)

	_, err = f.stock.QueryAvailable(ctx, companyID, foreignID)
	assert.ErrorIs(t, err, domain.ErrTenantMismatch)
}

func TestQueryNearExpiration_HorizonteYCategoria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soon := f.addLot(t, 5, fixedDate("2024-01-01"), dateOffset(5), 1)
	mid := f.addLot(t, 5, fixedDate("2024-01-01"), dateOffset(12), 1)
	f.addLot(t, 5, fixedDate("2024-01-01"), dateOffset(40), 1)
	f.addLot(t, 5, fixedDate("2024-01-01"), nil, 1)

	res, err := f.stock.QueryNearExpiration(ctx, companyID, articleID, 7)
	require.NoError(t, err)
	require.Len(t, res.Lots, 1)
	assert.Equal(t, soon, res.Lots[0].ID)

	// 0 = plazo de la categoría (15 días)
	res, err = f.stock.QueryNearExpiration(ctx, companyID, articleID, 0)
	require.NoError(t, err)
	assert.Equal(t, 15, res.HorizonDays)
	require.Len(t, res.Lots, 2)
	assert.Equal(t, soon, res.Lots[0].ID)
	assert.Equal(t, mid, res.Lots[1].ID)

	_, err = f.stock.QueryNearExpiration(ctx, companyID, articleID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHasExpiredLots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLot(t, 5, fixedDate("2024-01-01"), fixedDate("2024-03-01"), 1)

	expired, err := f.stock.HasExpiredLots(ctx, companyID, articleID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, expired)

	expired, err = f.stock.HasExpiredLots(ctx, companyID, articleID, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestSoftDeleteLot_SaleDelStockSinMovimiento(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l1 := f.addLot(t, 5, fixedDate("2024-01-01"), nil, 2)
	f.addLot(t, 3, fixedDate("2024-01-02"), nil, 2)
	before := len(f.allMovements(t))

	res, err := f.stock.SoftDeleteLot(ctx, companyID, l1, dto.SoftDeleteLotRequest{Reason: "contaminado"})
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Equal(t, "contaminado", res.DeleteReason)
	assert.Len(t, f.allMovements(t), before)

	avail, err := f.stock.QueryAvailable(ctx, companyID, articleID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), avail.Available)

	// El lote borrado no participa en la asignación.
	_, err = f.consume.Consume(ctx, companyID, articleID, dto.ConsumeRequest{Quantity: 4})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.stock.SoftDeleteLot(ctx, companyID, l1, dto.SoftDeleteLotRequest{Reason: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.stock.SoftDeleteLot(ctx, otherCo, l1, dto.SoftDeleteLotRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrTenantMismatch)
	_, err = f.stock.SoftDeleteLot(ctx, companyID, "nope", dto.SoftDeleteLotRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	lots, err := f.stock.ListLots(ctx, companyID, articleID, true)
	require.NoError(t, err)
	assert.Len(t, lots, 2)
	f.assertLedgerInvariants(t)
}

func TestConfigureStock_UmbralYPolitica(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	threshold := int64(8)

	res, err := f.stock.ConfigureStock(ctx, companyID, articleID, dto.ConfigureStockRequest{
		CriticalThreshold: &threshold, DefaultPolicy: entity.PolicyFIFO,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.CriticalThreshold)
	assert.Equal(t, entity.PolicyFIFO, res.DefaultPolicy)
	assert.Equal(t, int64(0), res.Quantity)

	neg := int64(-1)
	_, err = f.stock.ConfigureStock(ctx, companyID, articleID, dto.ConfigureStockRequest{CriticalThreshold: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.stock.ConfigureStock(ctx, companyID, articleID, dto.ConfigureStockRequest{DefaultPolicy: "LIFO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummaryYListMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLot(t, 5, fixedDate("2024-01-01"), nil, 4)
	_, err := f.consume.Consume(ctx, companyID, articleID, dto.ConsumeRequest{Quantity: 2})
	require.NoError(t, err)

	sum, err := f.stock.Summary(ctx, companyID, articleID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Quantity)
	assert.Equal(t, "12", sum.Value.String())
	assert.Equal(t, entity.PolicyFEFO, sum.DefaultPolicy)

	page, err := f.stock.ListMovements(ctx, companyID, articleID, dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, entity.MovementEntry, page.Items[0].Direction)

	page, err = f.stock.ListMovements(ctx, companyID, articleID, dto.PageRequest{Limit: 10, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(-2), page.Items[0].Quantity)
}

func TestCheckConsistencyYMigracionHeredada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Agregado heredado: cantidad y valor sin lotes.
	_, err := f.stocks.Ensure(ctx, &entity.Stock{ID: "s-legacy", CompanyID: companyID, ArticleID: articleID})
	require.NoError(t, err)
	legacy, err := f.stocks.Get(ctx, companyID, articleID)
	require.NoError(t, err)
	legacy.Quantity = 8
	legacy.Value = legacy.Value.Add(decimalFromInt(80))
	require.NoError(t, f.stocks.UpdateDerived(ctx, legacy))

	issues, err := f.stock.CheckConsistency(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, int64(8), issues[0].CachedQuantity)
	assert.Equal(t, int64(0), issues[0].LedgerQuantity)

	report, err := f.reconcile.MigrateLegacyStock(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, report.SyntheticLots, 1)

	lot, err := f.lots.GetByID(ctx, report.SyntheticLots[0])
	require.NoError(t, err)
	assert.Equal(t, int64(8), lot.QuantityRemaining)
	require.NotNil(t, lot.UnitCost)
	assert.Equal(t, "10", lot.UnitCost.String())

	avail, err := f.stock.QueryAvailable(ctx, companyID, articleID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), avail.Available)
	f.assertLedgerInvariants(t)

	// Segunda pasada: nada que hacer.
	report, err = f.reconcile.MigrateLegacyStock(ctx, companyID)
	require.NoError(t, err)
	assert.Empty(t, report.SyntheticLots)
	assert.Empty(t, report.Refreshed)
}
