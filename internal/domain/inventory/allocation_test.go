package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptrDay(s string) *time.Time {
	t := day(s)
	return &t
}

func lot(id string, qty int64, entry string, exp *time.Time) *entity.StockLot {
	return &entity.StockLot{
		ID:                id,
		CompanyID:         "c1",
		ArticleID:         "a1",
		QuantityInitial:   qty,
		QuantityRemaining: qty,
		EntryDate:         day(entry),
		ExpirationDate:    exp,
	}
}

func TestPlanWithdrawal_FIFOConsumeLotesEnOrdenDeEntrada(t *testing.T) {
	lots := []*entity.StockLot{
		lot("l3", 5, "2024-03-01", nil),
		lot("l1", 5, "2024-01-01", nil),
		lot("l2", 5, "2024-02-01", nil),
	}

	plan, err := inventory.PlanWithdrawal("a1", 7, lots, entity.PolicyFIFO)
	require.NoError(t, err)
	require.Len(t, plan.Deductions, 2, "debe producir exactamente dos retiros")

	assert.Equal(t, "l1", plan.Deductions[0].Lot.ID)
	assert.EqualValues(t, 5, plan.Deductions[0].Quantity)
	assert.EqualValues(t, 0, plan.Deductions[0].Remaining)
	assert.Equal(t, "l2", plan.Deductions[1].Lot.ID)
	assert.EqualValues(t, 2, plan.Deductions[1].Quantity)
	assert.EqualValues(t, 3, plan.Deductions[1].Remaining)

	// El plan no modifica los lotes
	assert.EqualValues(t, 5, lots[1].QuantityRemaining)
}

func TestPlanWithdrawal_FIFODesempataPorID(t *testing.T) {
	lots := []*entity.StockLot{
		lot("b", 3, "2024-01-01", nil),
		lot("a", 3, "2024-01-01", nil),
	}
	plan, err := inventory.PlanWithdrawal("a1", 4, lots, entity.PolicyFIFO)
	require.NoError(t, err)
	require.Len(t, plan.Deductions, 2)
	assert.Equal(t, "a", plan.Deductions[0].Lot.ID)
	assert.Equal(t, "b", plan.Deductions[1].Lot.ID)
}

func TestPlanWithdrawal_FEFOAgotaPrimeroElQueVenceAntes(t *testing.T) {
	// Escenario: lote A entra antes pero vence después que el lote B.
	lots := []*entity.StockLot{
		lot("A", 10, "2024-01-01", ptrDay("2024-06-01")),
		lot("B", 10, "2024-02-01", ptrDay("2024-03-01")),
	}

	plan, err := inventory.PlanWithdrawal("a1", 12, lots, entity.PolicyFEFO)
	require.NoError(t, err)
	require.Len(t, plan.Deductions, 2)

	assert.Equal(t, "B", plan.Deductions[0].Lot.ID)
	assert.EqualValues(t, 10, plan.Deductions[0].Quantity)
	assert.Equal(t, "A", plan.Deductions[1].Lot.ID)
	assert.EqualValues(t, 2, plan.Deductions[1].Quantity)
	assert.EqualValues(t, 8, plan.Deductions[1].Remaining)
}

func TestPlanWithdrawal_FEFOLotesSinVencimientoAlFinal(t *testing.T) {
	lots := []*entity.StockLot{
		lot("sin-venc", 5, "2023-01-01", nil),
		lot("tarde", 5, "2024-05-01", ptrDay("2025-01-01")),
		lot("pronto", 5, "2024-06-01", ptrDay("2024-09-01")),
	}
	plan, err := inventory.PlanWithdrawal("a1", 15, lots, entity.PolicyFEFO)
	require.NoError(t, err)
	ids := []string{plan.Deductions[0].Lot.ID, plan.Deductions[1].Lot.ID, plan.Deductions[2].Lot.ID}
	assert.Equal(t, []string{"pronto", "tarde", "sin-venc"}, ids)
}

func TestPlanWithdrawal_FEFOEmpateDeVencimientoUsaFechaDeEntrada(t *testing.T) {
	lots := []*entity.StockLot{
		lot("nuevo", 5, "2024-03-01", ptrDay("2024-12-01")),
		lot("viejo", 5, "2024-01-01", ptrDay("2024-12-01")),
	}
	plan, err := inventory.PlanWithdrawal("a1", 1, lots, entity.PolicyFEFO)
	require.NoError(t, err)
	require.Len(t, plan.Deductions, 1)
	assert.Equal(t, "viejo", plan.Deductions[0].Lot.ID)
}

func TestPlanWithdrawal_OmiteLotesAgotadosYBorrados(t *testing.T) {
	agotado := lot("agotado", 5, "2024-01-01", nil)
	agotado.QuantityRemaining = 0
	borrado := lot("borrado", 5, "2024-01-02", nil)
	borrado.Deleted = true
	vivo := lot("vivo", 5, "2024-01-03", nil)

	plan, err := inventory.PlanWithdrawal("a1", 3, []*entity.StockLot{agotado, borrado, vivo}, entity.PolicyFIFO)
	require.NoError(t, err)
	require.Len(t, plan.Deductions, 1, "no debe haber retiros de cantidad cero")
	assert.Equal(t, "vivo", plan.Deductions[0].Lot.ID)
}

func TestPlanWithdrawal_StockInsuficiente(t *testing.T) {
	borrado := lot("borrado", 100, "2024-01-02", nil)
	borrado.Deleted = true
	lots := []*entity.StockLot{lot("l1", 4, "2024-01-01", nil), borrado}

	plan, err := inventory.PlanWithdrawal("a1", 5, lots, entity.PolicyFIFO)
	assert.Nil(t, plan)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.EqualValues(t, 4, insufficient.Available)
	assert.EqualValues(t, 1, insufficient.Shortfall())
	assert.Contains(t, insufficient.Error(), "a1")
}

func TestPlanWithdrawal_CantidadInvalida(t *testing.T) {
	lots := []*entity.StockLot{lot("l1", 4, "2024-01-01", nil)}
	for _, q := range []int64{0, -3} {
		_, err := inventory.PlanWithdrawal("a1", q, lots, entity.PolicyFIFO)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
	_, err := inventory.PlanWithdrawal("a1", 1, lots, "LIFO")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlanWithdrawal_CostoPromedioPonderado(t *testing.T) {
	c1 := decimal.NewFromInt(10)
	c2 := decimal.NewFromInt(20)
	l1 := lot("l1", 2, "2024-01-01", nil)
	l1.UnitCost = &c1
	l2 := lot("l2", 5, "2024-01-02", nil)
	l2.UnitCost = &c2

	plan, err := inventory.PlanWithdrawal("a1", 4, []*entity.StockLot{l1, l2}, entity.PolicyFIFO)
	require.NoError(t, err)
	assert.True(t, plan.TotalCost.Equal(decimal.NewFromInt(60)), "2*10 + 2*20")
	assert.True(t, plan.AverageCost.Equal(decimal.NewFromInt(15)))
}

func TestCostCalculator_SinCantidadDevuelveCero(t *testing.T) {
	got := inventory.CostCalculator(decimal.Zero, decimal.Zero, decimal.Zero, decimal.NewFromInt(7))
	assert.True(t, got.IsZero())
}
