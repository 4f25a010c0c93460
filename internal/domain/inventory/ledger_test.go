package inventory_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
)

func TestAvailableQuantityYValue_IgnoranLotesBorrados(t *testing.T) {
	cost := decimal.RequireFromString("2.5")
	l1 := lot("l1", 4, "2024-01-01", nil)
	l1.UnitCost = &cost
	l2 := lot("l2", 6, "2024-01-02", nil)
	l2.Deleted = true
	l2.UnitCost = &cost
	l3 := lot("l3", 3, "2024-01-03", nil) // sin costo

	lots := []*entity.StockLot{l1, l2, l3}
	assert.EqualValues(t, 7, inventory.AvailableQuantity(lots))
	assert.True(t, inventory.Value(lots).Equal(decimal.NewFromInt(10)))
}

func TestAvailableQuantity_NoDesbordaYFitsEntry(t *testing.T) {
	half := int64(math.MaxInt64/2 + 1)
	a := lot("a", half, "2024-01-01", nil)
	b := lot("b", half, "2024-01-02", nil)
	assert.EqualValues(t, int64(math.MaxInt64), inventory.AvailableQuantity([]*entity.StockLot{a, b}))

	assert.True(t, inventory.FitsEntry([]*entity.StockLot{a}, half-2))
	assert.False(t, inventory.FitsEntry([]*entity.StockLot{a}, half))
	assert.False(t, inventory.FitsEntry(nil, 0))

	consumido := lot("c", half, "2024-01-01", nil)
	consumido.QuantityRemaining = 1
	assert.False(t, inventory.FitsEntry([]*entity.StockLot{consumido}, half),
		"se mide sobre la cantidad inicial para que una anulación no desborde")

	borrado := lot("d", half, "2024-01-01", nil)
	borrado.Deleted = true
	assert.True(t, inventory.FitsEntry([]*entity.StockLot{borrado}, half))
}

func TestHasExpiredLots(t *testing.T) {
	asOf := day("2024-05-01")
	vencidoAgotado := lot("v0", 5, "2024-01-01", ptrDay("2024-04-01"))
	vencidoAgotado.QuantityRemaining = 0
	assert.False(t, inventory.HasExpiredLots([]*entity.StockLot{vencidoAgotado}, asOf),
		"un lote agotado no cuenta como vencido")

	vencido := lot("v1", 5, "2024-01-01", ptrDay("2024-04-30"))
	assert.True(t, inventory.HasExpiredLots([]*entity.StockLot{vencidoAgotado, vencido}, asOf))

	venceHoy := lot("v2", 5, "2024-01-01", ptrDay("2024-05-01"))
	assert.False(t, inventory.HasExpiredLots([]*entity.StockLot{venceHoy}, asOf))
}

func TestVencimiento_ComparaDiasDeCalendario(t *testing.T) {
	tarde := day("2024-05-01").Add(15*time.Hour + 30*time.Minute)
	venceHoy := lot("hoy", 5, "2024-01-01", ptrDay("2024-05-01"))
	lots := []*entity.StockLot{venceHoy}

	assert.False(t, venceHoy.IsExpired(tarde), "el día del vencimiento el lote aún no está vencido")
	assert.Equal(t, inventory.HasExpiredLots(lots, day("2024-05-01")), inventory.HasExpiredLots(lots, tarde))
	assert.True(t, venceHoy.IsExpired(day("2024-05-02").Add(time.Minute)))

	near := inventory.NearExpirationLots(lots, tarde, 0)
	require.Len(t, near, 1)
	assert.Equal(t, "hoy", near[0].ID)

	bogota := time.FixedZone("COT", -5*3600)
	nocheLocal := time.Date(2024, 4, 30, 21, 0, 0, 0, bogota) // 2024-05-01 02:00 UTC
	assert.Equal(t, day("2024-05-01"), entity.CalendarDay(nocheLocal))
}

func TestNearExpirationLots_VentanaInclusiva(t *testing.T) {
	asOf := day("2024-05-01")
	lots := []*entity.StockLot{
		lot("vencido", 1, "2024-01-01", ptrDay("2024-04-30")),
		lot("hoy", 1, "2024-01-01", ptrDay("2024-05-01")),
		lot("limite", 1, "2024-01-01", ptrDay("2024-05-31")),
		lot("fuera", 1, "2024-01-01", ptrDay("2024-06-01")),
		lot("sin", 1, "2024-01-01", nil),
	}
	got := inventory.NearExpirationLots(lots, asOf, 30)
	ids := make([]string, 0, len(got))
	for _, l := range got {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"hoy", "limite"}, ids)
}

func TestDerive_RecalculaVistaMaterializada(t *testing.T) {
	cost := decimal.NewFromInt(3)
	l1 := lot("l1", 4, "2024-01-01", ptrDay("2024-09-01"))
	l1.UnitCost = &cost
	l2 := lot("l2", 2, "2024-01-01", ptrDay("2024-07-01"))
	l2.QuantityRemaining = 0
	stock := &entity.Stock{ID: "s1", Quantity: 99}

	inventory.Derive(stock, []*entity.StockLot{l1, l2}, day("2024-05-01"))

	assert.EqualValues(t, 4, stock.Quantity)
	assert.True(t, stock.Value.Equal(decimal.NewFromInt(12)))
	if assert.NotNil(t, stock.ExpirationHint) {
		assert.True(t, stock.ExpirationHint.Equal(day("2024-09-01")), "el lote agotado no aporta vencimiento")
	}
	assert.True(t, inventory.Consistent(stock, []*entity.StockLot{l1, l2}))
}
