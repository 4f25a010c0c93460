package inventory

import (
	"sort"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Deduction cantidad a retirar de un lote concreto.
type Deduction struct {
	Lot       *entity.StockLot
	Quantity  int64
	UnitCost  decimal.Decimal
	Remaining int64 // saldo del lote después del retiro
}

// WithdrawalPlan resultado de aplicar la política de salida a un conjunto de lotes.
type WithdrawalPlan struct {
	Policy      string
	Requested   int64
	Deductions  []Deduction
	TotalCost   decimal.Decimal
	AverageCost decimal.Decimal // costo unitario promedio ponderado de lo retirado
}

// SortLots ordena los lotes según la política (in place).
// FIFO: fecha de entrada asc, id asc.
// FEFO: vencimiento asc (sin vencimiento al final), fecha de entrada asc, id asc.
func SortLots(lots []*entity.StockLot, policy string) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if policy == entity.PolicyFEFO {
			switch {
			case a.ExpirationDate != nil && b.ExpirationDate != nil:
				if !a.ExpirationDate.Equal(*b.ExpirationDate) {
					return a.ExpirationDate.Before(*b.ExpirationDate)
				}
			case a.ExpirationDate != nil:
				return true
			case b.ExpirationDate != nil:
				return false
			}
		}
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		return a.ID < b.ID
	})
}

// Candidates devuelve los lotes vivos con saldo, ordenados según la política.
func Candidates(lots []*entity.StockLot, policy string) []*entity.StockLot {
	out := make([]*entity.StockLot, 0, len(lots))
	for _, l := range lots {
		if l.IsLive() && !l.IsExhausted() {
			out = append(out, l)
		}
	}
	SortLots(out, policy)
	return out
}

// PlanWithdrawal calcula qué lotes agotar y cuánto retirar de cada uno.
// No modifica los lotes. Si el disponible no alcanza devuelve *domain.InsufficientStockError
// y ningún retiro parcial.
func PlanWithdrawal(articleID string, quantity int64, lots []*entity.StockLot, policy string) (*WithdrawalPlan, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if !entity.ValidPolicy(policy) {
		return nil, domain.ErrInvalidInput
	}
	ordered := Candidates(lots, policy)
	if available := AvailableQuantity(ordered); available < quantity {
		return nil, &domain.InsufficientStockError{ArticleID: articleID, Requested: quantity, Available: available}
	}

	plan := &WithdrawalPlan{Policy: policy, Requested: quantity, TotalCost: decimal.Zero, AverageCost: decimal.Zero}
	pending := quantity
	var taken int64
	for _, lot := range ordered {
		if pending == 0 {
			break
		}
		take := min(lot.QuantityRemaining, pending)
		cost := decimal.Zero
		if lot.UnitCost != nil {
			cost = *lot.UnitCost
		}
		plan.Deductions = append(plan.Deductions, Deduction{
			Lot:       lot,
			Quantity:  take,
			UnitCost:  cost,
			Remaining: lot.QuantityRemaining - take,
		})
		plan.TotalCost = plan.TotalCost.Add(cost.Mul(decimal.NewFromInt(take)))
		plan.AverageCost = CostCalculator(decimal.NewFromInt(taken), plan.AverageCost, decimal.NewFromInt(take), cost)
		taken += take
		pending -= take
	}
	return plan, nil
}
