package fees

import (
	"github.com/shopspring/decimal"

	apperrors "palmsgig.com/palmsgig/internal/errors"
)

// Calculator computes the platform commission for a task. The rate is
// injected from configuration so there is a single source of truth for it.
type Calculator struct {
	rate decimal.Decimal
}

// Breakdown is the full cost picture for one task.
type Breakdown struct {
	Budget                 decimal.Decimal `json:"budget"`
	ServiceFee             decimal.Decimal `json:"service_fee"`
	TotalCost              decimal.Decimal `json:"total_cost"`
	TotalCostAllPerformers decimal.Decimal `json:"total_cost_all_performers"`
}

func NewCalculator(rate decimal.Decimal) *Calculator {
	return &Calculator{rate: rate}
}

// Fees returns the per-completion commission and total for a budget. Both
// amounts are rounded half up to 2 decimal places.
func (c *Calculator) Fees(budget decimal.Decimal) (serviceFee, totalCost decimal.Decimal, err error) {
	if !budget.IsPositive() {
		return decimal.Zero, decimal.Zero, apperrors.NewValidation("budget must be greater than zero")
	}

	serviceFee = budget.Mul(c.rate).Round(2)
	totalCost = budget.Add(serviceFee).Round(2)
	return serviceFee, totalCost, nil
}

// Calculate returns the full fee breakdown for a per-completion budget and a
// performer count.
func (c *Calculator) Calculate(budget decimal.Decimal, maxPerformers int) (Breakdown, error) {
	if maxPerformers <= 0 {
		return Breakdown{}, apperrors.NewValidation("max_performers must be greater than zero")
	}

	serviceFee, totalCost, err := c.Fees(budget)
	if err != nil {
		return Breakdown{}, err
	}

	totalAll := totalCost.Mul(decimal.NewFromInt(int64(maxPerformers))).Round(2)

	return Breakdown{
		Budget:                 budget,
		ServiceFee:             serviceFee,
		TotalCost:              totalCost,
		TotalCostAllPerformers: totalAll,
	}, nil
}
