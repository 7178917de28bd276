package lots

import "github.com/shopspring/decimal"

// CostInputs are the parameters of the nett-amount calculation. FRKQty is
// the by-product quantity diverted before brokerage applies; zero means no
// diversion.
type CostInputs struct {
	Rate          float64
	Qtl           float64
	MoistureCut   float64
	QIExpense     float64
	DalaliExpense float64
	OtherExpenses float64
	BrokerageRate float64
	FRKQty        float64
}

// CostBreakdown is the itemized result of a nett-amount calculation.
type CostBreakdown struct {
	GrossAmount    float64
	TotalBrokerage float64
	TotalExpenses  float64
	NettAmount     float64
}

// NettAmount computes a lot's net value: gross (qtl x rate) minus itemized
// expenses, moisture cut and brokerage. Brokerage applies to the quantity
// net of any FRK diversion. Negative results are valid business outcomes,
// not errors. Arithmetic runs on decimals so expense cents never drift.
func NettAmount(in CostInputs) CostBreakdown {
	qtl := decimal.NewFromFloat(in.Qtl)

	effectiveQtl := qtl
	if in.FRKQty > 0 {
		effectiveQtl = qtl.Sub(decimal.NewFromFloat(in.FRKQty))
	}

	totalBrokerage := effectiveQtl.Mul(decimal.NewFromFloat(in.BrokerageRate))
	grossAmount := qtl.Mul(decimal.NewFromFloat(in.Rate))

	totalExpenses := decimal.NewFromFloat(in.QIExpense).
		Add(decimal.NewFromFloat(in.DalaliExpense)).
		Add(decimal.NewFromFloat(in.OtherExpenses)).
		Add(decimal.NewFromFloat(in.MoistureCut)).
		Add(totalBrokerage)

	nett := grossAmount.Sub(totalExpenses)

	return CostBreakdown{
		GrossAmount:    grossAmount.InexactFloat64(),
		TotalBrokerage: totalBrokerage.InexactFloat64(),
		TotalExpenses:  totalExpenses.InexactFloat64(),
		NettAmount:     nett.InexactFloat64(),
	}
}
