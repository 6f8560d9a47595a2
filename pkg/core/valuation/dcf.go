package valuation

import (
	"math"

	"aerospace_valuation/pkg/core/valerr"
)

// DCFInput encapsulates everything a discounted cash flow valuation needs.
// CashFlows[0] falls in the valuation year and is not discounted.
type DCFInput struct {
	CashFlows      []float64
	DiscountRate   float64 // e.g. 0.12
	TerminalGrowth float64 // e.g. 0.03
	Dilution       float64 // share of enterprise value lost to future issuance
}

// DCFResult holds the valuation outputs. Money is in the cash-flow unit.
type DCFResult struct {
	PVCashFlows     float64 `json:"pv_cash_flows"`
	TerminalValue   float64 `json:"terminal_value"`
	PVTerminal      float64 `json:"pv_terminal"`
	EnterpriseValue float64 `json:"enterprise_value"`
	EquityValue     float64 `json:"equity_value"`
}

// TerminalShare is the fraction of enterprise value coming from the terminal value.
func (r DCFResult) TerminalShare() float64 {
	if r.EnterpriseValue == 0 {
		return 0
	}
	return r.PVTerminal / r.EnterpriseValue
}

// PresentValue returns sum(CF_t / (1+rate)^t) for t = 0..n-1.
func PresentValue(cashFlows []float64, rate float64) (float64, error) {
	if rate <= -1 || math.IsNaN(rate) {
		return 0, valerr.Invalid("discount_rate", rate, "must exceed -1")
	}
	var pv float64
	for t, cf := range cashFlows {
		pv += cf / math.Pow(1+rate, float64(t))
	}
	if err := valerr.CheckFinite("present_value", pv); err != nil {
		return 0, err
	}
	return pv, nil
}

// TerminalValue is the Gordon growth value one period after the final cash flow:
// TV = CF_final * (1+g) / (r-g).
func TerminalValue(finalCashFlow, rate, growth float64) (float64, error) {
	if rate <= growth {
		return 0, &valerr.DivergenceError{DiscountRate: rate, TerminalGrowth: growth}
	}
	tv := finalCashFlow * (1 + growth) / (rate - growth)
	if err := valerr.CheckFinite("terminal_value", tv); err != nil {
		return 0, err
	}
	return tv, nil
}

// ApplyDilution returns ev * (1 - dilution).
func ApplyDilution(ev, dilution float64) (float64, error) {
	if dilution < 0 || dilution >= 1 || math.IsNaN(dilution) {
		return 0, valerr.Invalid("dilution_factor", dilution, "must be within [0,1)")
	}
	return ev * (1 - dilution), nil
}

// CalculateDCF performs a single-rate two-stage DCF: explicit horizon plus
// Gordon growth terminal value, then dilution.
func CalculateDCF(input DCFInput) (DCFResult, error) {
	// 1. Explicit horizon
	pv, err := PresentValue(input.CashFlows, input.DiscountRate)
	if err != nil {
		return DCFResult{}, err
	}

	// 2. Terminal Value (Gordon Growth) on the final cash flow
	var tv, pvTerminal float64
	if n := len(input.CashFlows); n > 0 {
		tv, err = TerminalValue(input.CashFlows[n-1], input.DiscountRate, input.TerminalGrowth)
		if err != nil {
			return DCFResult{}, err
		}
		pvTerminal = tv / math.Pow(1+input.DiscountRate, float64(n-1))
	} else if input.DiscountRate <= input.TerminalGrowth {
		return DCFResult{}, &valerr.DivergenceError{DiscountRate: input.DiscountRate, TerminalGrowth: input.TerminalGrowth}
	}

	// 3. Aggregation
	ev := pv + pvTerminal
	if err := valerr.CheckFinite("enterprise_value", ev); err != nil {
		return DCFResult{}, err
	}
	equity, err := ApplyDilution(ev, input.Dilution)
	if err != nil {
		return DCFResult{}, err
	}

	return DCFResult{
		PVCashFlows:     pv,
		TerminalValue:   tv,
		PVTerminal:      pvTerminal,
		EnterpriseValue: ev,
		EquityValue:     equity,
	}, nil
}

// FutureValue compounds a present value forward by years at rate.
func FutureValue(pv, rate float64, years int) (float64, error) {
	fv := pv * math.Pow(1+rate, float64(years))
	if err := valerr.CheckFinite("future_value", fv); err != nil {
		return 0, err
	}
	return fv, nil
}
