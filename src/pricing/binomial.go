package pricing

import (
	"fmt"
	"math"

	"github.com/optionflow/options-engine/src/optionmodels"
)

// DefaultTreeSteps is used when a caller does not specify a step count.
const DefaultTreeSteps = 200

// TreeParameters are the derived Cox-Ross-Rubinstein lattice factors for a
// given volatility, rates and step count. Down is always 1/Up.
type TreeParameters struct {
	StepCount       int
	DeltaT          float64
	Up              float64
	Down            float64
	RiskNeutralProb float64
}

// NewTreeParameters derives dt = T/N, u = e^(sigma*sqrt(dt)), d = 1/u and
// p = (e^((r-q)*dt) - d) / (u - d), failing with a TreeParameterError when
// p falls outside [0, 1] rather than clamping it.
func NewTreeParameters(sigma, rate, yield, maturity float64, steps int) (TreeParameters, error) {
	if steps <= 0 {
		return TreeParameters{}, &optionmodels.InputValidationError{Field: "treeSteps", Value: float64(steps), Reason: "must be positive"}
	}

	if maturity <= 0 {
		return TreeParameters{}, &optionmodels.InputValidationError{Field: "timeToMaturity", Value: maturity, Reason: "must be positive"}
	}

	dt := maturity / float64(steps)
	up := math.Exp(sigma * math.Sqrt(dt))
	down := 1 / up
	prob := (math.Exp((rate-yield)*dt) - down) / (up - down)

	if prob < 0 || prob > 1 {
		return TreeParameters{}, &optionmodels.TreeParameterError{Probability: prob}
	}

	return TreeParameters{
		StepCount:       steps,
		DeltaT:          dt,
		Up:              up,
		Down:            down,
		RiskNeutralProb: prob,
	}, nil
}

// BinomialPrice prices the contract on a recombining CRR tree with the
// given number of steps, handling both exercise styles: American nodes take
// the better of continuation and immediate exercise, which is the only
// difference from the European induction.
//
// Convergence: European CRR prices oscillate around the closed-form value
// as the step count alternates between odd and even. Callers needing smooth
// convergence should use an even step count or average adjacent step
// counts; the oscillation is not corrected here.
//
// The same edge policy as BlackScholesPrice applies: zero maturity returns
// the intrinsic value, and sigma <= 0 degenerates to the riskless case (for
// American contracts, the better of immediate exercise and the discounted
// forward intrinsic value).
func BinomialPrice(contract optionmodels.OptionContract, snapshot optionmodels.MarketSnapshot, sigma float64, steps int) (float64, error) {
	if err := contract.Validate(); err != nil {
		return 0, fmt.Errorf("BinomialPrice: %w", err)
	}

	if err := snapshot.Validate(); err != nil {
		return 0, fmt.Errorf("BinomialPrice: %w", err)
	}

	if contract.TimeToMaturity <= 0 {
		return contract.IntrinsicValue(snapshot.Spot), nil
	}

	if sigma <= 0 {
		european := contract
		european.Style = optionmodels.European

		degenerate, err := BlackScholesPrice(european, snapshot, sigma)
		if err != nil {
			return 0, fmt.Errorf("BinomialPrice: %w", err)
		}

		if contract.Style == optionmodels.American {
			return math.Max(contract.IntrinsicValue(snapshot.Spot), degenerate), nil
		}

		return degenerate, nil
	}

	params, err := NewTreeParameters(sigma, snapshot.RiskFreeRate, snapshot.DividendYield, contract.TimeToMaturity, steps)
	if err != nil {
		return 0, fmt.Errorf("BinomialPrice: %w", err)
	}

	return priceOnTree(contract, snapshot.Spot, snapshot.RiskFreeRate, params), nil
}

// priceOnTree runs the backward induction for an already derived lattice.
// It only depends on spot through the payoffs, so spot bumps can reuse the
// same TreeParameters. O(N) memory, O(N^2) time.
func priceOnTree(contract optionmodels.OptionContract, spot, rate float64, params TreeParameters) float64 {
	n := params.StepCount
	growth := params.Up / params.Down

	// Terminal layer: payoff at S * u^k * d^(n-k) for k = 0..n.
	values := make([]float64, n+1)
	nodePrice := spot * math.Pow(params.Down, float64(n))
	for k := 0; k <= n; k++ {
		values[k] = contract.IntrinsicValue(nodePrice)
		nodePrice *= growth
	}

	discount := math.Exp(-rate * params.DeltaT)
	probUp := params.RiskNeutralProb
	probDown := 1 - probUp

	for layer := n - 1; layer >= 0; layer-- {
		if contract.Style == optionmodels.American {
			nodePrice = spot * math.Pow(params.Down, float64(layer))
			for k := 0; k <= layer; k++ {
				continuation := discount * (probUp*values[k+1] + probDown*values[k])
				if exercise := contract.IntrinsicValue(nodePrice); exercise > continuation {
					continuation = exercise
				}
				values[k] = continuation
				nodePrice *= growth
			}
		} else {
			for k := 0; k <= layer; k++ {
				values[k] = discount * (probUp*values[k+1] + probDown*values[k])
			}
		}
	}

	return values[0]
}
