package pricing

import (
	"math"

	"github.com/optionflow/options-engine/src/optionmodels"
)

// Bump sizing for finite differences: relative, with an absolute floor for
// near-zero inputs (a zero rate still needs a non-zero rho bump). 1e-4
// balances truncation error against floating point cancellation.
const (
	bumpFraction = 1e-4
	bumpFloor    = 1e-7
)

func bumpSize(x float64) float64 {
	h := bumpFraction * math.Abs(x)
	if h < bumpFloor {
		h = bumpFloor
	}

	return h
}

// BinomialGreeks computes tree-model sensitivities by bump-and-reprice.
// Each sensitivity costs one additional full tree build per bumped input,
// except the spot bumps: the CRR factors u, d and p depend only on sigma,
// rates and dt, so Delta and Gamma reuse the base lattice parameters.
// Sigma, maturity and rate bumps re-derive the lattice. Theta uses a
// forward difference toward expiry, since maturity only ever decreases.
//
// Degenerate inputs (zero maturity or non-positive sigma) yield a zero
// bundle, matching the closed-form calculator. A base pricing failure is
// reported as a NumericalDivergenceError.
func BinomialGreeks(contract optionmodels.OptionContract, snapshot optionmodels.MarketSnapshot, sigma float64, steps int) (optionmodels.Greeks, error) {
	base, err := BinomialPrice(contract, snapshot, sigma, steps)
	if err != nil {
		return optionmodels.Greeks{}, &optionmodels.NumericalDivergenceError{Op: "BinomialGreeks: base price", Cause: err}
	}

	maturity := contract.TimeToMaturity
	if maturity <= 0 || sigma <= 0 {
		return optionmodels.Greeks{}, nil
	}

	params, err := NewTreeParameters(sigma, snapshot.RiskFreeRate, snapshot.DividendYield, maturity, steps)
	if err != nil {
		return optionmodels.Greeks{}, &optionmodels.NumericalDivergenceError{Op: "BinomialGreeks: lattice parameters", Cause: err}
	}

	// Delta and Gamma: central differences on spot, same lattice.
	spotBump := bumpSize(snapshot.Spot)
	spotUp := priceOnTree(contract, snapshot.Spot+spotBump, snapshot.RiskFreeRate, params)
	spotDown := priceOnTree(contract, snapshot.Spot-spotBump, snapshot.RiskFreeRate, params)
	delta := (spotUp - spotDown) / (2 * spotBump)
	gamma := (spotUp - 2*base + spotDown) / (spotBump * spotBump)

	// Vega: central difference on sigma, full rebuild each side.
	volBump := bumpSize(sigma)
	volUp, err := BinomialPrice(contract, snapshot, sigma+volBump, steps)
	if err != nil {
		return optionmodels.Greeks{}, &optionmodels.NumericalDivergenceError{Op: "BinomialGreeks: vega bump", Cause: err}
	}
	volDown, err := BinomialPrice(contract, snapshot, sigma-volBump, steps)
	if err != nil {
		return optionmodels.Greeks{}, &optionmodels.NumericalDivergenceError{Op: "BinomialGreeks: vega bump", Cause: err}
	}
	vega := (volUp - volDown) / (2 * volBump)

	// Theta: forward difference at T - h, reported per calendar day.
	timeBump := bumpSize(maturity)
	if timeBump >= maturity {
		timeBump = maturity / 2
	}
	shorter := contract
	shorter.TimeToMaturity = maturity - timeBump
	shorterPrice, err := BinomialPrice(shorter, snapshot, sigma, steps)
	if err != nil {
		return optionmodels.Greeks{}, &optionmodels.NumericalDivergenceError{Op: "BinomialGreeks: theta bump", Cause: err}
	}
	theta := (shorterPrice - base) / timeBump

	// Rho: central difference on the risk-free rate, full rebuild.
	rateBump := bumpSize(snapshot.RiskFreeRate)
	rateUpSnapshot := snapshot
	rateUpSnapshot.RiskFreeRate = snapshot.RiskFreeRate + rateBump
	rateDownSnapshot := snapshot
	rateDownSnapshot.RiskFreeRate = snapshot.RiskFreeRate - rateBump

	rateUp, err := BinomialPrice(contract, rateUpSnapshot, sigma, steps)
	if err != nil {
		return optionmodels.Greeks{}, &optionmodels.NumericalDivergenceError{Op: "BinomialGreeks: rho bump", Cause: err}
	}
	rateDown, err := BinomialPrice(contract, rateDownSnapshot, sigma, steps)
	if err != nil {
		return optionmodels.Greeks{}, &optionmodels.NumericalDivergenceError{Op: "BinomialGreeks: rho bump", Cause: err}
	}
	rho := (rateUp - rateDown) / (2 * rateBump)

	return optionmodels.Greeks{
		Delta:       delta,
		Gamma:       gamma,
		ThetaPerDay: theta / 365.0,
		Vega:        vega,
		Rho:         rho,
	}, nil
}
