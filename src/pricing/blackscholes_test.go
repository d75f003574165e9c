package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionflow/options-engine/src/optionmodels"
)

const parityThreshold = 1e-8

func referenceSnapshot() optionmodels.MarketSnapshot {
	return optionmodels.MarketSnapshot{
		Spot:         100,
		RiskFreeRate: 0.05,
	}
}

func europeanContract(optionType optionmodels.OptionType, strike, maturity float64) optionmodels.OptionContract {
	return optionmodels.OptionContract{
		Strike:         strike,
		TimeToMaturity: maturity,
		OptionType:     optionType,
		Style:          optionmodels.European,
	}
}

func TestBlackScholesPrice(t *testing.T) {
	t.Run("call matches reference scenario", func(t *testing.T) {
		// S=100, K=100, T=1, r=0.05, q=0, sigma=0.2
		price, err := BlackScholesPrice(europeanContract(optionmodels.Call, 100, 1), referenceSnapshot(), 0.2)
		require.NoError(t, err)
		assert.InDelta(t, 10.4506, price, 1e-3)
	})

	t.Run("put call parity", func(t *testing.T) {
		snapshot := optionmodels.MarketSnapshot{
			Spot:          105,
			RiskFreeRate:  0.03,
			DividendYield: 0.015,
		}

		for _, tc := range []struct {
			strike   float64
			maturity float64
			sigma    float64
		}{
			{strike: 90, maturity: 0.25, sigma: 0.15},
			{strike: 105, maturity: 1, sigma: 0.2},
			{strike: 140, maturity: 2.5, sigma: 0.45},
		} {
			call, err := BlackScholesPrice(europeanContract(optionmodels.Call, tc.strike, tc.maturity), snapshot, tc.sigma)
			require.NoError(t, err)

			put, err := BlackScholesPrice(europeanContract(optionmodels.Put, tc.strike, tc.maturity), snapshot, tc.sigma)
			require.NoError(t, err)

			forward := snapshot.Spot * math.Exp(-snapshot.DividendYield*tc.maturity)
			strikeDiscounted := tc.strike * math.Exp(-snapshot.RiskFreeRate*tc.maturity)
			assert.InDelta(t, forward-strikeDiscounted, call-put, parityThreshold)
		}
	})

	t.Run("zero maturity returns intrinsic value for any volatility", func(t *testing.T) {
		snapshot := optionmodels.MarketSnapshot{Spot: 105, RiskFreeRate: 0.05}

		for _, sigma := range []float64{0, 0.01, 5.0} {
			call, err := BlackScholesPrice(europeanContract(optionmodels.Call, 100, 0), snapshot, sigma)
			require.NoError(t, err)
			assert.Equal(t, 5.0, call)

			put, err := BlackScholesPrice(europeanContract(optionmodels.Put, 100, 0), snapshot, sigma)
			require.NoError(t, err)
			assert.Equal(t, 0.0, put)
		}
	})

	t.Run("non-positive volatility collapses to discounted intrinsic value", func(t *testing.T) {
		snapshot := referenceSnapshot()

		call, err := BlackScholesPrice(europeanContract(optionmodels.Call, 100, 1), snapshot, 0)
		require.NoError(t, err)
		assert.InDelta(t, 100-100*math.Exp(-0.05), call, parityThreshold)

		put, err := BlackScholesPrice(europeanContract(optionmodels.Put, 100, 1), snapshot, 0)
		require.NoError(t, err)
		assert.Equal(t, 0.0, put)
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		var validationErr *optionmodels.InputValidationError

		_, err := BlackScholesPrice(europeanContract(optionmodels.Call, -100, 1), referenceSnapshot(), 0.2)
		require.Error(t, err)
		assert.ErrorAs(t, err, &validationErr)

		_, err = BlackScholesPrice(europeanContract(optionmodels.Call, 100, -0.5), referenceSnapshot(), 0.2)
		require.Error(t, err)
		assert.ErrorAs(t, err, &validationErr)

		_, err = BlackScholesPrice(europeanContract(optionmodels.Call, 100, 1), optionmodels.MarketSnapshot{Spot: 0}, 0.2)
		require.Error(t, err)
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestBlackScholesGreeks(t *testing.T) {
	t.Run("matches reference scenario", func(t *testing.T) {
		greeks, err := BlackScholesGreeks(europeanContract(optionmodels.Call, 100, 1), referenceSnapshot(), 0.2)
		require.NoError(t, err)

		assert.InDelta(t, 0.6368, greeks.Delta, 1e-3)
		assert.InDelta(t, 37.52, greeks.Vega, 1e-2)
		assert.Greater(t, greeks.Gamma, 0.0)
		assert.Less(t, greeks.ThetaPerDay, 0.0)
		assert.Greater(t, greeks.Rho, 0.0)
	})

	t.Run("put delta offsets call delta by the dividend factor", func(t *testing.T) {
		snapshot := optionmodels.MarketSnapshot{
			Spot:          100,
			RiskFreeRate:  0.05,
			DividendYield: 0.02,
		}

		call, err := BlackScholesGreeks(europeanContract(optionmodels.Call, 100, 1), snapshot, 0.2)
		require.NoError(t, err)

		put, err := BlackScholesGreeks(europeanContract(optionmodels.Put, 100, 1), snapshot, 0.2)
		require.NoError(t, err)

		assert.InDelta(t, math.Exp(-0.02), call.Delta-put.Delta, parityThreshold)
		assert.InDelta(t, call.Gamma, put.Gamma, parityThreshold)
		assert.InDelta(t, call.Vega, put.Vega, parityThreshold)
	})

	t.Run("degenerate inputs yield a zero bundle", func(t *testing.T) {
		greeks, err := BlackScholesGreeks(europeanContract(optionmodels.Call, 100, 0), referenceSnapshot(), 0.2)
		require.NoError(t, err)
		assert.Equal(t, optionmodels.Greeks{}, greeks)

		greeks, err = BlackScholesGreeks(europeanContract(optionmodels.Call, 100, 1), referenceSnapshot(), 0)
		require.NoError(t, err)
		assert.Equal(t, optionmodels.Greeks{}, greeks)
	})
}

// Numerical differentiation of the closed-form price must agree with the
// analytic expressions.
func TestBlackScholesGreeksAgainstFiniteDifferences(t *testing.T) {
	const relativeThreshold = 1e-4

	contract := europeanContract(optionmodels.Call, 100, 1)
	snapshot := referenceSnapshot()
	sigma := 0.2

	greeks, err := BlackScholesGreeks(contract, snapshot, sigma)
	require.NoError(t, err)

	t.Run("delta", func(t *testing.T) {
		bump := 1e-4 * snapshot.Spot

		up := snapshot
		up.Spot += bump
		priceUp, err := BlackScholesPrice(contract, up, sigma)
		require.NoError(t, err)

		down := snapshot
		down.Spot -= bump
		priceDown, err := BlackScholesPrice(contract, down, sigma)
		require.NoError(t, err)

		numerical := (priceUp - priceDown) / (2 * bump)
		assert.InEpsilon(t, greeks.Delta, numerical, relativeThreshold)
	})

	t.Run("vega", func(t *testing.T) {
		bump := 1e-4 * sigma

		priceUp, err := BlackScholesPrice(contract, snapshot, sigma+bump)
		require.NoError(t, err)

		priceDown, err := BlackScholesPrice(contract, snapshot, sigma-bump)
		require.NoError(t, err)

		numerical := (priceUp - priceDown) / (2 * bump)
		assert.InEpsilon(t, greeks.Vega, numerical, relativeThreshold)
	})
}
