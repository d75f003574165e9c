package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionflow/options-engine/src/optionmodels"
)

func americanContract(optionType optionmodels.OptionType, strike, maturity float64) optionmodels.OptionContract {
	return optionmodels.OptionContract{
		Strike:         strike,
		TimeToMaturity: maturity,
		OptionType:     optionType,
		Style:          optionmodels.American,
	}
}

func TestNewTreeParameters(t *testing.T) {
	t.Run("derives recombining factors", func(t *testing.T) {
		params, err := NewTreeParameters(0.2, 0.05, 0.02, 1, 100)
		require.NoError(t, err)

		assert.Equal(t, 100, params.StepCount)
		assert.InDelta(t, 0.01, params.DeltaT, 1e-12)
		assert.InDelta(t, 1.0, params.Up*params.Down, 1e-12)
		assert.GreaterOrEqual(t, params.RiskNeutralProb, 0.0)
		assert.LessOrEqual(t, params.RiskNeutralProb, 1.0)
	})

	t.Run("rejects probability outside the unit interval", func(t *testing.T) {
		// sigma too small relative to |r-q|*sqrt(dt)
		_, err := NewTreeParameters(0.001, 0.5, 0, 1, 10)
		require.Error(t, err)

		var treeErr *optionmodels.TreeParameterError
		assert.ErrorAs(t, err, &treeErr)
		assert.Greater(t, treeErr.Probability, 1.0)
	})

	t.Run("rejects a non-positive step count", func(t *testing.T) {
		_, err := NewTreeParameters(0.2, 0.05, 0, 1, 0)
		require.Error(t, err)

		var validationErr *optionmodels.InputValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestBinomialPrice(t *testing.T) {
	snapshot := referenceSnapshot()

	t.Run("european converges to the closed form", func(t *testing.T) {
		snapshot := optionmodels.MarketSnapshot{
			Spot:          100,
			RiskFreeRate:  0.05,
			DividendYield: 0.02,
		}
		contract := europeanContract(optionmodels.Call, 100, 1)

		closedForm, err := BlackScholesPrice(contract, snapshot, 0.2)
		require.NoError(t, err)

		treePrice, err := BinomialPrice(contract, snapshot, 0.2, 2000)
		require.NoError(t, err)

		assert.InDelta(t, closedForm, treePrice, 1e-3)
	})

	t.Run("hundred steps land within five cents of the reference call", func(t *testing.T) {
		price, err := BinomialPrice(europeanContract(optionmodels.Call, 100, 1), snapshot, 0.2, 100)
		require.NoError(t, err)
		assert.InDelta(t, 10.4506, price, 0.05)
	})

	t.Run("american put dominates the european put", func(t *testing.T) {
		european, err := BinomialPrice(europeanContract(optionmodels.Put, 100, 1), snapshot, 0.2, 500)
		require.NoError(t, err)

		american, err := BinomialPrice(americanContract(optionmodels.Put, 100, 1), snapshot, 0.2, 500)
		require.NoError(t, err)

		assert.Greater(t, american, european)
	})

	t.Run("american call equals european call without dividends", func(t *testing.T) {
		// No early-exercise incentive with q=0.
		european, err := BinomialPrice(europeanContract(optionmodels.Call, 100, 1), snapshot, 0.2, 500)
		require.NoError(t, err)

		american, err := BinomialPrice(americanContract(optionmodels.Call, 100, 1), snapshot, 0.2, 500)
		require.NoError(t, err)

		assert.InDelta(t, european, american, 1e-10)
	})

	t.Run("zero maturity returns intrinsic value", func(t *testing.T) {
		snapshot := optionmodels.MarketSnapshot{Spot: 93, RiskFreeRate: 0.05}

		price, err := BinomialPrice(americanContract(optionmodels.Put, 100, 0), snapshot, 0.2, 100)
		require.NoError(t, err)
		assert.Equal(t, 7.0, price)
	})

	t.Run("non-positive volatility degenerates to the riskless case", func(t *testing.T) {
		european, err := BinomialPrice(europeanContract(optionmodels.Call, 100, 1), snapshot, 0, 100)
		require.NoError(t, err)

		closedForm, err := BlackScholesPrice(europeanContract(optionmodels.Call, 100, 1), snapshot, 0)
		require.NoError(t, err)
		assert.Equal(t, closedForm, european)

		// An American put on a riskless path is worth at least immediate
		// exercise.
		american, err := BinomialPrice(americanContract(optionmodels.Put, 110, 1), snapshot, 0, 100)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, american, 10.0)
	})

	t.Run("propagates tree parameter failures", func(t *testing.T) {
		_, err := BinomialPrice(europeanContract(optionmodels.Call, 100, 1), optionmodels.MarketSnapshot{Spot: 100, RiskFreeRate: 0.5}, 0.001, 10)
		require.Error(t, err)

		var treeErr *optionmodels.TreeParameterError
		assert.ErrorAs(t, err, &treeErr)
	})
}
