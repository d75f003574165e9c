package optionmodels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionContractValidate(t *testing.T) {
	valid := OptionContract{Strike: 100, TimeToMaturity: 1, OptionType: Call, Style: European}

	t.Run("accepts a well-formed contract", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("a contract expiring today is still valid", func(t *testing.T) {
		expired := valid
		expired.TimeToMaturity = 0
		assert.NoError(t, expired.Validate())
	})

	testCases := []struct {
		name   string
		mutate func(*OptionContract)
		field  string
	}{
		{name: "rejects a non-positive strike", mutate: func(c *OptionContract) { c.Strike = 0 }, field: "strike"},
		{name: "rejects a negative maturity", mutate: func(c *OptionContract) { c.TimeToMaturity = -0.1 }, field: "timeToMaturity"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			contract := valid
			tc.mutate(&contract)

			err := contract.Validate()
			require.Error(t, err)

			var validationErr *InputValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}

	t.Run("rejects an unknown option type", func(t *testing.T) {
		contract := valid
		contract.OptionType = "straddle"
		assert.Error(t, contract.Validate())
	})

	t.Run("rejects an unknown exercise style", func(t *testing.T) {
		contract := valid
		contract.Style = "bermudan"
		assert.Error(t, contract.Validate())
	})
}

func TestOptionContractIntrinsicValue(t *testing.T) {
	call := OptionContract{Strike: 100, TimeToMaturity: 1, OptionType: Call, Style: European}
	put := OptionContract{Strike: 100, TimeToMaturity: 1, OptionType: Put, Style: European}

	assert.Equal(t, 10.0, call.IntrinsicValue(110))
	assert.Equal(t, 0.0, call.IntrinsicValue(90))
	assert.Equal(t, 10.0, put.IntrinsicValue(90))
	assert.Equal(t, 0.0, put.IntrinsicValue(110))
	assert.Equal(t, 0.0, call.IntrinsicValue(100))
}

func TestMarketSnapshotVolatilityEstimate(t *testing.T) {
	t.Run("prefers the market implied volatility", func(t *testing.T) {
		marketIV := 0.31
		snapshot := MarketSnapshot{Spot: 100, HistoricalVol: 0.2, MarketIV: &marketIV}
		assert.Equal(t, 0.31, snapshot.VolatilityEstimate())
	})

	t.Run("falls back to the historical estimate", func(t *testing.T) {
		snapshot := MarketSnapshot{Spot: 100, HistoricalVol: 0.2}
		assert.Equal(t, 0.2, snapshot.VolatilityEstimate())
	})
}

func TestMoneynessOf(t *testing.T) {
	const atmBand = 0.005

	testCases := []struct {
		name       string
		optionType OptionType
		spot       float64
		strike     float64
		expected   OptionMoneyness
	}{
		{name: "call above strike is in the money", optionType: Call, spot: 110, strike: 100, expected: OptionMoneynessInTheMoney},
		{name: "call below strike is out of the money", optionType: Call, spot: 90, strike: 100, expected: OptionMoneynessOutOfTheMoney},
		{name: "put below strike is in the money", optionType: Put, spot: 90, strike: 100, expected: OptionMoneynessInTheMoney},
		{name: "put above strike is out of the money", optionType: Put, spot: 110, strike: 100, expected: OptionMoneynessOutOfTheMoney},
		{name: "spot inside the band is at the money", optionType: Call, spot: 100.4, strike: 100, expected: OptionMoneynessAtTheMoney},
		{name: "band scales with the strike", optionType: Put, spot: 201, strike: 200, expected: OptionMoneynessAtTheMoney},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MoneynessOf(tc.optionType, tc.spot, tc.strike, atmBand))
		})
	}
}
