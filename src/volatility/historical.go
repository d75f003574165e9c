package volatility

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/optionflow/options-engine/src/optionmodels"
)

const tradingDaysPerYear = 252

// HistoricalVolatility annualizes the standard deviation of daily log
// returns over the supplied closing prices, oldest first.
func HistoricalVolatility(closes []float64) (float64, error) {
	if len(closes) < 3 {
		return 0, &optionmodels.InsufficientDataError{Have: len(closes), Need: 3}
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return 0, &optionmodels.InputValidationError{Field: "close", Value: closes[i], Reason: "closing prices must be positive"}
		}

		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}

	sd, err := stats.StandardDeviation(returns)
	if err != nil {
		return 0, fmt.Errorf("HistoricalVolatility: failed to calculate the standard deviation: %v", err)
	}

	return sd * math.Sqrt(tradingDaysPerYear), nil
}
