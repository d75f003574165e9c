package optionmodels

// MarketSnapshot carries the market inputs for a single pricing call. It is
// supplied by the data layer and treated as an immutable value.
//
// MarketIV is the volatility implied by an observed market price, when one
// was observed. It is nil when absent: consume it through
// VolatilityEstimate rather than reading the field directly.
type MarketSnapshot struct {
	Spot          float64
	RiskFreeRate  float64
	DividendYield float64
	HistoricalVol float64
	MarketIV      *float64
}

func (s MarketSnapshot) Validate() error {
	if s.Spot <= 0 {
		return &InputValidationError{Field: "spot", Value: s.Spot, Reason: "must be positive"}
	}

	return nil
}

// VolatilityEstimate returns the market implied volatility when one was
// observed, otherwise the historical estimate.
func (s MarketSnapshot) VolatilityEstimate() float64 {
	if s.MarketIV != nil {
		return *s.MarketIV
	}

	return s.HistoricalVol
}
