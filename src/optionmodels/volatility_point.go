package optionmodels

// VolatilityPoint is one solved sample of the implied volatility surface.
type VolatilityPoint struct {
	Strike         float64
	TimeToMaturity float64
	ImpliedVol     float64
	Moneyness      OptionMoneyness
}
