package optionmodels

// Greeks holds the price sensitivities of an option. ThetaPerDay is the
// decay per calendar day (annualized theta divided by 365); Vega and Rho
// are per whole unit of volatility and rate respectively.
type Greeks struct {
	Delta       float64
	Gamma       float64
	ThetaPerDay float64
	Vega        float64
	Rho         float64
}

// PricingResult is produced fresh on every pricing call.
type PricingResult struct {
	Price  float64
	Greeks Greeks
}
