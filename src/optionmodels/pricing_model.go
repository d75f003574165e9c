package optionmodels

import "fmt"

type PricingModel string

const (
	BlackScholes PricingModel = "black_scholes"
	BinomialTree PricingModel = "binomial_tree"
)

func (m PricingModel) Validate() error {
	if m != BlackScholes && m != BinomialTree {
		return fmt.Errorf("PricingModel: Validate: invalid pricing model: %s", m)
	}

	return nil
}
