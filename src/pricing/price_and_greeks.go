package pricing

import (
	"fmt"

	"github.com/optionflow/options-engine/src/optionmodels"
)

// PriceAndGreeks prices the contract under the requested model and attaches
// the matching sensitivity bundle: analytic Greeks for the closed-form
// model, bump-and-reprice for the tree. treeSteps is only consulted for the
// tree model; zero selects DefaultTreeSteps.
//
// The closed-form model cannot value early exercise, so American contracts
// must use the binomial tree.
func PriceAndGreeks(contract optionmodels.OptionContract, snapshot optionmodels.MarketSnapshot, model optionmodels.PricingModel, treeSteps int) (optionmodels.PricingResult, error) {
	if err := model.Validate(); err != nil {
		return optionmodels.PricingResult{}, fmt.Errorf("PriceAndGreeks: %w", err)
	}

	sigma := snapshot.VolatilityEstimate()

	switch model {
	case optionmodels.BlackScholes:
		if contract.Style == optionmodels.American {
			return optionmodels.PricingResult{}, fmt.Errorf("PriceAndGreeks: american exercise requires the %s model", optionmodels.BinomialTree)
		}

		price, err := BlackScholesPrice(contract, snapshot, sigma)
		if err != nil {
			return optionmodels.PricingResult{}, fmt.Errorf("PriceAndGreeks: %w", err)
		}

		greeks, err := BlackScholesGreeks(contract, snapshot, sigma)
		if err != nil {
			return optionmodels.PricingResult{}, fmt.Errorf("PriceAndGreeks: %w", err)
		}

		return optionmodels.PricingResult{Price: price, Greeks: greeks}, nil

	default:
		if treeSteps <= 0 {
			treeSteps = DefaultTreeSteps
		}

		price, err := BinomialPrice(contract, snapshot, sigma, treeSteps)
		if err != nil {
			return optionmodels.PricingResult{}, fmt.Errorf("PriceAndGreeks: %w", err)
		}

		greeks, err := BinomialGreeks(contract, snapshot, sigma, treeSteps)
		if err != nil {
			return optionmodels.PricingResult{}, fmt.Errorf("PriceAndGreeks: %w", err)
		}

		return optionmodels.PricingResult{Price: price, Greeks: greeks}, nil
	}
}
