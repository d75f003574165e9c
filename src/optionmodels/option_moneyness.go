package optionmodels

import "math"

type OptionMoneyness string

const (
	OptionMoneynessInTheMoney    OptionMoneyness = "in_the_money"
	OptionMoneynessOutOfTheMoney OptionMoneyness = "out_of_the_money"
	OptionMoneynessAtTheMoney    OptionMoneyness = "at_the_money"
)

// MoneynessOf compares spot to strike. Strikes within atmBand (a fraction
// of the strike, e.g. 0.005 for half a percent) count as at the money.
func MoneynessOf(optionType OptionType, spot float64, strike float64, atmBand float64) OptionMoneyness {
	if math.Abs(spot-strike) <= atmBand*strike {
		return OptionMoneynessAtTheMoney
	}

	inTheMoney := spot > strike
	if optionType == Put {
		inTheMoney = spot < strike
	}

	if inTheMoney {
		return OptionMoneynessInTheMoney
	}

	return OptionMoneynessOutOfTheMoney
}
