package optionmodels

// MarketQuote is one row of an option chain: a strike/maturity pair with
// either a quoted implied volatility, a price to invert, or both.
type MarketQuote struct {
	Symbol         string
	Strike         float64
	TimeToMaturity float64
	OptionType     OptionType
	Bid            float64
	Ask            float64
	LastPrice      float64
	ImpliedVol     *float64
}

// MidPrice returns the bid/ask midpoint when both sides are quoted,
// otherwise the last traded price.
func (q MarketQuote) MidPrice() float64 {
	if q.Bid > 0 && q.Ask > 0 {
		return (q.Bid + q.Ask) / 2
	}

	return q.LastPrice
}
