package marketdata

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/optionflow/options-engine/src/optionmodels"
)

const hoursPerYear = 24 * 365

type optionChainCsvRowDTO struct {
	Symbol         string  `csv:"Symbol"`
	ExpirationDate string  `csv:"Expiration Date"`
	Strike         float64 `csv:"Strike"`
	OptionType     string  `csv:"Option Type"`
	Bid            float64 `csv:"Bid"`
	Ask            float64 `csv:"Ask"`
	LastPrice      float64 `csv:"Last Price"`
	ImpliedVol     string  `csv:"Implied Volatility"`
}

// LoadOptionChainCSV reads an option chain exported as CSV and converts it
// to market quotes, with maturities as year fractions from valuationDate.
// Rows that fail to convert are skipped with a warning; structural failures
// (missing file, bad header) are errors.
func LoadOptionChainCSV(path string, valuationDate time.Time) ([]optionmodels.MarketQuote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadOptionChainCSV: failed to open %s: %w", path, err)
	}
	defer f.Close()

	var rows []*optionChainCsvRowDTO
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("LoadOptionChainCSV: failed to parse %s: %w", path, err)
	}

	quotes := make([]optionmodels.MarketQuote, 0, len(rows))
	for i, row := range rows {
		quote, err := row.toMarketQuote(valuationDate)
		if err != nil {
			log.Warnf("LoadOptionChainCSV: skipping row %d: %v", i+1, err)
			continue
		}

		quotes = append(quotes, quote)
	}

	return quotes, nil
}

func (row *optionChainCsvRowDTO) toMarketQuote(valuationDate time.Time) (optionmodels.MarketQuote, error) {
	expiration, err := time.Parse("2006-01-02", row.ExpirationDate)
	if err != nil {
		return optionmodels.MarketQuote{}, fmt.Errorf("invalid expiration date %q: %v", row.ExpirationDate, err)
	}

	optionType := optionmodels.OptionType(row.OptionType)
	if err := optionType.Validate(); err != nil {
		return optionmodels.MarketQuote{}, err
	}

	quote := optionmodels.MarketQuote{
		Symbol:         row.Symbol,
		Strike:         row.Strike,
		TimeToMaturity: expiration.Sub(valuationDate).Hours() / hoursPerYear,
		OptionType:     optionType,
		Bid:            row.Bid,
		Ask:            row.Ask,
		LastPrice:      row.LastPrice,
	}

	if row.ImpliedVol != "" {
		iv, err := strconv.ParseFloat(row.ImpliedVol, 64)
		if err != nil {
			return optionmodels.MarketQuote{}, fmt.Errorf("invalid implied volatility %q: %v", row.ImpliedVol, err)
		}

		quote.ImpliedVol = &iv
	}

	return quote, nil
}
