package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/optionflow/options-engine/src/marketdata"
	"github.com/optionflow/options-engine/src/optionmodels"
	"github.com/optionflow/options-engine/src/pricing"
	"github.com/optionflow/options-engine/src/volatility"
)

var printer = message.NewPrinter(language.English)

type MarketArgs struct {
	Spot          float64
	Strike        float64
	Maturity      float64
	Rate          float64
	DividendYield float64
	Volatility    float64
	OptionType    string
}

func (a MarketArgs) contract(style optionmodels.ExerciseStyle) optionmodels.OptionContract {
	return optionmodels.OptionContract{
		Strike:         a.Strike,
		TimeToMaturity: a.Maturity,
		OptionType:     optionmodels.OptionType(a.OptionType),
		Style:          style,
	}
}

func (a MarketArgs) snapshot() optionmodels.MarketSnapshot {
	return optionmodels.MarketSnapshot{
		Spot:          a.Spot,
		RiskFreeRate:  a.Rate,
		DividendYield: a.DividendYield,
		HistoricalVol: a.Volatility,
	}
}

type PriceArgs struct {
	MarketArgs
	Style     string
	Model     string
	TreeSteps int
}

func RunPrice(args PriceArgs) error {
	result, err := pricing.PriceAndGreeks(
		args.contract(optionmodels.ExerciseStyle(args.Style)),
		args.snapshot(),
		optionmodels.PricingModel(args.Model),
		args.TreeSteps,
	)
	if err != nil {
		return fmt.Errorf("RunPrice: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Price", "Delta", "Gamma", "Theta/Day", "Vega", "Rho"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.Append([]string{
		printer.Sprintf("%.4f", result.Price),
		printer.Sprintf("%.4f", result.Greeks.Delta),
		printer.Sprintf("%.6f", result.Greeks.Gamma),
		printer.Sprintf("%.4f", result.Greeks.ThetaPerDay),
		printer.Sprintf("%.4f", result.Greeks.Vega),
		printer.Sprintf("%.4f", result.Greeks.Rho),
	})
	table.Render()

	return nil
}

type IVArgs struct {
	MarketArgs
	ObservedPrice float64
	Model         string
}

func RunIV(args IVArgs) error {
	iv, err := volatility.ImpliedVolatility(
		args.contract(optionmodels.European),
		args.snapshot(),
		args.ObservedPrice,
		optionmodels.PricingModel(args.Model),
	)
	if err != nil {
		return fmt.Errorf("RunIV: %w", err)
	}

	printer.Printf("implied volatility: %.6f (%.2f%%)\n", iv, iv*100)

	return nil
}

type SurfaceArgs struct {
	ChainPath     string
	ConfigPath    string
	Spot          float64
	Rate          float64
	DividendYield float64
	HistoricalVol float64
}

func RunSurface(args SurfaceArgs) error {
	cfg := volatility.DefaultSurfaceConfig()
	if args.ConfigPath != "" {
		loaded, err := volatility.LoadSurfaceConfig(args.ConfigPath)
		if err != nil {
			return fmt.Errorf("RunSurface: %w", err)
		}
		cfg = loaded
	}

	quotes, err := marketdata.LoadOptionChainCSV(args.ChainPath, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("RunSurface: %w", err)
	}

	snapshot := optionmodels.MarketSnapshot{
		Spot:          args.Spot,
		RiskFreeRate:  args.Rate,
		DividendYield: args.DividendYield,
		HistoricalVol: args.HistoricalVol,
	}

	surface, err := volatility.BuildVolatilitySurface(context.Background(), snapshot, quotes, cfg)
	if err != nil {
		var insufficient *optionmodels.InsufficientDataError
		if errors.As(err, &insufficient) {
			return fmt.Errorf("RunSurface: not enough valid quotes to build a surface: %w", err)
		}
		return fmt.Errorf("RunSurface: %w", err)
	}

	log.Infof("built surface %s from %d points (%d quotes skipped)", surface.ID, len(surface.Points), len(surface.Skipped))

	for _, maturity := range surface.Maturities() {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Strike", "IV", "Moneyness"})
		table.SetAlignment(tablewriter.ALIGN_RIGHT)

		printer.Printf("maturity %.4f years:\n", maturity)
		for _, point := range surface.Points {
			if point.TimeToMaturity != maturity {
				continue
			}
			table.Append([]string{
				printer.Sprintf("%.2f", point.Strike),
				printer.Sprintf("%.2f%%", point.ImpliedVol*100),
				string(point.Moneyness),
			})
		}
		table.Render()

		if _, ok := surface.Smile(maturity); !ok {
			printer.Printf("  (too few points for a smile at this maturity)\n")
		}
	}

	for _, skip := range surface.Skipped {
		log.Warnf("skipped quote (strike=%v, maturity=%v): %s", skip.Quote.Strike, skip.Quote.TimeToMaturity, skip.Reason)
	}

	return nil
}
