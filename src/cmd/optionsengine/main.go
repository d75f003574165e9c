package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/optionflow/options-engine/src/cmd/optionsengine/run"
	"github.com/optionflow/options-engine/src/utils"
)

var rootCmd = &cobra.Command{
	Use:   "optionsengine",
	Short: "Prices equity options, solves implied volatilities and builds volatility surfaces",
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Prices a single option and prints its Greeks",
	Run: func(cmd *cobra.Command, args []string) {
		marketArgs, err := marketArgsFromFlags(cmd)
		if err != nil {
			log.Fatalf("error reading flags: %v", err)
		}

		style, err := cmd.Flags().GetString("style")
		if err != nil {
			log.Fatalf("error getting style: %v", err)
		}

		model, err := cmd.Flags().GetString("model")
		if err != nil {
			log.Fatalf("error getting model: %v", err)
		}

		treeSteps, err := cmd.Flags().GetInt("tree-steps")
		if err != nil {
			log.Fatalf("error getting tree-steps: %v", err)
		}

		if err := run.RunPrice(run.PriceArgs{
			MarketArgs: marketArgs,
			Style:      style,
			Model:      model,
			TreeSteps:  treeSteps,
		}); err != nil {
			log.Fatalf("error running price: %v", err)
		}
	},
}

var ivCmd = &cobra.Command{
	Use:   "iv",
	Short: "Solves the implied volatility for an observed option price",
	Run: func(cmd *cobra.Command, args []string) {
		marketArgs, err := marketArgsFromFlags(cmd)
		if err != nil {
			log.Fatalf("error reading flags: %v", err)
		}

		observedPrice, err := cmd.Flags().GetFloat64("observed-price")
		if err != nil {
			log.Fatalf("error getting observed-price: %v", err)
		}

		model, err := cmd.Flags().GetString("model")
		if err != nil {
			log.Fatalf("error getting model: %v", err)
		}

		if err := run.RunIV(run.IVArgs{
			MarketArgs:    marketArgs,
			ObservedPrice: observedPrice,
			Model:         model,
		}); err != nil {
			log.Fatalf("error running iv: %v", err)
		}
	},
}

var surfaceCmd = &cobra.Command{
	Use:   "surface",
	Short: "Builds an implied volatility surface from an option chain CSV",
	Run: func(cmd *cobra.Command, args []string) {
		chainPath, err := cmd.Flags().GetString("chain")
		if err != nil {
			log.Fatalf("error getting chain: %v", err)
		}

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		spot, err := cmd.Flags().GetFloat64("spot")
		if err != nil {
			log.Fatalf("error getting spot: %v", err)
		}

		rate, err := cmd.Flags().GetFloat64("rate")
		if err != nil {
			log.Fatalf("error getting rate: %v", err)
		}

		dividendYield, err := cmd.Flags().GetFloat64("dividend-yield")
		if err != nil {
			log.Fatalf("error getting dividend-yield: %v", err)
		}

		historicalVol, err := cmd.Flags().GetFloat64("historical-vol")
		if err != nil {
			log.Fatalf("error getting historical-vol: %v", err)
		}

		if err := run.RunSurface(run.SurfaceArgs{
			ChainPath:     chainPath,
			ConfigPath:    configPath,
			Spot:          spot,
			Rate:          rate,
			DividendYield: dividendYield,
			HistoricalVol: historicalVol,
		}); err != nil {
			log.Fatalf("error running surface: %v", err)
		}
	},
}

func marketArgsFromFlags(cmd *cobra.Command) (run.MarketArgs, error) {
	var args run.MarketArgs
	var err error

	if args.Spot, err = cmd.Flags().GetFloat64("spot"); err != nil {
		return args, err
	}
	if args.Strike, err = cmd.Flags().GetFloat64("strike"); err != nil {
		return args, err
	}
	if args.Maturity, err = cmd.Flags().GetFloat64("maturity"); err != nil {
		return args, err
	}
	if args.Rate, err = cmd.Flags().GetFloat64("rate"); err != nil {
		return args, err
	}
	if args.DividendYield, err = cmd.Flags().GetFloat64("dividend-yield"); err != nil {
		return args, err
	}
	if args.Volatility, err = cmd.Flags().GetFloat64("volatility"); err != nil {
		return args, err
	}
	if args.OptionType, err = cmd.Flags().GetString("type"); err != nil {
		return args, err
	}

	return args, nil
}

func addMarketFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("spot", "S", 0, "Spot price of the underlying. This flag is required.")
	cmd.Flags().Float64P("strike", "K", 0, "Strike price of the contract. This flag is required.")
	cmd.Flags().Float64P("maturity", "T", 0, "Time to maturity in years, e.g. 0.5 for six months. This flag is required.")
	cmd.Flags().Float64P("rate", "r", 0.05, "Continuously compounded risk-free rate.")
	cmd.Flags().Float64P("dividend-yield", "q", 0, "Continuous dividend yield.")
	cmd.Flags().Float64P("volatility", "v", 0.2, "Annualized volatility estimate.")
	cmd.Flags().String("type", "call", "Option type: call or put.")

	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("maturity")
}

func main() {
	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Fatalf("error initializing environment variables: %v", err)
	}

	addMarketFlags(priceCmd)
	priceCmd.Flags().String("style", "european", "Exercise style: european or american.")
	priceCmd.Flags().String("model", "black_scholes", "Pricing model: black_scholes or binomial_tree.")
	priceCmd.Flags().Int("tree-steps", 0, "Binomial tree step count. Zero selects the default.")

	addMarketFlags(ivCmd)
	ivCmd.Flags().Float64P("observed-price", "p", 0, "Observed market price to invert. This flag is required.")
	ivCmd.Flags().String("model", "black_scholes", "Pricing model: black_scholes or binomial_tree.")
	ivCmd.MarkFlagRequired("observed-price")

	surfaceCmd.Flags().String("chain", "", "Path to the option chain CSV. This flag is required.")
	surfaceCmd.Flags().String("config", "", "Optional path to a surface builder YAML config.")
	surfaceCmd.Flags().Float64P("spot", "S", 0, "Spot price of the underlying. This flag is required.")
	surfaceCmd.Flags().Float64P("rate", "r", 0.05, "Continuously compounded risk-free rate.")
	surfaceCmd.Flags().Float64P("dividend-yield", "q", 0, "Continuous dividend yield.")
	surfaceCmd.Flags().Float64("historical-vol", 0.3, "Historical volatility used to seed the solver.")
	surfaceCmd.MarkFlagRequired("chain")
	surfaceCmd.MarkFlagRequired("spot")

	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(ivCmd)
	rootCmd.AddCommand(surfaceCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("error executing command: %v", err)
	}
}
