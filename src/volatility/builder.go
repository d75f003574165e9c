package volatility

import (
	"context"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/optionflow/options-engine/src/optionmodels"
)

// SkippedQuote records a quote the builder dropped, and why. Per-quote
// failures are recoverable: the build continues with the remaining quotes.
type SkippedQuote struct {
	Quote  optionmodels.MarketQuote
	Reason string
}

type buildStage string

const (
	stageCollecting    buildStage = "COLLECTING"
	stageValidating    buildStage = "VALIDATING"
	stageSolving       buildStage = "SOLVING"
	stageInterpolating buildStage = "INTERPOLATING"
	stageReady         buildStage = "READY"
	stageFailed        buildStage = "FAILED"
)

type solveResult struct {
	point   optionmodels.VolatilityPoint
	skipped *SkippedQuote
}

// BuildVolatilitySurface consumes a chain of market quotes, solves each for
// an implied volatility, and constructs a queryable surface together with a
// per-maturity smile for every slice with enough points.
//
// Quotes with a usable quoted implied volatility are taken at face value;
// the rest have their mid price inverted through the closed-form model.
// Invalid quotes and failed solves are dropped and recorded on the result,
// never fatal on their own; the build only fails when fewer than
// cfg.MinQuotePoints valid points remain.
//
// The per-quote solves are independent and run on cfg.Workers goroutines;
// ctx cancels a build between solves.
func BuildVolatilitySurface(ctx context.Context, snapshot optionmodels.MarketSnapshot, quotes []optionmodels.MarketQuote, cfg SurfaceConfig) (*VolatilitySurface, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("BuildVolatilitySurface: %w", err)
	}

	cfg = cfg.withDefaults()
	log.Debugf("BuildVolatilitySurface: %s: %d quotes", stageCollecting, len(quotes))

	log.Debugf("BuildVolatilitySurface: %s", stageValidating)
	candidates, skipped := filterQuotes(quotes)

	log.Debugf("BuildVolatilitySurface: %s: %d candidates on %d workers", stageSolving, len(candidates), cfg.Workers)
	points, solveSkipped, err := solveQuotes(ctx, snapshot, candidates, cfg)
	if err != nil {
		return nil, fmt.Errorf("BuildVolatilitySurface: %w", err)
	}
	skipped = append(skipped, solveSkipped...)

	for _, skip := range skipped {
		log.Warnf("BuildVolatilitySurface: skipped quote (strike=%v, maturity=%v): %s", skip.Quote.Strike, skip.Quote.TimeToMaturity, skip.Reason)
	}

	if len(points) < cfg.MinQuotePoints {
		log.Debugf("BuildVolatilitySurface: %s", stageFailed)
		return nil, &optionmodels.InsufficientDataError{Have: len(points), Need: cfg.MinQuotePoints}
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].TimeToMaturity != points[j].TimeToMaturity {
			return points[i].TimeToMaturity < points[j].TimeToMaturity
		}
		return points[i].Strike < points[j].Strike
	})

	log.Debugf("BuildVolatilitySurface: %s", stageInterpolating)
	smiles := fitSmiles(points, cfg)

	surface := newVolatilitySurface(points, skipped, smiles)
	log.Infof("BuildVolatilitySurface: %s: surface %s with %d points, %d smiles, %d skipped", stageReady, surface.ID, len(points), len(smiles), len(skipped))

	return surface, nil
}

func filterQuotes(quotes []optionmodels.MarketQuote) ([]optionmodels.MarketQuote, []SkippedQuote) {
	var candidates []optionmodels.MarketQuote
	var skipped []SkippedQuote

	for _, quote := range quotes {
		switch {
		case quote.Strike <= 0:
			skipped = append(skipped, SkippedQuote{Quote: quote, Reason: "non-positive strike"})
		case quote.TimeToMaturity <= 0:
			skipped = append(skipped, SkippedQuote{Quote: quote, Reason: "non-positive maturity"})
		case quote.ImpliedVol == nil && quote.MidPrice() <= 0:
			skipped = append(skipped, SkippedQuote{Quote: quote, Reason: "non-positive price"})
		case quote.OptionType.Validate() != nil:
			skipped = append(skipped, SkippedQuote{Quote: quote, Reason: fmt.Sprintf("invalid option type %q", quote.OptionType)})
		default:
			candidates = append(candidates, quote)
		}
	}

	return candidates, skipped
}

func solveQuotes(ctx context.Context, snapshot optionmodels.MarketSnapshot, candidates []optionmodels.MarketQuote, cfg SurfaceConfig) ([]optionmodels.VolatilityPoint, []SkippedQuote, error) {
	jobs := make(chan optionmodels.MarketQuote)
	results := make(chan solveResult, len(candidates))

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for quote := range jobs {
				results <- solveQuote(snapshot, quote, cfg)
			}
		}()
	}

	var cancelled error
	for _, quote := range candidates {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}

		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
		case jobs <- quote:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()
	close(results)

	if cancelled != nil {
		return nil, nil, fmt.Errorf("build cancelled: %w", cancelled)
	}

	var points []optionmodels.VolatilityPoint
	var skipped []SkippedQuote
	for result := range results {
		if result.skipped != nil {
			skipped = append(skipped, *result.skipped)
			continue
		}
		points = append(points, result.point)
	}

	return points, skipped, nil
}

func solveQuote(snapshot optionmodels.MarketSnapshot, quote optionmodels.MarketQuote, cfg SurfaceConfig) solveResult {
	iv, err := pointVolatility(snapshot, quote, cfg)
	if err != nil {
		return solveResult{skipped: &SkippedQuote{Quote: quote, Reason: err.Error()}}
	}

	if iv < cfg.IVMin || iv > cfg.IVMax {
		return solveResult{skipped: &SkippedQuote{Quote: quote, Reason: fmt.Sprintf("implied volatility %v outside configured bounds [%v, %v]", iv, cfg.IVMin, cfg.IVMax)}}
	}

	return solveResult{point: optionmodels.VolatilityPoint{
		Strike:         quote.Strike,
		TimeToMaturity: quote.TimeToMaturity,
		ImpliedVol:     iv,
		Moneyness:      optionmodels.MoneynessOf(quote.OptionType, snapshot.Spot, quote.Strike, cfg.ATMBandPercent),
	}}
}

func pointVolatility(snapshot optionmodels.MarketSnapshot, quote optionmodels.MarketQuote, cfg SurfaceConfig) (float64, error) {
	if quote.ImpliedVol != nil && *quote.ImpliedVol >= cfg.IVMin && *quote.ImpliedVol <= cfg.IVMax {
		return *quote.ImpliedVol, nil
	}

	contract := optionmodels.OptionContract{
		Strike:         quote.Strike,
		TimeToMaturity: quote.TimeToMaturity,
		OptionType:     quote.OptionType,
		Style:          optionmodels.European,
	}

	return ImpliedVolatility(contract, snapshot, quote.MidPrice(), optionmodels.BlackScholes)
}

func fitSmiles(points []optionmodels.VolatilityPoint, cfg SurfaceConfig) map[float64]*Smile {
	slices := make(map[float64][]optionmodels.VolatilityPoint)
	for _, point := range points {
		slices[point.TimeToMaturity] = append(slices[point.TimeToMaturity], point)
	}

	smiles := make(map[float64]*Smile)
	for maturity, slice := range slices {
		if len(slice) < cfg.MinSmilePoints {
			// Too thin for a spline. The raw points still feed the surface.
			log.Debugf("fitSmiles: maturity %v has %d points, need %d for a smile", maturity, len(slice), cfg.MinSmilePoints)
			continue
		}

		smile, err := NewSmile(maturity, slice)
		if err != nil {
			log.Warnf("fitSmiles: maturity %v: %v", maturity, err)
			continue
		}

		smiles[maturity] = smile
	}

	return smiles
}
