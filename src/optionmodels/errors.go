package optionmodels

import "fmt"

// InputValidationError reports a domain constraint violated by a caller
// supplied value (negative strike, negative maturity, non-positive spot).
type InputValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// TreeParameterError reports a risk-neutral probability outside [0, 1].
// This happens when sigma is small relative to |r-q|*sqrt(dt) and is a
// known limitation of the CRR parameterization; it is never clamped.
type TreeParameterError struct {
	Probability float64
}

func (e *TreeParameterError) Error() string {
	return fmt.Sprintf("risk-neutral probability %v outside [0, 1]: sigma too small relative to |r-q|*sqrt(dt)", e.Probability)
}

// NumericalDivergenceError reports that a base pricing call failed before
// a dependent computation (a Greek, a solver iteration) could proceed.
type NumericalDivergenceError struct {
	Op    string
	Cause error
}

func (e *NumericalDivergenceError) Error() string {
	return fmt.Sprintf("%s failed to price: %v", e.Op, e.Cause)
}

func (e *NumericalDivergenceError) Unwrap() error {
	return e.Cause
}

// ArbitrageBoundViolation reports a market price outside the theoretical
// no-arbitrage band, for which no implied volatility exists.
type ArbitrageBoundViolation struct {
	Price float64
	Lower float64
	Upper float64
}

func (e *ArbitrageBoundViolation) Error() string {
	return fmt.Sprintf("market price %v outside no-arbitrage bounds (%v, %v)", e.Price, e.Lower, e.Upper)
}

// MaxIterationsExceeded reports that the implied volatility solver spent
// its iteration budget without converging.
type MaxIterationsExceeded struct {
	Iterations int
}

func (e *MaxIterationsExceeded) Error() string {
	return fmt.Sprintf("solver did not converge within %d iterations", e.Iterations)
}

// InsufficientDataError reports too few valid points for a requested
// interpolation or estimate.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: have %d points, need at least %d", e.Have, e.Need)
}

// ExtrapolationWarning is non-fatal: the evaluation point lies outside the
// convex hull of the surface samples and the returned value was clamped to
// the nearest sample.
type ExtrapolationWarning struct {
	Strike   float64
	Maturity float64
}

func (e *ExtrapolationWarning) Error() string {
	return fmt.Sprintf("point (strike=%v, maturity=%v) outside sampled surface: value clamped to nearest sample", e.Strike, e.Maturity)
}
