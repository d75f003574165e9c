package optionmodels

import (
	"fmt"
	"math"
)

// OptionContract describes a single equity option. TimeToMaturity is an
// annualized year fraction: a contract expiring today has TimeToMaturity 0.
type OptionContract struct {
	Strike         float64
	TimeToMaturity float64
	OptionType     OptionType
	Style          ExerciseStyle
}

func (c OptionContract) Validate() error {
	if err := c.OptionType.Validate(); err != nil {
		return fmt.Errorf("OptionContract: Validate: %w", err)
	}

	if err := c.Style.Validate(); err != nil {
		return fmt.Errorf("OptionContract: Validate: %w", err)
	}

	if c.Strike <= 0 {
		return &InputValidationError{Field: "strike", Value: c.Strike, Reason: "must be positive"}
	}

	if c.TimeToMaturity < 0 {
		return &InputValidationError{Field: "timeToMaturity", Value: c.TimeToMaturity, Reason: "must not be negative"}
	}

	return nil
}

// IntrinsicValue is the exercise value of the contract at the given spot.
func (c OptionContract) IntrinsicValue(spot float64) float64 {
	if c.OptionType == Call {
		return math.Max(spot-c.Strike, 0)
	}

	return math.Max(c.Strike-spot, 0)
}
