package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
)

// Indicator computes one or more index-aligned output series from a bar sequence.
// Compute is pure: the same bars and parameters always give the same result, and
// every output has exactly len(bars) elements.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config overrides parameters positionally. Fewer parameters than the indicator
	// accepts leave the rest unchanged, and a nil entry keeps that parameter.
	Config(params ...any) error
	// Params returns the effective parameters in Config order.
	Params() []any
	// Compute derives the output series for bars.
	Compute(bars []types.Bar) types.IndicatorResult
}

// Factory creates an Indicator with default parameters.
type Factory func() Indicator

func checkParamCount(params []any, usage string, max int) error {
	if len(params) > max {
		return errors.Newf(errors.ErrCodeInvalidParameter, "Config expects at most %d parameters: %s", max, usage)
	}

	return nil
}

// periodParam reads params[idx] as a positive integer period.
// Missing or nil entries return current.
func periodParam(params []any, idx int, name string, current int) (int, error) {
	if idx >= len(params) || params[idx] == nil {
		return current, nil
	}

	var period int

	switch p := params[idx].(type) {
	case int:
		period = p
	case int64:
		period = int(p)
	case float64:
		if p != math.Trunc(p) {
			return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid value for %s parameter, expected a whole number, got %v", name, p)
		}

		period = int(p)
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", name)
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, period)
	}

	return period, nil
}

// multiplierParam reads params[idx] as a positive float.
func multiplierParam(params []any, idx int, name string, current float64) (float64, error) {
	if idx >= len(params) || params[idx] == nil {
		return current, nil
	}

	var value float64

	switch p := params[idx].(type) {
	case float64:
		value = p
	case int:
		value = float64(p)
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected float64", name)
	}

	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.Newf(errors.ErrCodeInvalidMultiplier, "%s must be a positive number, got %f", name, value)
	}

	return value, nil
}

func singleOutput(name types.IndicatorType, values types.Series) types.IndicatorResult {
	return types.IndicatorResult{
		Indicator: name,
		Outputs:   []types.NamedSeries{{Name: types.OutputValue, Values: values}},
	}
}
