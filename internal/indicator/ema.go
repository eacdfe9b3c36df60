package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// EMA indicator implements the Exponential Moving Average of closes.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	if err := checkParamCount(params, "period (int)", 1); err != nil {
		return err
	}

	period, err := periodParam(params, 0, "period", e.period)
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

// Params returns [period].
func (e *EMA) Params() []any {
	return []any{e.period}
}

// Compute returns the EMA of closes under the "value" output.
func (e *EMA) Compute(bars []types.Bar) types.IndicatorResult {
	return singleOutput(e.Name(), ComputeEMA(types.Column(bars, string(types.BarFieldClose)), e.period))
}

// ComputeEMA returns the exponential moving average with alpha = 2/(period+1).
//
// The average is seeded with the first defined value (not an SMA of the first
// period values), so out[first] == values[first]. A None input yields None at
// that index and leaves the running average untouched for the next defined value.
func ComputeEMA(values types.Series, period int) types.Series {
	out := types.NewSeries(len(values))
	if period <= 0 {
		return out
	}

	alpha := 2.0 / float64(period+1)
	ema := optional.None[float64]()

	for i, v := range values {
		if v.IsNone() {
			continue
		}

		if ema.IsNone() {
			ema = optional.Some(v.Unwrap())
		} else {
			ema = optional.Some(v.Unwrap()*alpha + ema.Unwrap()*(1-alpha))
		}

		out[i] = ema
	}

	return out
}
