package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// SMA indicator implements the Simple Moving Average of closes.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator with default configuration.
func NewSMA() Indicator {
	return &SMA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (s *SMA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// Config configures the SMA indicator. Expected parameters: period (int).
func (s *SMA) Config(params ...any) error {
	if err := checkParamCount(params, "period (int)", 1); err != nil {
		return err
	}

	period, err := periodParam(params, 0, "period", s.period)
	if err != nil {
		return err
	}

	s.period = period

	return nil
}

// Params returns [period].
func (s *SMA) Params() []any {
	return []any{s.period}
}

// Compute returns the SMA of closes under the "value" output.
func (s *SMA) Compute(bars []types.Bar) types.IndicatorResult {
	return singleOutput(s.Name(), ComputeSMA(types.Column(bars, string(types.BarFieldClose)), s.period))
}

// ComputeSMA returns the simple moving average of values over a trailing window.
//
// out[i] is None while i < period-1, and None whenever any value inside the
// window values[i-period+1..i] is None. The window sum is taken afresh at every
// index, so a missing value blanks exactly the period outputs whose windows
// contain it and never leaks into later positions.
func ComputeSMA(values types.Series, period int) types.Series {
	out := types.NewSeries(len(values))
	if period <= 0 {
		return out
	}

	// missing counts the None values currently inside the window
	missing := 0

	for i, v := range values {
		if v.IsNone() {
			missing++
		}

		if i >= period && values[i-period].IsNone() {
			missing--
		}

		if i < period-1 || missing > 0 {
			continue
		}

		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += values[j].Unwrap()
		}

		out[i] = optional.Some(sum / float64(period))
	}

	return out
}
