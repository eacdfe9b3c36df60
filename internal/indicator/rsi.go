package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// RSI indicator implements the Relative Strength Index of closes.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period: 14, // Default period
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if err := checkParamCount(params, "period (int)", 1); err != nil {
		return err
	}

	period, err := periodParam(params, 0, "period", r.period)
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

// Params returns [period].
func (r *RSI) Params() []any {
	return []any{r.period}
}

// Compute returns the RSI of closes under the "value" output.
func (r *RSI) Compute(bars []types.Bar) types.IndicatorResult {
	return singleOutput(r.Name(), ComputeRSI(types.Column(bars, string(types.BarFieldClose)), r.period))
}

// ComputeRSI returns the RSI using a rolling simple average of the last period
// gains and losses. Every index recomputes the averages from its own window of
// deltas; there is no Wilder smoothing carried between positions.
//
// out[i] is None for i < period, and None when any close touched by the window's
// deltas is None. RSI is 100 when the average loss is 0.
func ComputeRSI(values types.Series, period int) types.Series {
	out := types.NewSeries(len(values))
	if period <= 0 {
		return out
	}

	for i := period; i < len(values); i++ {
		gain, loss, ok := windowGainLoss(values, i-period+1, i)
		if !ok {
			continue
		}

		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)

		if avgLoss == 0 {
			out[i] = optional.Some(100.0)

			continue
		}

		out[i] = optional.Some(100 - 100/(1+avgGain/avgLoss))
	}

	return out
}

// windowGainLoss sums positive and negative deltas values[j]-values[j-1] for j in [from, to].
func windowGainLoss(values types.Series, from, to int) (gain, loss float64, ok bool) {
	for j := from; j <= to; j++ {
		cur, okCur := values.At(j)
		prev, okPrev := values.At(j - 1)

		if !okCur || !okPrev {
			return 0, 0, false
		}

		change := cur - prev
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}

	return gain, loss, true
}
