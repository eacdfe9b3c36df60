package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// ATR represents the Average True Range indicator.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator with default configuration.
func NewATR() Indicator {
	return &ATR{
		period: 14,
	}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Config configures the ATR indicator. Expected parameters: period (int).
func (a *ATR) Config(params ...any) error {
	if err := checkParamCount(params, "period (int)", 1); err != nil {
		return err
	}

	period, err := periodParam(params, 0, "period", a.period)
	if err != nil {
		return err
	}

	a.period = period

	return nil
}

// Params returns [period].
func (a *ATR) Params() []any {
	return []any{a.period}
}

// Compute returns the ATR under the "value" output.
func (a *ATR) Compute(bars []types.Bar) types.IndicatorResult {
	atr := ComputeATR(
		types.Column(bars, string(types.BarFieldHigh)),
		types.Column(bars, string(types.BarFieldLow)),
		types.Column(bars, string(types.BarFieldClose)),
		a.period,
	)

	return singleOutput(a.Name(), atr)
}

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|) per bar.
//
// The first bar has no previous close: its TR is high-low, and None when that
// range is zero, so a flat opening bar leaves no volatility reading. Later bars
// need both high and low; a missing previous close reduces TR to high-low.
func TrueRange(highs, lows, closes types.Series) types.Series {
	out := types.NewSeries(len(closes))

	for i := range closes {
		h, okHigh := highs.At(i)
		l, okLow := lows.At(i)

		if !okHigh || !okLow {
			continue
		}

		if i == 0 {
			if h-l != 0 {
				out[i] = optional.Some(h - l)
			}

			continue
		}

		tr := h - l
		if prevClose, ok := closes.At(i - 1); ok {
			tr = math.Max(tr, math.Max(math.Abs(h-prevClose), math.Abs(l-prevClose)))
		}

		out[i] = optional.Some(tr)
	}

	return out
}

// ComputeATR returns SMA(TrueRange, period).
func ComputeATR(highs, lows, closes types.Series, period int) types.Series {
	return ComputeSMA(TrueRange(highs, lows, closes), period)
}
