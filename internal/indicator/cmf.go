package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// CMF implements Chaikin Money Flow.
type CMF struct {
	period int
}

// NewCMF creates a new CMF indicator with default configuration.
func NewCMF() Indicator {
	return &CMF{
		period: 20,
	}
}

// Name returns the name of the indicator.
func (c *CMF) Name() types.IndicatorType {
	return types.IndicatorTypeCMF
}

// Config configures the CMF indicator. Expected parameters: period (int).
func (c *CMF) Config(params ...any) error {
	if err := checkParamCount(params, "period (int)", 1); err != nil {
		return err
	}

	period, err := periodParam(params, 0, "period", c.period)
	if err != nil {
		return err
	}

	c.period = period

	return nil
}

// Params returns [period].
func (c *CMF) Params() []any {
	return []any{c.period}
}

// Compute returns the CMF under the "value" output.
func (c *CMF) Compute(bars []types.Bar) types.IndicatorResult {
	cmf := ComputeCMF(
		types.Column(bars, string(types.BarFieldHigh)),
		types.Column(bars, string(types.BarFieldLow)),
		types.Column(bars, string(types.BarFieldClose)),
		types.Column(bars, string(types.BarFieldVolume)),
		c.period,
	)

	return singleOutput(c.Name(), cmf)
}

// MoneyFlowVolume returns ((close-low)-(high-close))/(high-low) * volume per bar.
// The multiplier is 0 when high == low. Bars missing any input are None.
func MoneyFlowVolume(highs, lows, closes, volumes types.Series) types.Series {
	out := types.NewSeries(len(closes))

	for i := range closes {
		h, okHigh := highs.At(i)
		l, okLow := lows.At(i)
		c, okClose := closes.At(i)
		v, okVolume := volumes.At(i)

		if !okHigh || !okLow || !okClose || !okVolume {
			continue
		}

		multiplier := 0.0
		if denom := h - l; denom != 0 {
			multiplier = ((c - l) - (h - c)) / denom
		}

		out[i] = optional.Some(multiplier * v)
	}

	return out
}

// ComputeCMF returns sum(money-flow volume) / sum(volume) over the trailing period.
// Bars missing any input contribute 0 to both sums; the result is None while
// i < period-1 and wherever the volume sum is 0.
func ComputeCMF(highs, lows, closes, volumes types.Series, period int) types.Series {
	out := types.NewSeries(len(closes))
	if period <= 0 {
		return out
	}

	mfv := MoneyFlowVolume(highs, lows, closes, volumes)

	for i := period - 1; i < len(closes); i++ {
		sumMFV := 0.0
		sumVolume := 0.0

		for j := i - period + 1; j <= i; j++ {
			if mfv[j].IsNone() {
				continue
			}

			sumMFV += mfv[j].Unwrap()
			sumVolume += volumes[j].Unwrap()
		}

		if sumVolume == 0 {
			continue
		}

		out[i] = optional.Some(sumMFV / sumVolume)
	}

	return out
}
