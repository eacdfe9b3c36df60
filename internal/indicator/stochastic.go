package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// StochasticOscillator implements %K / %D.
type StochasticOscillator struct {
	kPeriod int
	dPeriod int
}

// NewStochasticOscillator creates a new stochastic oscillator with default configuration.
func NewStochasticOscillator() Indicator {
	return &StochasticOscillator{
		kPeriod: 14,
		dPeriod: 3,
	}
}

// Name returns the name of the indicator.
func (s *StochasticOscillator) Name() types.IndicatorType {
	return types.IndicatorTypeStochasticOscillator
}

// Config configures the oscillator. Expected parameters: kPeriod (int), dPeriod (int).
func (s *StochasticOscillator) Config(params ...any) error {
	if err := checkParamCount(params, "kPeriod (int), dPeriod (int)", 2); err != nil {
		return err
	}

	kPeriod, err := periodParam(params, 0, "kPeriod", s.kPeriod)
	if err != nil {
		return err
	}

	dPeriod, err := periodParam(params, 1, "dPeriod", s.dPeriod)
	if err != nil {
		return err
	}

	s.kPeriod = kPeriod
	s.dPeriod = dPeriod

	return nil
}

// Params returns [kPeriod, dPeriod].
func (s *StochasticOscillator) Params() []any {
	return []any{s.kPeriod, s.dPeriod}
}

// Compute returns the "k" and "d" lines.
func (s *StochasticOscillator) Compute(bars []types.Bar) types.IndicatorResult {
	k, d := ComputeStochastic(
		types.Column(bars, string(types.BarFieldHigh)),
		types.Column(bars, string(types.BarFieldLow)),
		types.Column(bars, string(types.BarFieldClose)),
		s.kPeriod,
		s.dPeriod,
	)

	return types.IndicatorResult{
		Indicator: s.Name(),
		Outputs: []types.NamedSeries{
			{Name: types.OutputK, Values: k},
			{Name: types.OutputD, Values: d},
		},
	}
}

// ComputeStochastic returns %K = (close - lowestLow) / (highestHigh - lowestLow) * 100
// over the trailing kPeriod window and %D = SMA(%K, dPeriod).
//
// Missing highs and lows of earlier bars are skipped when searching the window.
// %K is None when the current bar's close, high or low is missing, or when the
// close lies outside [lowestLow, highestHigh], so every defined %K is in [0, 100].
// %K is 0 when the window's range is 0.
func ComputeStochastic(highs, lows, closes types.Series, kPeriod, dPeriod int) (k, d types.Series) {
	k = types.NewSeries(len(closes))
	if kPeriod <= 0 {
		return k, ComputeSMA(k, dPeriod)
	}

	for i := kPeriod - 1; i < len(closes); i++ {
		c, ok := closes.At(i)
		_, hasHigh := highs.At(i)
		_, hasLow := lows.At(i)

		if !ok || !hasHigh || !hasLow {
			continue
		}

		highest := math.Inf(-1)
		lowest := math.Inf(1)

		for j := i - kPeriod + 1; j <= i; j++ {
			if h, ok := highs.At(j); ok {
				highest = math.Max(highest, h)
			}

			if l, ok := lows.At(j); ok {
				lowest = math.Min(lowest, l)
			}
		}

		if c < lowest || c > highest {
			continue
		}

		denom := highest - lowest
		if denom == 0 {
			k[i] = optional.Some(0.0)

			continue
		}

		k[i] = optional.Some((c - lowest) / denom * 100)
	}

	return k, ComputeSMA(k, dPeriod)
}
