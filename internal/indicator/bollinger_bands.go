package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	period int     // Number of periods for moving average
	stdDev float64 // Number of standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,  // Default period
		stdDev: 2.0, // Default standard deviation
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if err := checkParamCount(params, "period (int), stdDev (float64)", 2); err != nil {
		return err
	}

	period, err := periodParam(params, 0, "period", bb.period)
	if err != nil {
		return err
	}

	stdDev, err := multiplierParam(params, 1, "stdDev", bb.stdDev)
	if err != nil {
		return err
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

// Params returns [period, stdDev].
func (bb *BollingerBands) Params() []any {
	return []any{bb.period, bb.stdDev}
}

// Compute returns upper, mid and lower bands of closes.
func (bb *BollingerBands) Compute(bars []types.Bar) types.IndicatorResult {
	upper, mid, lower := ComputeBollingerBands(types.Column(bars, string(types.BarFieldClose)), bb.period, bb.stdDev)

	return types.IndicatorResult{
		Indicator: bb.Name(),
		Outputs: []types.NamedSeries{
			{Name: types.OutputUpper, Values: upper},
			{Name: types.OutputMid, Values: mid},
			{Name: types.OutputLower, Values: lower},
		},
	}
}

// ComputeBollingerBands returns mid = SMA(period) and mid ± mult·StdDev(period).
// A band is None wherever mid or the deviation is None.
func ComputeBollingerBands(values types.Series, period int, mult float64) (upper, mid, lower types.Series) {
	mid = ComputeSMA(values, period)
	sd := StdDev(values, period)

	upper = types.NewSeries(len(values))
	lower = types.NewSeries(len(values))

	for i := range values {
		m, ok := mid.At(i)
		if !ok {
			continue
		}

		d, ok := sd.At(i)
		if !ok {
			continue
		}

		upper[i] = optional.Some(m + mult*d)
		lower[i] = optional.Some(m - mult*d)
	}

	return upper, mid, lower
}
