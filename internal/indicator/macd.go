package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if err := checkParamCount(params, "fastPeriod (int), slowPeriod (int), signalPeriod (int)", 3); err != nil {
		return err
	}

	fast, err := periodParam(params, 0, "fastPeriod", m.fastPeriod)
	if err != nil {
		return err
	}

	slow, err := periodParam(params, 1, "slowPeriod", m.slowPeriod)
	if err != nil {
		return err
	}

	signal, err := periodParam(params, 2, "signalPeriod", m.signalPeriod)
	if err != nil {
		return err
	}

	m.fastPeriod = fast
	m.slowPeriod = slow
	m.signalPeriod = signal

	return nil
}

// Params returns [fastPeriod, slowPeriod, signalPeriod].
func (m *MACD) Params() []any {
	return []any{m.fastPeriod, m.slowPeriod, m.signalPeriod}
}

// Compute returns the "macd", "signal" and "hist" lines.
func (m *MACD) Compute(bars []types.Bar) types.IndicatorResult {
	macd, signal, hist := ComputeMACD(types.Column(bars, string(types.BarFieldClose)), m.fastPeriod, m.slowPeriod, m.signalPeriod)

	return types.IndicatorResult{
		Indicator: m.Name(),
		Outputs: []types.NamedSeries{
			{Name: types.OutputMACD, Values: macd},
			{Name: types.OutputSignal, Values: signal},
			{Name: types.OutputHist, Values: hist},
		},
	}
}

// ComputeMACD returns macd = EMA(fast) - EMA(slow), signal = EMA(macd, signalPeriod)
// and hist = macd - signal. A difference is None if either operand is None.
func ComputeMACD(values types.Series, fast, slow, signalPeriod int) (macd, signal, hist types.Series) {
	macd = subtract(ComputeEMA(values, fast), ComputeEMA(values, slow))
	signal = ComputeEMA(macd, signalPeriod)
	hist = subtract(macd, signal)

	return macd, signal, hist
}

func subtract(a, b types.Series) types.Series {
	out := types.NewSeries(len(a))

	for i := range a {
		x, okA := a.At(i)
		y, okB := b.At(i)

		if okA && okB {
			out[i] = optional.Some(x - y)
		}
	}

	return out
}
