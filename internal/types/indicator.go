package types

type IndicatorType string

const (
	IndicatorTypeSMA                  IndicatorType = "sma"
	IndicatorTypeEMA                  IndicatorType = "ema"
	IndicatorTypeBollingerBands       IndicatorType = "bollinger_bands"
	IndicatorTypeMACD                 IndicatorType = "macd"
	IndicatorTypeRSI                  IndicatorType = "rsi"
	IndicatorTypeStochasticOscillator IndicatorType = "stochastic_oscillator"
	IndicatorTypeATR                  IndicatorType = "atr"
	IndicatorTypeCMF                  IndicatorType = "cmf"
)

// AllIndicatorTypes lists the indicators in the order the dashboard draws them.
var AllIndicatorTypes = []IndicatorType{
	IndicatorTypeSMA,
	IndicatorTypeEMA,
	IndicatorTypeBollingerBands,
	IndicatorTypeMACD,
	IndicatorTypeRSI,
	IndicatorTypeStochasticOscillator,
	IndicatorTypeATR,
	IndicatorTypeCMF,
}

// Output names used in IndicatorResult.
const (
	OutputValue  = "value"
	OutputUpper  = "upper"
	OutputMid    = "mid"
	OutputLower  = "lower"
	OutputMACD   = "macd"
	OutputSignal = "signal"
	OutputHist   = "hist"
	OutputK      = "k"
	OutputD      = "d"
)

// NamedSeries is one output line of an indicator.
type NamedSeries struct {
	Name   string `json:"name"`
	Values Series `json:"values"`
}

// IndicatorResult holds the parallel series produced by one indicator computation,
// in a stable order (e.g. upper, mid, lower).
type IndicatorResult struct {
	Indicator IndicatorType `json:"indicator"`
	Outputs   []NamedSeries `json:"outputs"`
}

// Get returns the output with the given name.
func (r IndicatorResult) Get(name string) (Series, bool) {
	for _, o := range r.Outputs {
		if o.Name == name {
			return o.Values, true
		}
	}

	return nil, false
}

// Len returns the length of the outputs, which all share the input length.
func (r IndicatorResult) Len() int {
	if len(r.Outputs) == 0 {
		return 0
	}

	return len(r.Outputs[0].Values)
}

// ParseIndicatorType maps a name such as "rsi" to its IndicatorType.
func ParseIndicatorType(name string) (IndicatorType, bool) {
	for _, t := range AllIndicatorTypes {
		if string(t) == name {
			return t, true
		}
	}

	return "", false
}
