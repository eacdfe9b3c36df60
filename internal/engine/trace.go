package engine

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// Axis names the y axis a trace is plotted against.
type Axis string

const (
	// AxisOscillator is the left axis shared by oscillators and MACD.
	AxisOscillator Axis = "y"
	// AxisPrice is the right axis used by close and price overlays.
	AxisPrice Axis = "y1"
)

// Kind is how a trace is drawn.
type Kind string

const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

// Trace is one drawable series of a chart.
type Trace struct {
	Label     string              `json:"label"`
	Indicator types.IndicatorType `json:"indicator,omitempty"`
	Output    string              `json:"output,omitempty"`
	Axis      Axis                `json:"axis"`
	Kind      Kind                `json:"kind"`
	Dashed    bool                `json:"dashed"`
	Color     string              `json:"color"`
	Values    types.Series        `json:"values"`
}

// ChartData is a fully rendered chart: a shared date axis and its traces.
// Every trace has exactly len(Dates) values.
type ChartData struct {
	Dates      []time.Time     `json:"dates"`
	TimeRange  types.TimeRange `json:"time_range"`
	Generation string          `json:"generation"`
	Traces     []Trace         `json:"traces"`
}

// Trace returns the first trace with the given label.
func (c ChartData) Trace(label string) (Trace, bool) {
	for _, t := range c.Traces {
		if t.Label == label {
			return t, true
		}
	}

	return Trace{}, false
}

type traceStyle struct {
	output string
	label  func(params []any) string
	axis   Axis
	kind   Kind
	dashed bool
	color  string
}

func fixedLabel(label string) func([]any) string {
	return func([]any) string { return label }
}

// periodLabel renders "NAME(period)" from the first effective parameter.
func periodLabel(name string) func([]any) string {
	return func(params []any) string {
		if len(params) == 0 {
			return name
		}

		return fmt.Sprintf("%s(%v)", name, params[0])
	}
}

const (
	closeColor        = "#111827"
	featureCloseColor = "#FF6B6B"
	featureColor      = "#2196F3"
)

var traceStyles = map[types.IndicatorType][]traceStyle{
	types.IndicatorTypeSMA: {
		{output: types.OutputValue, label: periodLabel("SMA"), axis: AxisPrice, kind: KindLine, color: "#FF8C00"},
	},
	types.IndicatorTypeEMA: {
		{output: types.OutputValue, label: periodLabel("EMA"), axis: AxisPrice, kind: KindLine, color: "#00A86B"},
	},
	types.IndicatorTypeBollingerBands: {
		{output: types.OutputUpper, label: fixedLabel("BBANDS Upper"), axis: AxisPrice, kind: KindLine, dashed: true, color: "#8A2BE2"},
		{output: types.OutputMid, label: fixedLabel("BBANDS Mid"), axis: AxisPrice, kind: KindLine, color: "#8A2BE2"},
		{output: types.OutputLower, label: fixedLabel("BBANDS Lower"), axis: AxisPrice, kind: KindLine, dashed: true, color: "#8A2BE2"},
	},
	types.IndicatorTypeMACD: {
		{output: types.OutputMACD, label: fixedLabel("MACD"), axis: AxisOscillator, kind: KindLine, color: "#FF1493"},
		{output: types.OutputSignal, label: fixedLabel("Signal"), axis: AxisOscillator, kind: KindLine, color: "#1E90FF"},
		{output: types.OutputHist, label: fixedLabel("MACD Hist"), axis: AxisOscillator, kind: KindBar, color: "rgba(255,20,147,0.3)"},
	},
	types.IndicatorTypeRSI: {
		{output: types.OutputValue, label: periodLabel("RSI"), axis: AxisOscillator, kind: KindLine, color: "#FF4500"},
	},
	types.IndicatorTypeStochasticOscillator: {
		{output: types.OutputK, label: fixedLabel("%K"), axis: AxisOscillator, kind: KindLine, color: "#32CD32"},
		{output: types.OutputD, label: fixedLabel("%D"), axis: AxisOscillator, kind: KindLine, color: "#FFD700"},
	},
	types.IndicatorTypeATR: {
		{output: types.OutputValue, label: periodLabel("ATR"), axis: AxisOscillator, kind: KindLine, color: "#708090"},
	},
	types.IndicatorTypeCMF: {
		{output: types.OutputValue, label: periodLabel("CMF"), axis: AxisOscillator, kind: KindLine, color: "#20B2AA"},
	},
}

// tracesFor maps an indicator result to its traces in output order.
func tracesFor(result types.IndicatorResult, params []any) []Trace {
	styles := traceStyles[result.Indicator]
	traces := make([]Trace, 0, len(styles))

	for _, style := range styles {
		values, ok := result.Get(style.output)
		if !ok {
			continue
		}

		traces = append(traces, Trace{
			Label:     style.label(params),
			Indicator: result.Indicator,
			Output:    style.output,
			Axis:      style.axis,
			Kind:      style.kind,
			Dashed:    style.dashed,
			Color:     style.color,
			Values:    values,
		})
	}

	return traces
}
