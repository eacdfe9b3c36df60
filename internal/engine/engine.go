package engine

import (
	"time"

	"github.com/rxtech-lab/argo-dashboard/internal/dataset"
	"github.com/rxtech-lab/argo-dashboard/internal/engine/cache"
	"github.com/rxtech-lab/argo-dashboard/internal/indicator"
	"github.com/rxtech-lab/argo-dashboard/internal/logger"
	"github.com/rxtech-lab/argo-dashboard/internal/metrics"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"go.uber.org/zap"
)

// RenderRequest is the caller-owned chart state: which range to show, which
// indicators are toggled on, and any parameter overrides per indicator.
type RenderRequest struct {
	TimeRange types.TimeRange
	Visible   []types.IndicatorType
	Params    map[types.IndicatorType][]any
}

// Engine turns a dataset snapshot and a RenderRequest into chart traces.
type Engine struct {
	symbol   string
	registry indicator.IndicatorRegistry
	cache    cache.Cache
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewEngine creates an engine. resultCache and m may be nil, in which case
// results are always recomputed and nothing is measured.
func NewEngine(symbol string, registry indicator.IndicatorRegistry, resultCache cache.Cache, m *metrics.Metrics, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{
		symbol:   symbol,
		registry: registry,
		cache:    resultCache,
		metrics:  m,
		log:      log,
	}
}

// Symbol returns the ticker the engine labels its charts with.
func (e *Engine) Symbol() string {
	return e.symbol
}

// Render filters the snapshot to req.TimeRange and builds the price chart.
// The close trace always comes first, followed by the traces of each visible
// indicator in draw order. Unknown indicators and invalid parameters are errors;
// an unknown range falls back to all bars.
func (e *Engine) Render(snapshot dataset.Snapshot, req RenderRequest) (ChartData, error) {
	if snapshot.Generation == "" {
		return ChartData{}, errors.New(errors.ErrCodeDatasetEmpty, "no dataset loaded")
	}

	visible := make(map[types.IndicatorType]bool, len(req.Visible))

	for _, name := range req.Visible {
		if _, ok := traceStyles[name]; !ok {
			return ChartData{}, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", name)
		}

		visible[name] = true
	}

	timeRange := NormalizeRange(req.TimeRange)
	if timeRange != req.TimeRange {
		e.log.Debug("Unknown time range, showing all bars", zap.String("range", string(req.TimeRange)))
	}

	bars := FilterByRange(snapshot.Bars, timeRange)

	chart := ChartData{
		Dates:      types.Dates(bars),
		TimeRange:  timeRange,
		Generation: snapshot.Generation,
		Traces: []Trace{{
			Label:  e.symbol + " Close",
			Output: string(types.BarFieldClose),
			Axis:   AxisPrice,
			Kind:   KindLine,
			Color:  closeColor,
			Values: types.Column(bars, string(types.BarFieldClose)),
		}},
	}

	for _, name := range types.AllIndicatorTypes {
		if !visible[name] {
			continue
		}

		result, params, err := e.compute(snapshot.Generation, timeRange, name, bars, req.Params[name])
		if err != nil {
			return ChartData{}, err
		}

		chart.Traces = append(chart.Traces, tracesFor(result, params)...)
	}

	return chart, nil
}

// Compute runs a single indicator over the snapshot filtered to timeRange and
// returns its result together with the effective parameters.
func (e *Engine) Compute(snapshot dataset.Snapshot, timeRange types.TimeRange, name types.IndicatorType, params []any) (types.IndicatorResult, []any, error) {
	if snapshot.Generation == "" {
		return types.IndicatorResult{}, nil, errors.New(errors.ErrCodeDatasetEmpty, "no dataset loaded")
	}

	timeRange = NormalizeRange(timeRange)

	return e.compute(snapshot.Generation, timeRange, name, FilterByRange(snapshot.Bars, timeRange), params)
}

func (e *Engine) compute(generation string, timeRange types.TimeRange, name types.IndicatorType, bars []types.Bar, params []any) (types.IndicatorResult, []any, error) {
	ind, err := e.registry.GetIndicator(name)
	if err != nil {
		return types.IndicatorResult{}, nil, err
	}

	if err := ind.Config(params...); err != nil {
		return types.IndicatorResult{}, nil, err
	}

	effective := ind.Params()
	key := cache.NewKey(generation, timeRange, name, effective)

	if e.cache != nil {
		if result, ok := e.cache.Get(key); ok {
			if e.metrics != nil {
				e.metrics.CacheHits.Inc()
			}

			return result, effective, nil
		}

		if e.metrics != nil {
			e.metrics.CacheMisses.Inc()
		}
	}

	start := time.Now()
	result := ind.Compute(bars)
	elapsed := time.Since(start)

	if e.metrics != nil {
		e.metrics.IndicatorComputeDur.WithLabelValues(string(name)).Observe(elapsed.Seconds())
	}

	e.log.Debug("Computed indicator",
		zap.String("indicator", string(name)),
		zap.Any("params", effective),
		zap.Int("bars", len(bars)),
		zap.Duration("elapsed", elapsed),
	)

	if e.cache != nil {
		e.cache.Set(key, result)
	}

	return result, effective, nil
}

// Features lists the extra columns available for the feature chart.
func (e *Engine) Features(snapshot dataset.Snapshot) []string {
	return types.ExtraKeys(snapshot.Bars)
}

// Feature builds the dual-axis overlay chart of close (price axis) against the
// named column (left axis). Only bars with a date and a defined close are used.
func (e *Engine) Feature(snapshot dataset.Snapshot, timeRange types.TimeRange, key string) (ChartData, error) {
	if snapshot.Generation == "" {
		return ChartData{}, errors.New(errors.ErrCodeDatasetEmpty, "no dataset loaded")
	}

	if key == "" {
		return ChartData{}, errors.New(errors.ErrCodeMissingParameter, "feature key is required")
	}

	if key == string(types.BarFieldClose) || !types.HasField(snapshot.Bars, key) {
		return ChartData{}, errors.Newf(errors.ErrCodeUnknownField, "unknown feature %s", key)
	}

	timeRange = NormalizeRange(timeRange)
	filtered := FilterByRange(snapshot.Bars, timeRange)

	bars := make([]types.Bar, 0, len(filtered))

	for _, bar := range filtered {
		if !bar.Date.IsZero() && bar.Close.IsSome() {
			bars = append(bars, bar)
		}
	}

	return ChartData{
		Dates:      types.Dates(bars),
		TimeRange:  timeRange,
		Generation: snapshot.Generation,
		Traces: []Trace{
			{
				Label:  e.symbol + " Close",
				Output: string(types.BarFieldClose),
				Axis:   AxisPrice,
				Kind:   KindLine,
				Color:  featureCloseColor,
				Values: types.Column(bars, string(types.BarFieldClose)),
			},
			{
				Label:  key,
				Output: key,
				Axis:   AxisOscillator,
				Kind:   KindLine,
				Color:  featureColor,
				Values: types.Column(bars, key),
			},
		},
	}, nil
}

// Indicators lists the registered indicators in draw order.
func (e *Engine) Indicators() []types.IndicatorType {
	registered := make(map[types.IndicatorType]bool)
	for _, name := range e.registry.ListIndicators() {
		registered[name] = true
	}

	names := make([]types.IndicatorType, 0, len(registered))

	for _, name := range types.AllIndicatorTypes {
		if registered[name] {
			names = append(names, name)
		}
	}

	return names
}

// EffectiveParams returns the parameters name would run with after applying params.
func (e *Engine) EffectiveParams(name types.IndicatorType, params []any) ([]any, error) {
	ind, err := e.registry.GetIndicator(name)
	if err != nil {
		return nil, err
	}

	if err := ind.Config(params...); err != nil {
		return nil, err
	}

	return ind.Params(), nil
}
