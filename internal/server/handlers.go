package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-dashboard/internal/engine"
	"github.com/rxtech-lab/argo-dashboard/internal/refresh"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
)

// SummaryResponse is the dashboard header.
type SummaryResponse struct {
	Symbol string `json:"symbol"`
	engine.Summary
}

// IndicatorInfo describes one available indicator and its effective defaults.
type IndicatorInfo struct {
	Name   types.IndicatorType `json:"name"`
	Params []any               `json:"params"`
}

// HealthResponse reports whether a dataset is loaded and how refreshes are going.
type HealthResponse struct {
	Status     string          `json:"status"`
	Symbol     string          `json:"symbol"`
	Generation string          `json:"generation,omitempty"`
	Bars       int             `json:"bars"`
	Source     string          `json:"source,omitempty"`
	LoadedAt   *time.Time      `json:"loaded_at,omitempty"`
	Refresh    *refresh.Status `json:"refresh,omitempty"`
}

// RefreshResponse is returned by a successful manual refresh.
type RefreshResponse struct {
	Generation string    `json:"generation"`
	Bars       int       `json:"bars"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// handleChart handles GET /api/chart?range=model&indicators=sma,rsi&sma=50&bollinger_bands=20,2.5
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	visible, err := engine.ParseIndicatorList(query.Get("indicators"))
	if err != nil {
		writeError(w, err)

		return
	}

	params, err := s.requestParams(query)
	if err != nil {
		writeError(w, err)

		return
	}

	chart, err := s.engine.Render(s.store.Snapshot(), engine.RenderRequest{
		TimeRange: parseRange(query.Get("range")),
		Visible:   visible,
		Params:    params,
	})
	if err != nil {
		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, chart)
}

// handleFeature handles GET /api/feature?key=M2&range=all
func (s *Server) handleFeature(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	chart, err := s.engine.Feature(s.store.Snapshot(), parseRange(query.Get("range")), query.Get("key"))
	if err != nil {
		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, chart)
}

// handleFeatures handles GET /api/features
func (s *Server) handleFeatures(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.store.Snapshot()
	if snapshot.Generation == "" {
		writeError(w, errors.New(errors.ErrCodeDatasetEmpty, "no dataset loaded"))

		return
	}

	writeJSON(w, http.StatusOK, s.engine.Features(snapshot))
}

// handleSummary handles GET /api/summary
func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	summary, err := engine.Summarize(s.store.Snapshot().Bars)
	if err != nil {
		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, SummaryResponse{Symbol: s.engine.Symbol(), Summary: summary})
}

// handleIndicators handles GET /api/indicators
func (s *Server) handleIndicators(w http.ResponseWriter, _ *http.Request) {
	names := s.engine.Indicators()
	infos := make([]IndicatorInfo, 0, len(names))

	for _, name := range names {
		params, err := s.engine.EffectiveParams(name, s.options.DefaultParams[name])
		if err != nil {
			writeError(w, err)

			return
		}

		infos = append(infos, IndicatorInfo{Name: name, Params: params})
	}

	writeJSON(w, http.StatusOK, infos)
}

// handleRefresh handles POST /api/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errors.New(errors.ErrCodeDataLoadFailed, "refresh is not configured"))

		return
	}

	snapshot, err := s.refresher.RefreshNow(r.Context())
	if err != nil {
		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{
		Generation: snapshot.Generation,
		Bars:       len(snapshot.Bars),
		LoadedAt:   snapshot.LoadedAt,
	})
}

// handleHealth handles GET /healthz. It answers 503 until a dataset is loaded.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.store.Snapshot()

	response := HealthResponse{
		Status: "ok",
		Symbol: s.engine.Symbol(),
		Bars:   len(snapshot.Bars),
	}

	if s.refresher != nil {
		status := s.refresher.Status()
		response.Refresh = &status
	}

	if snapshot.Generation == "" {
		response.Status = "loading"
		writeJSON(w, http.StatusServiceUnavailable, response)

		return
	}

	response.Generation = snapshot.Generation
	response.Source = snapshot.Source
	response.LoadedAt = &snapshot.LoadedAt

	writeJSON(w, http.StatusOK, response)
}

// requestParams merges the configured defaults with per-indicator query overrides.
// A query value is a comma separated positional list; empty positions keep the default.
func (s *Server) requestParams(query url.Values) (map[types.IndicatorType][]any, error) {
	params := make(map[types.IndicatorType][]any, len(s.options.DefaultParams))

	for name, defaults := range s.options.DefaultParams {
		params[name] = append([]any(nil), defaults...)
	}

	for _, name := range types.AllIndicatorTypes {
		raw, ok := query[string(name)]
		if !ok || len(raw) == 0 {
			continue
		}

		overrides, err := engine.ParseParamList(name, raw[len(raw)-1])
		if err != nil {
			return nil, err
		}

		params[name] = engine.MergeParams(params[name], overrides)
	}

	return params, nil
}

func parseRange(raw string) types.TimeRange {
	if raw == "" {
		return types.TimeRangeAll
	}

	return types.TimeRange(strings.ToLower(raw))
}

// writeJSON encodes body before sending the header, so an unencodable body
// turns into a 500 rather than a truncated 200.
func writeJSON(w http.ResponseWriter, status int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		// an *errors.Error always encodes
		_ = json.NewEncoder(&buf).Encode(errors.Wrap(errors.ErrCodeUnknown, "encode response", err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// the client may already be gone; nothing useful to do with the error
	_, _ = w.Write(buf.Bytes())
}

// writeError renders err as {"code":..,"message":..} with a status derived from its code.
func writeError(w http.ResponseWriter, err error) {
	var coded *errors.Error
	if !errors.As(err, &coded) {
		coded = errors.Wrap(errors.ErrCodeUnknown, "internal error", err)
	}

	writeJSON(w, statusFor(coded.Code), coded)
}

func statusFor(code errors.ErrorCode) int {
	switch {
	case code == errors.ErrCodeIndicatorNotFound, code == errors.ErrCodeDataNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeDatasetEmpty:
		return http.StatusServiceUnavailable
	case code >= 100 && code < 200, code == errors.ErrCodeIndicatorConfig:
		return http.StatusBadRequest
	case code == errors.ErrCodeDataLoadFailed, code >= 700 && code < 800:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
