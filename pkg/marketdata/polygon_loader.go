package marketdata

import (
	"context"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-dashboard/internal/logger"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/rxtech-lab/argo-dashboard/pkg/marketdata/provider"
)

// PolygonLoader fetches daily bars from startDate up to now on every Load.
type PolygonLoader struct {
	provider  provider.Provider
	ticker    string
	startDate time.Time
	now       func() time.Time
	log       *logger.Logger
}

// NewPolygonLoader creates a loader over an existing provider.
func NewPolygonLoader(p provider.Provider, ticker string, startDate time.Time, log *logger.Logger) *PolygonLoader {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &PolygonLoader{
		provider:  p,
		ticker:    ticker,
		startDate: startDate,
		now:       time.Now,
		log:       log,
	}
}

// Source implements Loader.
func (l *PolygonLoader) Source() string {
	return string(ProviderPolygon) + ":" + l.ticker
}

// Load implements Loader.
func (l *PolygonLoader) Load(ctx context.Context) ([]types.Bar, error) {
	end := l.now().UTC()

	l.log.Debug("Fetching polygon history",
		zap.String("ticker", l.ticker),
		zap.Time("start", l.startDate),
		zap.Time("end", end),
	)

	bars, err := l.provider.Fetch(ctx, l.ticker, l.startDate, end, 1, models.Day)
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		return nil, errors.NewInsufficientDataErrorf(1, 0, l.Source(), "polygon returned no bars for %s", l.ticker)
	}

	return bars, nil
}
