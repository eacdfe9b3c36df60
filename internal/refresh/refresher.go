package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-dashboard/internal/dataset"
	"github.com/rxtech-lab/argo-dashboard/internal/logger"
	"github.com/rxtech-lab/argo-dashboard/internal/metrics"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/rxtech-lab/argo-dashboard/pkg/marketdata"
)

// Listener is notified with the new snapshot after every successful refresh.
type Listener func(snapshot dataset.Snapshot)

// Status describes the outcome of the most recent refresh attempts.
type Status struct {
	LastAttempt time.Time `json:"last_attempt"`
	LastSuccess time.Time `json:"last_success"`
	LastError   string    `json:"last_error,omitempty"`
	Generation  string    `json:"generation"`
	Bars        int       `json:"bars"`
}

// Refresher reloads the dataset from a Loader, either on demand or on a cron schedule.
// A failed load leaves the previous snapshot in place.
type Refresher struct {
	loader  marketdata.Loader
	store   *dataset.Store
	metrics *metrics.Metrics
	log     *logger.Logger
	timeout time.Duration
	cron    *cron.Cron
	now     func() time.Time

	// run serialises loads so a manual refresh and a scheduled one never overlap.
	run sync.Mutex

	mu        sync.RWMutex
	listeners []Listener
	status    Status
	started   bool
	entry     cron.EntryID
}

// NewRefresher creates a refresher. m may be nil. A zero timeout means no limit.
func NewRefresher(loader marketdata.Loader, store *dataset.Store, m *metrics.Metrics, log *logger.Logger, timeout time.Duration) *Refresher {
	if log == nil {
		log = logger.NewNopLogger()
	}

	cronLog := cronLogger{log: log}

	return &Refresher{
		loader:  loader,
		store:   store,
		metrics: m,
		log:     log,
		timeout: timeout,
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		now: time.Now,
	}
}

// OnRefresh registers a listener. Listeners run synchronously in registration order.
func (r *Refresher) OnRefresh(listener Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = append(r.listeners, listener)
}

// Status returns the last refresh outcome.
func (r *Refresher) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.status
}

// RefreshNow loads bars and swaps them into the store.
func (r *Refresher) RefreshNow(ctx context.Context) (dataset.Snapshot, error) {
	r.run.Lock()
	defer r.run.Unlock()

	if r.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	started := r.now()

	r.log.Debug("Refreshing dataset", zap.String("source", r.loader.Source()))

	bars, err := r.loader.Load(ctx)
	if err == nil && len(bars) == 0 {
		err = errors.NewInsufficientDataErrorf(1, 0, r.loader.Source(), "loader returned no bars")
	}

	if r.metrics != nil {
		r.metrics.RefreshDur.Observe(time.Since(started).Seconds())
	}

	if err != nil {
		return r.fail(started, err)
	}

	snapshot := r.store.Replace(bars, r.loader.Source())

	if r.metrics != nil {
		r.metrics.RefreshTotal.WithLabelValues("success").Inc()
		r.metrics.BarsLoaded.Set(float64(len(snapshot.Bars)))
		r.metrics.LastRefreshTS.Set(float64(snapshot.LoadedAt.Unix()))
	}

	r.mu.Lock()
	r.status = Status{
		LastAttempt: started,
		LastSuccess: snapshot.LoadedAt,
		Generation:  snapshot.Generation,
		Bars:        len(snapshot.Bars),
	}
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.Unlock()

	r.log.Info("Dataset refreshed",
		zap.String("source", snapshot.Source),
		zap.String("generation", snapshot.Generation),
		zap.Int("bars", len(snapshot.Bars)),
	)

	for _, listener := range listeners {
		listener(snapshot)
	}

	return snapshot, nil
}

func (r *Refresher) fail(started time.Time, err error) (dataset.Snapshot, error) {
	current := r.store.Snapshot()

	r.log.Error("Dataset refresh failed, keeping previous snapshot",
		zap.String("source", r.loader.Source()),
		zap.String("generation", current.Generation),
		zap.Error(err),
	)

	if r.metrics != nil {
		r.metrics.RefreshTotal.WithLabelValues("failure").Inc()
	}

	r.mu.Lock()
	r.status.LastAttempt = started
	r.status.LastError = err.Error()
	r.mu.Unlock()

	return current, errors.Wrap(errors.ErrCodeDataLoadFailed, "refresh failed", err)
}

// Start schedules RefreshNow with a cron spec such as "@every 1h" or "0 22 * * 1-5"
// and starts the scheduler.
func (r *Refresher) Start(spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return errors.New(errors.ErrCodeConfigInvalid, "refresher already started")
	}

	entry, err := r.cron.AddFunc(spec, func() {
		// errors are logged and counted inside RefreshNow
		_, _ = r.RefreshNow(context.Background())
	})
	if err != nil {
		return errors.Wrapf(errors.ErrCodeConfigInvalid, err, "invalid refresh schedule %q", spec)
	}

	r.entry = entry
	r.cron.Start()
	r.started = true

	r.log.Info("Refresh scheduler started", zap.String("schedule", spec))

	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	started := r.started
	entry := r.entry
	r.started = false
	r.mu.Unlock()

	if !started {
		return
	}

	<-r.cron.Stop().Done()
	r.cron.Remove(entry)

	r.log.Info("Refresh scheduler stopped")
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
