package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-dashboard/internal/logger"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/rxtech-lab/argo-dashboard/pkg/marketdata/writer"
)

// PolygonAggsIterator is the subset of the polygon iterator the client consumes.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client the provider calls.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonRESTClient struct {
	client *polygon.Client
}

func (c *polygonRESTClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return c.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	writer    writer.MarketDataWriter
	log       *logger.Logger
}

func NewPolygonClient(apiKey string, log *logger.Logger) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "apiKey is required")
	}

	client := NewPolygonClientWithAPI(&polygonRESTClient{client: polygon.New(apiKey)})
	if log != nil {
		client.log = log
	}

	return client, nil
}

// NewPolygonClientWithAPI wraps an existing API client. Tests pass a fake here.
func NewPolygonClientWithAPI(api PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: api,
		writer:    nil,
		log:       logger.NewNopLogger(),
	}
}

func (c *PolygonClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "no writer configured for PolygonClient. Call ConfigWriter first")
	}

	err = c.writer.Initialize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	defer func() {
		if cerr := c.writer.Close(); cerr != nil {
			if err == nil {
				err = errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "error closing writer", cerr)
			} else {
				c.log.Warn("Error closing writer after another error", zap.Error(cerr))
			}
		}
	}()

	totalIterations := int(endDate.Sub(startDate).Hours()/24) + 1

	bar := progressbar.NewOptions(totalIterations, progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ticker)), progressbar.OptionShowCount())

	processedCount := 0

	err = c.each(ctx, ticker, startDate, endDate, multiplier, timespan, func(agg models.Agg) error {
		if onProgress != nil {
			onProgress(float64(processedCount), float64(totalIterations), fmt.Sprintf("Downloading %s", ticker))
		}

		if werr := c.writer.Write(aggToBar(agg)); werr != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write data", werr)
		}

		processedCount++
		if processedCount%1000 == 0 {
			daysElapsed := int(time.Time(agg.Timestamp).Sub(startDate).Hours() / 24)
			bar.Set(daysElapsed)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	bar.Finish()
	c.log.Info("Finished downloading", zap.String("ticker", ticker), zap.Int("bars", processedCount))

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize writer", err)
	}

	return outputPath, nil
}

func (c *PolygonClient) Fetch(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan) ([]types.Bar, error) {
	var bars []types.Bar

	err := c.each(ctx, ticker, startDate, endDate, multiplier, timespan, func(agg models.Agg) error {
		bars = append(bars, aggToBar(agg))

		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug("Fetched aggregates", zap.String("ticker", ticker), zap.Int("bars", len(bars)))

	return bars, nil
}

func (c *PolygonClient) each(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, fn func(models.Agg) error) error {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000).WithOrder(models.Asc)

	iter := c.apiClient.ListAggs(ctx, params)

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download cancelled", err)
		}

		if err := fn(iter.Item()); err != nil {
			return err
		}
	}

	if iter.Err() != nil {
		return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "error iterating polygon aggregates", iter.Err())
	}

	return nil
}

// aggToBar converts a polygon aggregate. Polygon reports every field, so all are Some.
func aggToBar(agg models.Agg) types.Bar {
	return types.Bar{
		Date:   time.Time(agg.Timestamp).UTC(),
		Open:   optional.Some(agg.Open),
		High:   optional.Some(agg.High),
		Low:    optional.Some(agg.Low),
		Close:  optional.Some(agg.Close),
		Volume: optional.Some(agg.Volume),
	}
}
