package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	apperrors "github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockPolygonAPIClient implements PolygonAPIClient for testing.
type mockPolygonAPIClient struct {
	iterator   PolygonAggsIterator
	lastParams *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.lastParams = params

	return m.iterator
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++

		return true
	}

	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	if m.index > 0 && m.index <= len(m.aggs) {
		return m.aggs[m.index-1]
	}

	return models.Agg{}
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

// mockWriter records everything written to it.
type mockWriter struct {
	outputPath  string
	writtenData []types.Bar
	initialized bool
	finalized   bool
	closed      bool

	initializeErr error
	writeErr      error
	finalizeErr   error
	closeErr      error
}

func (m *mockWriter) Initialize() error {
	if m.initializeErr != nil {
		return m.initializeErr
	}

	m.initialized = true

	return nil
}

func (m *mockWriter) Write(bar types.Bar) error {
	if m.writeErr != nil {
		return m.writeErr
	}

	m.writtenData = append(m.writtenData, bar)

	return nil
}

func (m *mockWriter) Finalize() (string, error) {
	if m.finalizeErr != nil {
		return "", m.finalizeErr
	}

	m.finalized = true

	return m.outputPath, nil
}

func (m *mockWriter) Close() error {
	m.closed = true

	return m.closeErr
}

func (m *mockWriter) GetOutputPath() string {
	return m.outputPath
}

type PolygonClientTestSuite struct {
	suite.Suite
	startDate time.Time
	endDate   time.Time
}

func TestPolygonClientSuite(t *testing.T) {
	suite.Run(t, new(PolygonClientTestSuite))
}

func (suite *PolygonClientTestSuite) SetupTest() {
	suite.startDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.endDate = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
}

func dailyAggs(n int) []models.Agg {
	aggs := make([]models.Agg, n)
	for i := range aggs {
		price := 100.0 + float64(i)
		aggs[i] = models.Agg{
			Timestamp: models.Millis(time.Date(2024, 1, 1+i, 5, 0, 0, 0, time.UTC)),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price + 0.5,
			Volume:    1000000,
		}
	}

	return aggs
}

func noProgress(float64, float64, string) {}

func (suite *PolygonClientTestSuite) TestNewPolygonClient_ValidApiKey() {
	client, err := NewPolygonClient("test-api-key", nil)
	suite.NoError(err)
	suite.NotNil(client)

	polygonClient, ok := client.(*PolygonClient)
	suite.True(ok)
	suite.NotNil(polygonClient.apiClient)
	suite.Nil(polygonClient.writer)
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient_EmptyApiKey() {
	client, err := NewPolygonClient("", nil)
	suite.Error(err)
	suite.Nil(client)
	suite.Contains(err.Error(), "apiKey is required")
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeMissingParameter))
}

func (suite *PolygonClientTestSuite) TestNewPolygonClientWithAPI() {
	mockAPI := &mockPolygonAPIClient{}
	client := NewPolygonClientWithAPI(mockAPI)
	suite.NotNil(client)
	suite.Equal(mockAPI, client.apiClient)
	suite.Nil(client.writer)
}

func (suite *PolygonClientTestSuite) TestNewMarketDataProvider() {
	p, err := NewMarketDataProvider(ProviderPolygon, "key", nil)
	suite.NoError(err)
	suite.NotNil(p)

	_, err = NewMarketDataProvider(ProviderPolygon, 42, nil)
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeInvalidProvider))

	_, err = NewMarketDataProvider(ProviderType("binance"), "", nil)
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeInvalidProvider))
}

func (suite *PolygonClientTestSuite) TestConfigWriter() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{})
	mockW := &mockWriter{outputPath: "/tmp/test.parquet"}

	client.ConfigWriter(mockW)
	suite.Equal(mockW, client.writer)
}

func (suite *PolygonClientTestSuite) TestDownload_WithoutWriter() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{})

	_, err := client.Download(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day, noProgress)
	suite.Error(err)
	suite.Contains(err.Error(), "no writer configured")
}

func (suite *PolygonClientTestSuite) TestDownload_WriterInitializeError() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{}})
	client.ConfigWriter(&mockWriter{initializeErr: errors.New("initialization failed")})

	_, err := client.Download(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day, noProgress)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to initialize writer")
}

func (suite *PolygonClientTestSuite) TestDownloadSuccess() {
	mockAPI := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(2)}}
	mockW := &mockWriter{outputPath: "/tmp/test.parquet"}

	client := NewPolygonClientWithAPI(mockAPI)
	client.ConfigWriter(mockW)

	path, err := client.Download(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day, noProgress)
	suite.NoError(err)
	suite.Equal("/tmp/test.parquet", path)
	suite.True(mockW.initialized)
	suite.True(mockW.finalized)
	suite.True(mockW.closed)
	suite.Require().Len(mockW.writtenData, 2)

	first := mockW.writtenData[0]
	suite.Equal(time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC), first.Date)
	suite.InDelta(100.0, first.Open.Unwrap(), 0.01)
	suite.InDelta(101.0, first.High.Unwrap(), 0.01)
	suite.InDelta(99.0, first.Low.Unwrap(), 0.01)
	suite.InDelta(100.5, first.Close.Unwrap(), 0.01)
	suite.InDelta(1000000, first.Volume.Unwrap(), 0.01)

	suite.Require().NotNil(mockAPI.lastParams)
	suite.Equal("QQQ", mockAPI.lastParams.Ticker)
	suite.Equal(models.Day, mockAPI.lastParams.Timespan)
	suite.Equal(1, mockAPI.lastParams.Multiplier)
}

func (suite *PolygonClientTestSuite) TestDownloadEmptyAggs() {
	mockW := &mockWriter{outputPath: "/tmp/empty.parquet"}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{}})
	client.ConfigWriter(mockW)

	path, err := client.Download(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day, noProgress)
	suite.NoError(err)
	suite.Equal("/tmp/empty.parquet", path)
	suite.Empty(mockW.writtenData)
}

func (suite *PolygonClientTestSuite) TestDownloadIteratorError() {
	mockIter := &mockPolygonIterator{err: errors.New("API rate limit exceeded")}
	mockW := &mockWriter{outputPath: "/tmp/test.parquet"}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: mockIter})
	client.ConfigWriter(mockW)

	_, err := client.Download(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day, noProgress)
	suite.Error(err)
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeMarketDataFetchFailed))
	suite.Contains(err.Error(), "API rate limit exceeded")
	suite.False(mockW.finalized)
	suite.True(mockW.closed)
}

func (suite *PolygonClientTestSuite) TestDownloadWriteError() {
	mockW := &mockWriter{writeErr: errors.New("disk full")}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(3)}})
	client.ConfigWriter(mockW)

	_, err := client.Download(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day, noProgress)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to write data")
	suite.Contains(err.Error(), "disk full")
}

func (suite *PolygonClientTestSuite) TestDownloadFinalizeError() {
	mockW := &mockWriter{finalizeErr: errors.New("finalize failed")}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(1)}})
	client.ConfigWriter(mockW)

	_, err := client.Download(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day, noProgress)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to finalize writer")
}

func (suite *PolygonClientTestSuite) TestDownloadCloseError() {
	mockW := &mockWriter{outputPath: "/tmp/test.parquet", closeErr: errors.New("close failed")}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(1)}})
	client.ConfigWriter(mockW)

	_, err := client.Download(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day, noProgress)
	suite.Error(err)
	suite.Contains(err.Error(), "error closing writer")
}

func (suite *PolygonClientTestSuite) TestDownloadCloseErrorKeepsFirstError() {
	mockW := &mockWriter{writeErr: errors.New("disk full"), closeErr: errors.New("close failed")}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(1)}})
	client.ConfigWriter(mockW)

	_, err := client.Download(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day, noProgress)
	suite.Error(err)
	suite.Contains(err.Error(), "disk full")
	suite.NotContains(err.Error(), "close failed")
}

func (suite *PolygonClientTestSuite) TestDownloadProgressCallback() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(5)}})
	client.ConfigWriter(&mockWriter{outputPath: "/tmp/test.parquet"})

	var calls []float64

	_, err := client.Download(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day,
		func(current float64, total float64, message string) {
			calls = append(calls, current)
			suite.Equal(31.0, total)
			suite.Equal("Downloading QQQ", message)
		})
	suite.NoError(err)
	suite.Equal([]float64{0, 1, 2, 3, 4}, calls)
}

func (suite *PolygonClientTestSuite) TestDownloadManyDataPoints() {
	mockW := &mockWriter{outputPath: "/tmp/large.parquet"}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(2500)}})
	client.ConfigWriter(mockW)

	_, err := client.Download(context.Background(), "QQQ", suite.startDate, suite.startDate.AddDate(10, 0, 0), 1, models.Day, nil)
	suite.NoError(err)
	suite.Len(mockW.writtenData, 2500)
}

func (suite *PolygonClientTestSuite) TestDownload_Cancellation() {
	mockW := &mockWriter{outputPath: "/tmp/test.parquet"}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(3)}})
	client.ConfigWriter(mockW)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Download(ctx, "QQQ", suite.startDate, suite.endDate, 1, models.Day, noProgress)
	suite.Error(err)
	suite.ErrorIs(err, context.Canceled)
	suite.Empty(mockW.writtenData)
	suite.False(mockW.finalized)
}

func (suite *PolygonClientTestSuite) TestFetch() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(3)}})

	bars, err := client.Fetch(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day)
	suite.NoError(err)
	suite.Require().Len(bars, 3)
	suite.InDelta(102.5, bars[2].Close.Unwrap(), 1e-9)
	suite.True(bars[0].Date.Before(bars[1].Date))
}

func (suite *PolygonClientTestSuite) TestFetchIteratorError() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{err: errors.New("boom")}})

	bars, err := client.Fetch(context.Background(), "QQQ", suite.startDate, suite.endDate, 1, models.Day)
	suite.Error(err)
	suite.Nil(bars)
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeMarketDataFetchFailed))
}
