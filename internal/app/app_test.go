package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/argo-dashboard/internal/config"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/mocks"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
)

type AppTestSuite struct {
	suite.Suite
	dir string
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}

func (suite *AppTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *AppTestSuite) writeCSV(rows int) string {
	var b strings.Builder

	b.WriteString("date,open,high,low,close,volume,M2\n")

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		price := 100 + float64(i)
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%d,%.1f\n",
			start.AddDate(0, 0, i).Format(time.DateOnly), price-0.5, price+1, price-1, price, 1000+i, 21000+float64(i))
	}

	path := filepath.Join(suite.dir, "bars.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(b.String()), 0o600))

	return path
}

func httpGet(handler http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func (suite *AppTestSuite) config(path string) *config.Config {
	cfg := config.Default()
	cfg.DataSource.Path = path
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Refresh.Disabled = true

	return cfg
}

func (suite *AppTestSuite) TestBuildLoader() {
	cfg := config.Default()

	cfg.DataSource = config.DataSourceConfig{Type: config.DataSourceCSV, Path: "bars.csv"}
	loader, err := BuildLoader(cfg, nil)
	suite.Require().NoError(err)
	suite.Equal("bars.csv", loader.Source())

	cfg.DataSource = config.DataSourceConfig{Type: config.DataSourceParquet, Path: "bars.parquet"}
	loader, err = BuildLoader(cfg, nil)
	suite.Require().NoError(err)
	suite.Equal("bars.parquet", loader.Source())

	cfg.DataSource = config.DataSourceConfig{Type: config.DataSourcePolygon, PolygonAPIKey: "key", StartDate: "2020-01-01"}
	loader, err = BuildLoader(cfg, nil)
	suite.Require().NoError(err)
	suite.Equal("polygon:QQQ", loader.Source())
}

func (suite *AppTestSuite) TestBuildLoaderErrors() {
	cfg := config.Default()

	cfg.DataSource = config.DataSourceConfig{Type: config.DataSourcePolygon}
	_, err := BuildLoader(cfg, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	cfg.DataSource = config.DataSourceConfig{Type: "ftp"}
	_, err = BuildLoader(cfg, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeConfigInvalid))
}

func (suite *AppTestSuite) TestLoadAndRender() {
	cfg := suite.config(suite.writeCSV(60))
	cfg.Indicators = map[string][]float64{"sma": {5}}

	a, err := New(cfg, nil)
	suite.Require().NoError(err)

	snapshot, err := a.Load(context.Background())
	suite.Require().NoError(err)
	suite.Len(snapshot.Bars, 60)
	suite.Equal([]string{"M2"}, a.Engine.Features(snapshot))

	srv := a.NewServer()
	rec := httpGet(srv.Handler(), "/api/chart?indicators=sma")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"SMA(5)"`)
}

func (suite *AppTestSuite) TestCacheDisabled() {
	cfg := suite.config(suite.writeCSV(40))
	cfg.Cache.MaxEntries = 0

	a, err := New(cfg, nil)
	suite.Require().NoError(err)

	snapshot, err := a.Load(context.Background())
	suite.Require().NoError(err)

	result, params, err := a.Engine.Compute(snapshot, types.TimeRangeAll, types.IndicatorTypeRSI, nil)
	suite.Require().NoError(err)
	suite.Equal([]any{14}, params)
	suite.Equal(40, result.Len())
}

func (suite *AppTestSuite) TestNewWithLoaderUsesLoader() {
	ctrl := gomock.NewController(suite.T())
	loader := mocks.NewMockLoader(ctrl)

	genConfig := mocks.DefaultConfig()
	genConfig.Count = 30
	bars := mocks.NewDataGenerator(1).Generate(genConfig)

	loader.EXPECT().Source().Return("mock").AnyTimes()
	loader.EXPECT().Load(gomock.Any()).Return(bars, nil)

	a := NewWithLoader(suite.config(""), loader, nil)

	snapshot, err := a.Load(context.Background())
	suite.Require().NoError(err)
	suite.Equal("mock", snapshot.Source)
	suite.Len(snapshot.Bars, 30)
}

func (suite *AppTestSuite) serve(cfg *config.Config) (string, context.CancelFunc, chan error) {
	a, err := New(cfg, nil)
	suite.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)

	go func() {
		done <- a.Serve(ctx, func(address string) { ready <- address })
	}()

	select {
	case address := <-ready:
		return "http://" + address, cancel, done
	case err := <-done:
		cancel()
		suite.FailNow("serve returned early", "%v", err)
	case <-time.After(5 * time.Second):
		cancel()
		suite.FailNow("server did not start")
	}

	return "", cancel, done
}

func (suite *AppTestSuite) TestServe() {
	base, cancel, done := suite.serve(suite.config(suite.writeCSV(30)))

	resp, err := http.Get(base + "/healthz")
	suite.Require().NoError(err)
	resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/api/summary")
	suite.Require().NoError(err)
	resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		suite.NoError(err)
	case <-time.After(10 * time.Second):
		suite.Fail("serve did not stop")
	}
}

func (suite *AppTestSuite) TestServeWithoutData() {
	base, cancel, done := suite.serve(suite.config(filepath.Join(suite.dir, "missing.csv")))
	defer func() {
		cancel()
		<-done
	}()

	resp, err := http.Get(base + "/healthz")
	suite.Require().NoError(err)
	resp.Body.Close()
	suite.Equal(http.StatusServiceUnavailable, resp.StatusCode)
}

func (suite *AppTestSuite) TestServeWithSchedule() {
	cfg := suite.config(suite.writeCSV(30))
	cfg.Refresh.Disabled = false
	cfg.Refresh.Schedule = "@every 1h"

	_, cancel, done := suite.serve(cfg)
	cancel()

	select {
	case err := <-done:
		suite.NoError(err)
	case <-time.After(10 * time.Second):
		suite.Fail("serve did not stop")
	}
}
