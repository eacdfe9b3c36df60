package writer

import (
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupSuite() {
	tempDir, err := os.MkdirTemp("", "duckdb-writer-test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir
}

func (suite *DuckDBWriterTestSuite) TearDownSuite() {
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func testBar(day int) types.Bar {
	return types.Bar{
		Date:   time.Date(2023, 6, day, 0, 0, 0, 0, time.UTC),
		Open:   optional.Some(150.0 + float64(day)),
		High:   optional.Some(155.0 + float64(day)),
		Low:    optional.Some(148.0 + float64(day)),
		Close:  optional.Some(152.0 + float64(day)),
		Volume: optional.Some(1000000.0),
	}
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := suite.tempDir + "/test.parquet"
	writer := NewDuckDBWriter(outputPath, "QQQ", nil)

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.True(ok)
	suite.Equal(outputPath, duckWriter.outputPath)
	suite.Equal(outputPath, writer.GetOutputPath())
	suite.Equal("QQQ", duckWriter.symbol)
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestInitialize() {
	writer := NewDuckDBWriter(suite.tempDir+"/test_init.parquet", "QQQ", nil)

	err := writer.Initialize()
	suite.NoError(err)

	duckWriter := writer.(*DuckDBWriter)
	suite.NotNil(duckWriter.db)
	suite.NotNil(duckWriter.tx)
	suite.NotNil(duckWriter.stmt)

	writer.Close()
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewDuckDBWriter(suite.tempDir+"/test_no_init.parquet", "QQQ", nil)

	err := writer.Write(testBar(1))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
	suite.Contains(err.Error(), "not initialized")
}

func (suite *DuckDBWriterTestSuite) TestFinalizeWithoutInitialize() {
	writer := NewDuckDBWriter(suite.tempDir+"/test_finalize_no_init.parquet", "QQQ", nil)

	_, err := writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")
}

func (suite *DuckDBWriterTestSuite) TestFullWorkflow() {
	outputPath := suite.tempDir + "/test_workflow.parquet"
	writer := NewDuckDBWriter(outputPath, "QQQ", nil)

	suite.Require().NoError(writer.Initialize())

	// written out of order; the export sorts by time
	for _, day := range []int{5, 3, 1, 4, 2} {
		suite.Require().NoError(writer.Write(testBar(day)))
	}

	path, err := writer.Finalize()
	suite.NoError(err)
	suite.Equal(outputPath, path)

	fileInfo, err := os.Stat(path)
	suite.NoError(err)
	suite.Greater(fileInfo.Size(), int64(0))

	suite.NoError(writer.Close())

	db, err := sql.Open("duckdb", ":memory:")
	suite.Require().NoError(err)
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf("SELECT symbol, close FROM read_parquet('%s')", outputPath))
	suite.Require().NoError(err)
	defer rows.Close()

	var closes []float64

	for rows.Next() {
		var symbol string

		var closePrice float64

		suite.Require().NoError(rows.Scan(&symbol, &closePrice))
		suite.Equal("QQQ", symbol)

		closes = append(closes, closePrice)
	}

	suite.Equal([]float64{153, 154, 155, 156, 157}, closes)
}

func (suite *DuckDBWriterTestSuite) TestMissingValuesWrittenAsNull() {
	outputPath := suite.tempDir + "/test_nulls.parquet"
	writer := NewDuckDBWriter(outputPath, "QQQ", nil)

	suite.Require().NoError(writer.Initialize())

	bar := testBar(1)
	bar.Volume = optional.None[float64]()
	bar.High = optional.None[float64]()

	suite.Require().NoError(writer.Write(bar))

	_, err := writer.Finalize()
	suite.Require().NoError(err)
	suite.NoError(writer.Close())

	db, err := sql.Open("duckdb", ":memory:")
	suite.Require().NoError(err)
	defer db.Close()

	var high, volume, closePrice sql.NullFloat64

	err = db.QueryRow(fmt.Sprintf("SELECT high, volume, close FROM read_parquet('%s')", outputPath)).
		Scan(&high, &volume, &closePrice)
	suite.Require().NoError(err)
	suite.False(high.Valid)
	suite.False(volume.Valid)
	suite.True(closePrice.Valid)
	suite.Equal(153.0, closePrice.Float64)
}

func (suite *DuckDBWriterTestSuite) TestCloseWithoutInitialize() {
	writer := NewDuckDBWriter(suite.tempDir+"/test_close_no_init.parquet", "QQQ", nil)

	suite.NoError(writer.Close())
}

func (suite *DuckDBWriterTestSuite) TestDoubleClose() {
	writer := NewDuckDBWriter(suite.tempDir+"/test_double_close.parquet", "QQQ", nil)

	suite.Require().NoError(writer.Initialize())
	suite.NoError(writer.Close())
	suite.NoError(writer.Close())

	duckWriter := writer.(*DuckDBWriter)
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestDoubleFinalize() {
	writer := NewDuckDBWriter(suite.tempDir+"/test_double_finalize.parquet", "QQQ", nil)

	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(testBar(1)))

	_, err := writer.Finalize()
	suite.NoError(err)

	_, err = writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")

	writer.Close()
}

func (suite *DuckDBWriterTestSuite) TestWriteAfterClose() {
	writer := NewDuckDBWriter(suite.tempDir+"/test_write_after_close.parquet", "QQQ", nil)

	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(testBar(1)))

	_, err := writer.Finalize()
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	err = writer.Write(testBar(2))
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")
}

func (suite *DuckDBWriterTestSuite) TestFinalizeExportError() {
	writer := NewDuckDBWriter("/nonexistent/directory/test.parquet", "QQQ", nil)

	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(testBar(1)))

	_, err := writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "failed to export to Parquet")

	writer.Close()
}
