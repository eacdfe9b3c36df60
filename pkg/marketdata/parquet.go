package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/logger"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"go.uber.org/zap"
)

// ParquetOptions narrows what a ParquetLoader reads.
type ParquetOptions struct {
	// Symbol keeps only rows for this symbol when the file has a symbol column.
	Symbol string
	// Start and End bound the time column, inclusive.
	Start optional.Option[time.Time]
	End   optional.Option[time.Time]
}

// ParquetLoader reads bars from a Parquet file through an in-memory DuckDB view.
// The file needs a time (or date) column. OHLCV columns map to the bar fields and
// other numeric columns land in Bar.Extra.
type ParquetLoader struct {
	path    string
	options ParquetOptions
	log     *logger.Logger
	sq      squirrel.StatementBuilderType
}

type parquetColumn struct {
	name     string
	dataType string
}

// NewParquetLoader creates a loader for the Parquet file at path.
func NewParquetLoader(path string, options ParquetOptions, log *logger.Logger) *ParquetLoader {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &ParquetLoader{
		path:    path,
		options: options,
		log:     log,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Source implements Loader.
func (l *ParquetLoader) Source() string {
	return l.path
}

// Load implements Loader.
func (l *ParquetLoader) Load(ctx context.Context) ([]types.Bar, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataLoadFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	l.log.Debug("Creating parquet view", zap.String("path", l.path))

	// squirrel has no CREATE VIEW
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT * FROM read_parquet('%s');
	`, strings.ReplaceAll(l.path, "'", "''"))

	if _, err := db.ExecContext(ctx, query); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataLoadFailed, err, "failed to read parquet file %s", l.path)
	}

	columns, err := l.describe(ctx, db)
	if err != nil {
		return nil, err
	}

	timeColumn, valueColumns, hasSymbol := classifyColumns(columns)
	if timeColumn == "" {
		return nil, errors.Newf(errors.ErrCodeMarketDataParseFailed, "parquet file %s has no time or date column", l.path)
	}

	bars, err := l.read(ctx, db, timeColumn, valueColumns, hasSymbol)
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		return nil, errors.NewInsufficientDataErrorf(1, 0, l.path, "no bars found in %s", l.path)
	}

	l.log.Info("Loaded bars from parquet", zap.String("path", l.path), zap.Int("bars", len(bars)))

	return bars, nil
}

func (l *ParquetLoader) describe(ctx context.Context, db *sql.DB) ([]parquetColumn, error) {
	query, args, err := l.sq.
		Select("column_name", "data_type").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_name": "market_data"}).
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build schema query", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe parquet file", err)
	}
	defer rows.Close()

	var columns []parquetColumn

	for rows.Next() {
		var c parquetColumn
		if err := rows.Scan(&c.name, &c.dataType); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column description", err)
		}

		columns = append(columns, c)
	}

	return columns, rows.Err()
}

func (l *ParquetLoader) read(ctx context.Context, db *sql.DB, timeColumn string, valueColumns []string, hasSymbol bool) ([]types.Bar, error) {
	selects := make([]string, 0, len(valueColumns)+1)
	selects = append(selects, fmt.Sprintf("CAST(%s AS TIMESTAMP)", quoteIdent(timeColumn)))

	for _, c := range valueColumns {
		selects = append(selects, fmt.Sprintf("CAST(%s AS DOUBLE)", quoteIdent(c)))
	}

	conditions := squirrel.And{squirrel.Expr(quoteIdent(timeColumn) + " IS NOT NULL")}

	if hasSymbol && l.options.Symbol != "" {
		conditions = append(conditions, squirrel.Eq{"symbol": l.options.Symbol})
	}

	if l.options.Start.IsSome() {
		conditions = append(conditions, squirrel.GtOrEq{quoteIdent(timeColumn): l.options.Start.Unwrap()})
	}

	if l.options.End.IsSome() {
		conditions = append(conditions, squirrel.LtOrEq{quoteIdent(timeColumn): l.options.End.Unwrap()})
	}

	query, args, err := l.sq.
		Select(selects...).
		From("market_data").
		Where(conditions).
		OrderBy(quoteIdent(timeColumn) + " ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build select query", err)
	}

	l.log.Debug("Reading parquet bars", zap.String("query", query))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query parquet bars", err)
	}
	defer rows.Close()

	var bars []types.Bar

	values := make([]sql.NullFloat64, len(valueColumns))
	dest := make([]any, len(valueColumns)+1)

	for rows.Next() {
		var date time.Time

		dest[0] = &date
		for i := range values {
			values[i] = sql.NullFloat64{}
			dest[i+1] = &values[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to scan parquet row", err)
		}

		bar := types.Bar{Date: date}

		for i, name := range valueColumns {
			v := optional.None[float64]()
			if values[i].Valid {
				v = types.Finite(values[i].Float64)
			}

			switch types.BarField(strings.ToLower(name)) {
			case types.BarFieldOpen:
				bar.Open = v
			case types.BarFieldHigh:
				bar.High = v
			case types.BarFieldLow:
				bar.Low = v
			case types.BarFieldClose:
				bar.Close = v
			case types.BarFieldVolume:
				bar.Volume = v
			default:
				if bar.Extra == nil {
					bar.Extra = make(map[string]optional.Option[float64])
				}

				bar.Extra[name] = v
			}
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate parquet rows", err)
	}

	return bars, nil
}

// classifyColumns picks the time column and the numeric value columns.
// "time" wins over "date" when both exist.
func classifyColumns(columns []parquetColumn) (timeColumn string, valueColumns []string, hasSymbol bool) {
	for _, c := range columns {
		switch strings.ToLower(c.name) {
		case "time":
			timeColumn = c.name
		case "date":
			if timeColumn == "" {
				timeColumn = c.name
			}
		}
	}

	for _, c := range columns {
		if c.name == timeColumn {
			continue
		}

		if strings.EqualFold(c.name, "symbol") {
			hasSymbol = true

			continue
		}

		if isNumericType(c.dataType) {
			valueColumns = append(valueColumns, c.name)
		}
	}

	return timeColumn, valueColumns, hasSymbol
}

func isNumericType(dataType string) bool {
	t := strings.ToUpper(dataType)

	for _, prefix := range []string{"DOUBLE", "FLOAT", "REAL", "DECIMAL", "NUMERIC", "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT", "UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT"} {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}

	return false
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
