package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/internal/version"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/rxtech-lab/argo-dashboard/pkg/marketdata"
	"github.com/rxtech-lab/argo-dashboard/pkg/schema"
)

// DataSourceType selects where bars are loaded from.
type DataSourceType string

const (
	DataSourceCSV     DataSourceType = "csv"
	DataSourceParquet DataSourceType = "parquet"
	DataSourcePolygon DataSourceType = "polygon"
)

const (
	DefaultSymbol          = "QQQ"
	DefaultAddress         = ":8080"
	DefaultCacheEntries    = 256
	DefaultRefreshSchedule = "@every 1h"
	DefaultRefreshTimeout  = "2m"
	DefaultPolygonStart    = "2015-01-01"
)

// Config is the dashboard configuration file.
type Config struct {
	Version    string           `yaml:"version" json:"version" jsonschema:"title=Version,description=Config format version (major.minor must match the binary),default=1.0.0" validate:"required"`
	Symbol     string           `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Ticker shown on the dashboard,default=QQQ" validate:"required"`
	LogLevel   string           `yaml:"log_level" json:"log_level" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"omitempty,oneof=debug info warn error"`
	DataSource DataSourceConfig `yaml:"data_source" json:"data_source" jsonschema:"title=Data Source"`
	Refresh    RefreshConfig    `yaml:"refresh" json:"refresh" jsonschema:"title=Refresh"`
	Server     ServerConfig     `yaml:"server" json:"server" jsonschema:"title=Server"`
	Cache      CacheConfig      `yaml:"cache" json:"cache" jsonschema:"title=Cache"`
	// Indicators overrides default parameters per indicator, e.g. sma: [50].
	Indicators map[string][]float64 `yaml:"indicators" json:"indicators,omitempty" jsonschema:"title=Indicator Defaults,description=Positional parameter overrides keyed by indicator name"`
}

// DataSourceConfig describes the bar source.
type DataSourceConfig struct {
	Type          DataSourceType `yaml:"type" json:"type" jsonschema:"title=Type,enum=csv,enum=parquet,enum=polygon" validate:"required,oneof=csv parquet polygon"`
	Path          string         `yaml:"path" json:"path,omitempty" jsonschema:"title=Path,description=CSV or Parquet file path" validate:"required_unless=Type polygon"`
	PolygonAPIKey string         `yaml:"polygon_api_key" json:"polygon_api_key,omitempty" jsonschema:"title=Polygon API Key" validate:"required_if=Type polygon"`
	StartDate     string         `yaml:"start_date" json:"start_date,omitempty" jsonschema:"title=Start Date,description=First day fetched from Polygon,format=date,default=2015-01-01"`
}

// RefreshConfig controls the periodic reload.
type RefreshConfig struct {
	// Schedule is a cron spec; an empty value disables scheduled refreshes.
	Schedule string `yaml:"schedule" json:"schedule" jsonschema:"title=Schedule,description=Cron spec such as '@every 1h' or '0 22 * * 1-5',default=@every 1h"`
	Timeout  string `yaml:"timeout" json:"timeout" jsonschema:"title=Timeout,description=Maximum duration of one load,default=2m"`
	Disabled bool   `yaml:"disabled" json:"disabled,omitempty" jsonschema:"title=Disabled,description=Turn off scheduled refreshes"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address        string   `yaml:"address" json:"address" jsonschema:"title=Address,default=:8080" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins,omitempty" jsonschema:"title=Allowed Origins,description=WebSocket origins accepted besides same-origin"`
}

// CacheConfig bounds the indicator result cache.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries" json:"max_entries" jsonschema:"title=Max Entries,minimum=0,default=256" validate:"min=0"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version:  version.ConfigVersion,
		Symbol:   DefaultSymbol,
		LogLevel: "info",
		DataSource: DataSourceConfig{
			Type:      DataSourceCSV,
			Path:      "data/qqq.csv",
			StartDate: DefaultPolygonStart,
		},
		Refresh: RefreshConfig{
			Schedule: DefaultRefreshSchedule,
			Timeout:  DefaultRefreshTimeout,
		},
		Server: ServerConfig{
			Address: DefaultAddress,
		},
		Cache: CacheConfig{
			MaxEntries: DefaultCacheEntries,
		},
	}
}

// Load reads a YAML config, applies environment overrides and validates it.
// ${VAR} references inside the file are expanded from the environment, and a
// .env file in the working directory is loaded first when present. An empty
// path yields the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeConfigReadFailed, err, "read config %s", path)
		}

		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML into cfg after expanding ${VAR} references. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))

	decoder := yaml.NewDecoder(bytes.NewBufferString(expanded))
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "parse config", err)
	}

	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DASHBOARD_SYMBOL"); v != "" {
		cfg.Symbol = v
	}

	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		cfg.Server.Address = v
	}

	if v := os.Getenv("DASHBOARD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("DASHBOARD_DATA_PATH"); v != "" {
		cfg.DataSource.Path = v
	}

	if v := os.Getenv("DASHBOARD_REFRESH_SCHEDULE"); v != "" {
		cfg.Refresh.Schedule = v
	}

	if v := os.Getenv("DASHBOARD_CACHE_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.MaxEntries = n
		}
	}

	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.DataSource.PolygonAPIKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Symbol == "" {
		cfg.Symbol = DefaultSymbol
	}

	cfg.Symbol = strings.ToUpper(cfg.Symbol)

	if cfg.Server.Address == "" {
		cfg.Server.Address = DefaultAddress
	}

	if cfg.Refresh.Timeout == "" {
		cfg.Refresh.Timeout = DefaultRefreshTimeout
	}

	if cfg.DataSource.StartDate == "" {
		cfg.DataSource.StartDate = DefaultPolygonStart
	}
}

// Validate checks struct tags, the config version, the refresh schedule and
// indicator overrides.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "invalid config", err)
	}

	if err := version.CheckVersionCompatibility(version.ConfigVersion, c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeConfigVersion, "unsupported config version", err)
	}

	if c.Refresh.Schedule != "" && !c.Refresh.Disabled {
		if _, err := cron.ParseStandard(c.Refresh.Schedule); err != nil {
			return errors.Wrapf(errors.ErrCodeConfigInvalid, err, "invalid refresh.schedule %q", c.Refresh.Schedule)
		}
	}

	if _, err := time.ParseDuration(c.Refresh.Timeout); err != nil {
		return errors.Wrapf(errors.ErrCodeConfigInvalid, err, "invalid refresh.timeout %q", c.Refresh.Timeout)
	}

	if c.DataSource.Type == DataSourcePolygon {
		if _, err := marketdata.ParseDay(c.DataSource.StartDate); err != nil {
			return errors.Wrapf(errors.ErrCodeConfigInvalid, err, "invalid data_source.start_date %q", c.DataSource.StartDate)
		}
	}

	for name := range c.Indicators {
		if _, ok := types.ParseIndicatorType(name); !ok {
			return errors.Newf(errors.ErrCodeConfigInvalid, "unknown indicator %q in indicators", name)
		}
	}

	return nil
}

// RefreshTimeout returns the parsed refresh timeout.
func (c *Config) RefreshTimeout() time.Duration {
	d, err := time.ParseDuration(c.Refresh.Timeout)
	if err != nil {
		return 0
	}

	return d
}

// ScheduleEnabled reports whether a cron refresh should be registered.
func (c *Config) ScheduleEnabled() bool {
	return !c.Refresh.Disabled && c.Refresh.Schedule != ""
}

// IndicatorParams converts the indicator overrides into engine parameters.
func (c *Config) IndicatorParams() map[types.IndicatorType][]any {
	out := make(map[types.IndicatorType][]any, len(c.Indicators))

	for name, values := range c.Indicators {
		indicatorType, ok := types.ParseIndicatorType(name)
		if !ok {
			continue
		}

		params := make([]any, len(values))
		for i, v := range values {
			params[i] = v
		}

		out[indicatorType] = params
	}

	return out
}

// PolygonStartDate returns the parsed start date for Polygon fetches.
func (c *Config) PolygonStartDate() time.Time {
	t, err := marketdata.ParseDay(c.DataSource.StartDate)
	if err != nil {
		t, _ = marketdata.ParseDay(DefaultPolygonStart)
	}

	return t
}

// GenerateSchema returns the JSON schema of the config file.
func GenerateSchema() (string, error) {
	out, err := schema.ToJSONSchema(Config{})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConfigSchemaFailure, "generate config schema", err)
	}

	return out, nil
}
