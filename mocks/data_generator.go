package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// DataGenerator generates realistic daily bars for testing and benchmarking.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how bars are generated.
type GeneratorConfig struct {
	// StartTime is the date of the first bar
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the drift factor (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
	// MissingRate is the probability (0.0 to 1.0) that any single OHLCV field is left undefined
	MissingRate float64
	// ExtraFields are additional columns filled with a random walk around 0
	ExtraFields []string
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:      time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC),
		Interval:       24 * time.Hour,
		Count:          10000,
		InitialPrice:   100.0,
		Volatility:     0.015, // 1.5% per bar
		Trend:          0.0,   // neutral
		VolumeBase:     1_000_000,
		VolumeVariance: 0.3,
	}
}

// Generate creates a slice of bars based on the configuration.
// The generated data follows a geometric Brownian motion model for realistic price movements.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Bar {
	data := make([]types.Bar, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime
	extras := make(map[string]float64, len(config.ExtraFields))

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a standard normal sample
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Count) // Distribute trend across bars

		close := open * (1 + priceChange + drift)
		if close <= 0 {
			close = open * 0.99 // Prevent negative prices
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bar := types.Bar{
			Date:   currentTime,
			Open:   g.maybe(roundToDecimals(open, 4), config.MissingRate),
			High:   g.maybe(roundToDecimals(high, 4), config.MissingRate),
			Low:    g.maybe(roundToDecimals(low, 4), config.MissingRate),
			Close:  g.maybe(roundToDecimals(close, 4), config.MissingRate),
			Volume: g.maybe(roundToDecimals(volume, 2), config.MissingRate),
		}

		if len(config.ExtraFields) > 0 {
			bar.Extra = make(map[string]optional.Option[float64], len(config.ExtraFields))

			for _, name := range config.ExtraFields {
				extras[name] += g.rng.NormFloat64()
				bar.Extra[name] = g.maybe(roundToDecimals(extras[name], 4), config.MissingRate)
			}
		}

		data[i] = bar

		// Update for next iteration
		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return data
}

func (g *DataGenerator) maybe(v float64, missingRate float64) optional.Option[float64] {
	if missingRate > 0 && g.rng.Float64() < missingRate {
		return optional.None[float64]()
	}

	return optional.Some(v)
}

// Generate10K is a convenience function to generate 10,000 complete daily bars
// with default settings for benchmarking.
func Generate10K() []types.Bar {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 10000

	return gen.Generate(config)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
