package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/stretchr/testify/suite"
)

// StochasticTestSuite is a test suite for the stochastic oscillator
type StochasticTestSuite struct {
	suite.Suite
}

func TestStochasticSuite(t *testing.T) {
	suite.Run(t, new(StochasticTestSuite))
}

func (suite *StochasticTestSuite) TestDefaults() {
	s := NewStochasticOscillator()
	suite.Equal(types.IndicatorTypeStochasticOscillator, s.Name())
	suite.Equal([]any{14, 3}, s.Params())
}

func (suite *StochasticTestSuite) TestPercentK() {
	k, d := ComputeStochastic(
		series(10, 12, 11),
		series(8, 9, 7),
		series(9, 11, 10),
		3, 1,
	)

	// highest 12, lowest 7, close 10
	assertSeries(suite.T(), []float64{null, null, 60}, k)
	assertSeries(suite.T(), []float64{null, null, 60}, d)
}

func (suite *StochasticTestSuite) TestPercentDIsSMAOfK() {
	bars := syntheticBars(80)
	k, d := ComputeStochastic(
		types.Column(bars, string(types.BarFieldHigh)),
		types.Column(bars, string(types.BarFieldLow)),
		types.Column(bars, string(types.BarFieldClose)),
		14, 3,
	)

	suite.Equal(ComputeSMA(k, 3), d)
}

func (suite *StochasticTestSuite) TestFlatRangeIsZero() {
	bars := flatBars(5, 5)
	k, d := ComputeStochastic(
		types.Column(bars, string(types.BarFieldHigh)),
		types.Column(bars, string(types.BarFieldLow)),
		types.Column(bars, string(types.BarFieldClose)),
		1, 1,
	)

	assertSeries(suite.T(), []float64{0, 0, 0, 0, 0}, k)
	assertSeries(suite.T(), []float64{0, 0, 0, 0, 0}, d)
}

func (suite *StochasticTestSuite) TestMissingValues() {
	k, _ := ComputeStochastic(
		series(10, null, 12, 13),
		series(8, null, 9, 10),
		series(9, 10, null, 11),
		2, 1,
	)

	// i=1: own high and low missing; i=2: close missing; i=3: bar 2 has the lowest low
	assertSeries(suite.T(), []float64{null, null, null, 50}, k)

	k, _ = ComputeStochastic(
		series(10, null, 12),
		series(8, null, 9),
		series(9, 10, 11),
		2, 1,
	)

	// i=2: the missing bar 1 is skipped, the window range comes from bar 2 alone
	assertSeries(suite.T(), []float64{null, null, 100.0 * 2 / 3}, k)

	// a close above the window's highest high would give %K > 100
	k, _ = ComputeStochastic(series(10, null), series(9, 9), series(9.5, 12), 2, 1)
	assertSeries(suite.T(), []float64{null, null}, k)

	k, _ = ComputeStochastic(series(10, 10), series(9, 9), series(9.5, 12), 2, 1)
	assertSeries(suite.T(), []float64{null, null}, k)

	k, _ = ComputeStochastic(series(10, 10), series(9, 9), series(9.5, 8), 2, 1)
	assertSeries(suite.T(), []float64{null, null}, k)

	k, _ = ComputeStochastic(series(null, null), series(null, null), series(1, 2), 2, 1)
	assertSeries(suite.T(), []float64{null, null}, k)
}

func (suite *StochasticTestSuite) TestBounds() {
	bars := syntheticBars(300)
	k, d := ComputeStochastic(
		types.Column(bars, string(types.BarFieldHigh)),
		types.Column(bars, string(types.BarFieldLow)),
		types.Column(bars, string(types.BarFieldClose)),
		14, 3,
	)

	for _, line := range []types.Series{k, d} {
		for _, v := range line {
			if v.IsNone() {
				continue
			}

			suite.GreaterOrEqual(v.Unwrap(), 0.0)
			suite.LessOrEqual(v.Unwrap(), 100.0)
		}
	}
}

func (suite *StochasticTestSuite) TestCompute() {
	s := NewStochasticOscillator()
	suite.Require().NoError(s.Config(5, 2))
	suite.Equal([]any{5, 2}, s.Params())

	result := s.Compute(syntheticBars(30))
	suite.Require().Len(result.Outputs, 2)
	suite.Equal(types.OutputK, result.Outputs[0].Name)
	suite.Equal(types.OutputD, result.Outputs[1].Name)
	suite.Equal(30, result.Len())
}

func (suite *StochasticTestSuite) TestConfigRejectsInvalidPeriods() {
	s := NewStochasticOscillator()
	suite.Error(s.Config(14, 0))
	suite.Error(s.Config(0))
	suite.Equal([]any{14, 3}, s.Params())
}
