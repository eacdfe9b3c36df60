package types

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type SeriesTestSuite struct {
	suite.Suite
}

func TestSeriesSuite(t *testing.T) {
	suite.Run(t, new(SeriesTestSuite))
}

func (suite *SeriesTestSuite) TestNewSeriesIsUndefined() {
	s := NewSeries(3)
	suite.Len(s, 3)
	suite.Equal(0, s.Defined())

	for i := range s {
		_, ok := s.At(i)
		suite.False(ok)
	}
}

func (suite *SeriesTestSuite) TestAt() {
	s := Series{optional.Some(1.5), optional.None[float64](), optional.Some(0.0)}

	v, ok := s.At(0)
	suite.True(ok)
	suite.Equal(1.5, v)

	_, ok = s.At(1)
	suite.False(ok)

	// zero is a value, not a missing one
	v, ok = s.At(2)
	suite.True(ok)
	suite.Equal(0.0, v)

	_, ok = s.At(-1)
	suite.False(ok)
	_, ok = s.At(3)
	suite.False(ok)
}

func (suite *SeriesTestSuite) TestFinite() {
	suite.Equal(2.5, Finite(2.5).Unwrap())
	suite.True(Finite(math.NaN()).IsNone())
	suite.True(Finite(math.Inf(1)).IsNone())
	suite.True(Finite(math.Inf(-1)).IsNone())
}

func (suite *SeriesTestSuite) TestFloatsAndLast() {
	s := Series{optional.Some(1.0), optional.None[float64]()}
	floats := s.Floats()
	suite.Equal(1.0, floats[0])
	suite.True(math.IsNaN(floats[1]))
	suite.True(s.Last().IsNone())
	suite.True(Series{}.Last().IsNone())
	suite.Equal(2.0, SeriesOf(1, 2).Last().Unwrap())
}

func (suite *SeriesTestSuite) TestClone() {
	s := SeriesOf(1, 2)
	c := s.Clone()
	c[0] = optional.Some(9.0)
	suite.Equal(1.0, s[0].Unwrap())
}

func (suite *SeriesTestSuite) TestJSONUsesNull() {
	s := Series{optional.Some(1.5), optional.None[float64]()}
	data, err := json.Marshal(s)
	suite.Require().NoError(err)
	suite.JSONEq(`[1.5, null]`, string(data))
}

func (suite *SeriesTestSuite) TestColumnAndExtras() {
	bars := []Bar{
		{
			Date:  time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
			Close: optional.Some(100.0),
			Extra: map[string]optional.Option[float64]{"M2": optional.Some(15.0)},
		},
		{
			Date:  time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC),
			Close: optional.None[float64](),
			Extra: map[string]optional.Option[float64]{"CPI": optional.Some(2.0)},
		},
	}

	closes := Column(bars, "close")
	suite.Equal(100.0, closes[0].Unwrap())
	suite.True(closes[1].IsNone())

	m2 := Column(bars, "M2")
	suite.Equal(15.0, m2[0].Unwrap())
	suite.True(m2[1].IsNone())

	suite.Equal([]string{"CPI", "M2"}, ExtraKeys(bars))
	suite.True(HasField(bars, "CPI"))
	suite.True(HasField(bars, "volume"))
	suite.False(HasField(bars, "GDP"))
	suite.Equal(bars[1].Date, Dates(bars)[1])
}
