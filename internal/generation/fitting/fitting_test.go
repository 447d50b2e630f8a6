package fitting

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"datareplicator/internal/generation/models"
)

type FittingSuite struct {
	suite.Suite
}

func TestFittingSuite(t *testing.T) {
	suite.Run(t, new(FittingSuite))
}

// ==== Numeric ====

func (s *FittingSuite) TestFitNumeric() {
	s.Run("summary statistics", func() {
		m := FitNumeric([]any{1.0, 2.0, 3.0, 4.0, 5.0})
		s.Require().NotNil(m)
		s.Equal(models.DataTypeNumeric, m.Kind)
		s.Require().NotNil(m.Numeric)

		s.Equal(5, m.Numeric.N)
		s.InDelta(3.0, m.Numeric.Mean, 1e-9)
		s.InDelta(1.0, m.Numeric.Min, 1e-9)
		s.InDelta(5.0, m.Numeric.Max, 1e-9)
		s.InDelta(3.0, m.Numeric.Median, 1e-9)
		s.InDelta(2.0, m.Numeric.Q1, 1e-9)
		s.InDelta(4.0, m.Numeric.Q3, 1e-9)
		s.NotNil(m.Numeric.KDE)
	})

	s.Run("skips missing and non-numeric values", func() {
		m := FitNumeric([]any{1.0, nil, "x", 3.0})
		s.Require().NotNil(m)
		s.Equal(2, m.Numeric.N)
		s.InDelta(2.0, m.Numeric.Mean, 1e-9)
	})

	s.Run("integer inputs are coerced", func() {
		m := FitNumeric([]any{1, 2, int64(3)})
		s.Require().NotNil(m)
		s.Equal(3, m.Numeric.N)
	})

	s.Run("degenerate variance keeps the parametric summary", func() {
		m := FitNumeric([]any{7.0, 7.0, 7.0})
		s.Require().NotNil(m)
		s.InDelta(7.0, m.Numeric.Mean, 1e-9)
		s.InDelta(0.0, m.Numeric.Std, 1e-9)
		s.Nil(m.Numeric.KDE)
	})

	s.Run("no usable values yields no model", func() {
		s.Nil(FitNumeric(nil))
		s.Nil(FitNumeric([]any{nil, nil}))
	})
}

func (s *FittingSuite) TestKDE() {
	s.Run("needs at least two points", func() {
		_, err := NewKDE([]float64{1})
		s.Require().Error(err)
	})

	s.Run("rejects zero variance", func() {
		_, err := NewKDE([]float64{2, 2, 2})
		s.Require().Error(err)
	})

	s.Run("resamples near the source points", func() {
		points := []float64{10, 11, 12, 13, 14}
		kde, err := NewKDE(points)
		s.Require().NoError(err)

		rng := rand.New(rand.NewSource(1))
		values := kde.Resample(rng, 1000)
		s.Len(values, 1000)

		var sum float64
		for _, v := range values {
			sum += v
		}
		s.InDelta(12, sum/1000, 0.5)
	})
}

// ==== Categorical ====

func (s *FittingSuite) TestFitCategorical() {
	s.Run("empirical frequencies in first-appearance order", func() {
		m := FitCategorical([]any{"A", "B", "A", "A", "C"})
		s.Require().NotNil(m)
		s.Equal(models.DataTypeCategorical, m.Kind)
		s.Require().NotNil(m.Categorical)

		s.Equal([]string{"A", "B", "C"}, m.Categorical.Values)
		s.InDelta(0.6, m.Categorical.Probs[0], 1e-9)
		s.InDelta(0.2, m.Categorical.Probs[1], 1e-9)
		s.InDelta(0.2, m.Categorical.Probs[2], 1e-9)
	})

	s.Run("probabilities sum to one", func() {
		m := FitCategorical([]any{"X", "Y", "X", nil, "Z", "Y", "Y"})
		s.Require().NotNil(m)
		var total float64
		for _, p := range m.Categorical.Probs {
			total += p
		}
		s.InDelta(1.0, total, 1e-9)
	})

	s.Run("no usable values yields no model", func() {
		s.Nil(FitCategorical([]any{nil, nil}))
	})
}

// ==== Temporal ====

func (s *FittingSuite) TestFitTemporal() {
	s.Run("mixed input formats", func() {
		m := FitTemporal([]any{
			"2021-03-15",
			"2021/04/20",
			"15-Jan-2021",
			time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
		})
		s.Require().NotNil(m)
		s.Equal(models.DataTypeDate, m.Kind)
		s.Require().NotNil(m.Temporal)

		s.Equal(time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC), m.Temporal.MinDate)
		s.Equal(time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), m.Temporal.MaxDate)
	})

	s.Run("unparsable entries are dropped", func() {
		m := FitTemporal([]any{"2021-03-15", "not a date", nil})
		s.Require().NotNil(m)
		s.Equal([]int{2021}, m.Temporal.Years)
		s.Equal([]float64{1}, m.Temporal.YearProbs)
	})

	s.Run("marginals sum to one", func() {
		m := FitTemporal([]any{"2020-01-10", "2021-02-20", "2021-02-10"})
		s.Require().NotNil(m)

		for _, probs := range [][]float64{m.Temporal.YearProbs, m.Temporal.MonthProbs, m.Temporal.DayProbs} {
			var total float64
			for _, p := range probs {
				total += p
			}
			s.InDelta(1.0, total, 1e-9)
		}
	})

	s.Run("no parsable values yields no model", func() {
		s.Nil(FitTemporal([]any{"nonsense", nil}))
	})
}

// ==== Dispatcher ====

func (s *FittingSuite) TestFit() {
	s.NotNil(Fit(models.DataTypeNumeric, []any{1.0, 2.0}))
	s.NotNil(Fit(models.DataTypeCategorical, []any{"A"}))
	s.NotNil(Fit(models.DataTypeDate, []any{"2021-01-01"}))
	s.Nil(Fit(models.DataTypeText, []any{"free text"}))
}
