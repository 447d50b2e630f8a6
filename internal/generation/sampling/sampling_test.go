package sampling

import (
	"math"
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/suite"

	"datareplicator/internal/generation/models"
	dErrors "datareplicator/pkg/domain-errors"
)

const testSeed = 42

type SamplingSuite struct {
	suite.Suite
	rng *rand.Rand
}

func TestSamplingSuite(t *testing.T) {
	suite.Run(t, new(SamplingSuite))
}

func (s *SamplingSuite) SetupTest() {
	s.rng = rand.New(rand.NewSource(testSeed))
}

// ==== Numeric ====

func (s *SamplingSuite) TestNumericUniform() {
	min, max := 10.0, 20.0

	values, err := Numeric(s.rng, models.DistUniform, nil, &min, &max, 1000, false)
	s.Require().NoError(err)
	s.Len(values, 1000)
	for _, v := range values {
		s.GreaterOrEqual(v, min)
		s.LessOrEqual(v, max)
	}
}

func (s *SamplingSuite) TestNumericNormal() {
	s.Run("mean converges to parameter", func() {
		params := map[string]float64{"mean": 50, "std": 5}
		values, err := Numeric(s.rng, models.DistNormal, params, nil, nil, 5000, false)
		s.Require().NoError(err)

		var sum float64
		for _, v := range values {
			sum += v
		}
		s.InDelta(50, sum/float64(len(values)), 0.5)
	})

	s.Run("bounds clip the tails", func() {
		min, max := 45.0, 55.0
		params := map[string]float64{"mean": 50, "std": 20}
		values, err := Numeric(s.rng, models.DistNormal, params, &min, &max, 1000, false)
		s.Require().NoError(err)
		for _, v := range values {
			s.GreaterOrEqual(v, min)
			s.LessOrEqual(v, max)
		}
	})

	s.Run("as integer rounds every value", func() {
		params := map[string]float64{"mean": 50, "std": 5}
		values, err := Numeric(s.rng, models.DistNormal, params, nil, nil, 100, true)
		s.Require().NoError(err)
		for _, v := range values {
			s.Equal(math.Round(v), v)
		}
	})
}

func (s *SamplingSuite) TestNumericPoisson() {
	params := map[string]float64{"lambda": 4}
	values, err := Numeric(s.rng, models.DistPoisson, params, nil, nil, 5000, false)
	s.Require().NoError(err)

	var sum float64
	for _, v := range values {
		s.GreaterOrEqual(v, 0.0)
		sum += v
	}
	s.InDelta(4, sum/float64(len(values)), 0.2)
}

func (s *SamplingSuite) TestNumericBinomial() {
	params := map[string]float64{"n": 10, "p": 0.5}
	values, err := Numeric(s.rng, models.DistBinomial, params, nil, nil, 2000, false)
	s.Require().NoError(err)

	var sum float64
	for _, v := range values {
		s.GreaterOrEqual(v, 0.0)
		s.LessOrEqual(v, 10.0)
		sum += v
	}
	s.InDelta(5, sum/float64(len(values)), 0.3)
}

func (s *SamplingSuite) TestNumericInvalidParams() {
	s.Run("negative std", func() {
		_, err := Numeric(s.rng, models.DistNormal, map[string]float64{"std": -1}, nil, nil, 10, false)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("non-positive lambda", func() {
		_, err := Numeric(s.rng, models.DistPoisson, map[string]float64{"lambda": 0}, nil, nil, 10, false)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("binomial p out of range", func() {
		_, err := Numeric(s.rng, models.DistBinomial, map[string]float64{"n": 10, "p": 1.5}, nil, nil, 10, false)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("max below min", func() {
		min, max := 10.0, 5.0
		_, err := Numeric(s.rng, models.DistUniform, nil, &min, &max, 10, false)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unsupported distribution", func() {
		_, err := Numeric(s.rng, models.DistCategorical, nil, nil, nil, 10, false)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// ==== Categorical ====

func (s *SamplingSuite) TestCategorical() {
	s.Run("weighted frequencies converge", func() {
		values, err := Categorical(s.rng, []string{"A", "B"}, []float64{0.75, 0.25}, 4000)
		s.Require().NoError(err)

		countA := 0
		for _, v := range values {
			if v == "A" {
				countA++
			}
		}
		s.InDelta(0.75, float64(countA)/4000, 0.03)
	})

	s.Run("weights are renormalized", func() {
		values, err := Categorical(s.rng, []string{"A", "B"}, []float64{3, 1}, 4000)
		s.Require().NoError(err)

		countA := 0
		for _, v := range values {
			if v == "A" {
				countA++
			}
		}
		s.InDelta(0.75, float64(countA)/4000, 0.03)
	})

	s.Run("draws stay in the value set", func() {
		values, err := Categorical(s.rng, []string{"X", "Y", "Z"}, nil, 500)
		s.Require().NoError(err)
		for _, v := range values {
			s.Contains([]string{"X", "Y", "Z"}, v)
		}
	})

	s.Run("empty value set rejected", func() {
		_, err := Categorical(s.rng, nil, nil, 10)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("weight count mismatch rejected", func() {
		_, err := Categorical(s.rng, []string{"A", "B"}, []float64{1}, 10)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("zero weight sum rejected", func() {
		_, err := Categorical(s.rng, []string{"A", "B"}, []float64{0, 0}, 10)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// ==== Pattern, text and IDs ====

func (s *SamplingSuite) TestPattern() {
	values := Pattern(s.rng, "LL-DDD", 100)
	s.Len(values, 100)

	re := regexp.MustCompile(`^[A-Z]{2}-[0-9]{3}$`)
	for _, v := range values {
		s.Regexp(re, v)
	}
}

func (s *SamplingSuite) TestText() {
	s.Run("respects max length", func() {
		values, err := Text(s.rng, 5, 20, nil, 200)
		s.Require().NoError(err)
		for _, v := range values {
			s.NotEmpty(v)
			s.LessOrEqual(len(v), 20)
		}
	})

	s.Run("invalid range rejected", func() {
		_, err := Text(s.rng, 10, 5, nil, 10)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *SamplingSuite) TestIDs() {
	ids := IDs("SUBJ", "", 1, 6, 3)
	s.Equal([]string{"SUBJ000001", "SUBJ000002", "SUBJ000003"}, ids)
}

// ==== Missing values ====

func (s *SamplingSuite) TestApplyMissing() {
	s.Run("observed fraction converges to probability", func() {
		column := make([]any, 4000)
		for i := range column {
			column[i] = float64(i)
		}
		column = ApplyMissing(s.rng, column, 0.3)

		missing := 0
		for _, v := range column {
			if v == nil {
				missing++
			}
		}
		s.InDelta(0.3, float64(missing)/4000, 0.03)
	})

	s.Run("zero probability is a no-op", func() {
		column := []any{1.0, 2.0, 3.0}
		column = ApplyMissing(s.rng, column, 0)
		for _, v := range column {
			s.NotNil(v)
		}
	})
}

// ==== Reproducibility ====

func (s *SamplingSuite) TestSeedReproducibility() {
	a := rand.New(rand.NewSource(7))
	b := rand.New(rand.NewSource(7))

	va, err := Numeric(a, models.DistNormal, map[string]float64{"mean": 10, "std": 2}, nil, nil, 100, false)
	s.Require().NoError(err)
	vb, err := Numeric(b, models.DistNormal, map[string]float64{"mean": 10, "std": 2}, nil, nil, 100, false)
	s.Require().NoError(err)
	s.Equal(va, vb)
}
