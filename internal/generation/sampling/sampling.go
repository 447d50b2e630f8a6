// Package sampling provides stateless value-sampling primitives. Every
// function takes an explicit *rand.Rand so runs are reproducible given a seed
// and concurrent generators never share mutable seed state.
package sampling

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"datareplicator/internal/generation/models"
	dErrors "datareplicator/pkg/domain-errors"
)

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const digits = "0123456789"

// DefaultWords is the fallback vocabulary for free-text generation.
var DefaultWords = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur",
	"adipiscing", "elit", "sed", "do", "eiusmod", "tempor",
	"incididunt", "ut", "labore", "et", "dolore", "magna", "aliqua",
}

// Numeric samples count values from the named distribution, clipping to
// [min,max] when bounds are set. With asInteger the values are rounded before
// returning.
func Numeric(rng *rand.Rand, dist models.Distribution, params map[string]float64, min, max *float64, count int, asInteger bool) ([]float64, error) {
	if min != nil && max != nil && *max < *min {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "numeric sample: max %v below min %v", *max, *min)
	}

	get := func(key string, fallback float64) float64 {
		if v, ok := params[key]; ok {
			return v
		}
		return fallback
	}

	values := make([]float64, count)
	switch dist {
	case models.DistNormal:
		mean := get("mean", 0)
		std := get("std", 1)
		if std < 0 {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "numeric sample: std must not be negative, got %v", std)
		}
		for i := range values {
			values[i] = rng.NormFloat64()*std + mean
		}
	case models.DistUniform:
		low, high := get("low", 0), get("high", 1)
		if min != nil {
			low = *min
		}
		if max != nil {
			high = *max
		}
		if high < low {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "numeric sample: uniform high %v below low %v", high, low)
		}
		for i := range values {
			values[i] = low + rng.Float64()*(high-low)
		}
	case models.DistPoisson:
		lambda := get("lambda", 5)
		if lambda <= 0 {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "numeric sample: lambda must be positive, got %v", lambda)
		}
		for i := range values {
			values[i] = float64(poisson(rng, lambda))
		}
	case models.DistExponential:
		scale := get("scale", 1)
		if scale <= 0 {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "numeric sample: scale must be positive, got %v", scale)
		}
		for i := range values {
			values[i] = rng.ExpFloat64() * scale
		}
	case models.DistBinomial:
		n := int(get("n", 10))
		p := get("p", 0.5)
		if n < 0 || p < 0 || p > 1 {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "numeric sample: binomial requires n >= 0 and p in [0,1]")
		}
		for i := range values {
			values[i] = float64(binomial(rng, n, p))
		}
	default:
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "numeric sample: unsupported distribution %q", dist)
	}

	for i, v := range values {
		if min != nil && v < *min {
			v = *min
		}
		if max != nil && v > *max {
			v = *max
		}
		if asInteger {
			v = math.Round(v)
		}
		values[i] = v
	}
	return values, nil
}

// Categorical draws count values from a finite set. Nil weights mean a
// uniform draw; otherwise weights are renormalized to sum to 1, tolerating
// input rounding error.
func Categorical(rng *rand.Rand, values []string, weights []float64, count int) ([]string, error) {
	if len(values) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "categorical sample: value set is empty")
	}
	if weights != nil && len(weights) != len(values) {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "categorical sample: %d weights for %d values", len(weights), len(values))
	}

	cumulative := make([]float64, len(values))
	if weights == nil {
		for i := range cumulative {
			cumulative[i] = float64(i+1) / float64(len(values))
		}
	} else {
		var total float64
		for _, w := range weights {
			if w < 0 {
				return nil, dErrors.New(dErrors.CodeInvalidInput, "categorical sample: negative weight")
			}
			total += w
		}
		if total <= 0 {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "categorical sample: weights sum to zero")
		}
		var running float64
		for i, w := range weights {
			running += w / total
			cumulative[i] = running
		}
	}
	// Guard the final bucket against accumulated rounding error.
	cumulative[len(cumulative)-1] = 1

	out := make([]string, count)
	for i := range out {
		u := rng.Float64()
		for j, edge := range cumulative {
			if u <= edge {
				out[i] = values[j]
				break
			}
		}
	}
	return out, nil
}

// Pattern expands a character-class pattern per value: 'L' draws an uppercase
// letter, 'D' a digit, anything else is copied literally.
func Pattern(rng *rand.Rand, pattern string, count int) []string {
	out := make([]string, count)
	for i := range out {
		var b strings.Builder
		for _, ch := range pattern {
			switch ch {
			case 'L':
				b.WriteByte(letters[rng.Intn(len(letters))])
			case 'D':
				b.WriteByte(digits[rng.Intn(len(digits))])
			default:
				b.WriteRune(ch)
			}
		}
		out[i] = b.String()
	}
	return out
}

// Text concatenates words from the vocabulary until the per-value target
// length (drawn uniformly from [minLen,maxLen]) is reached.
func Text(rng *rand.Rand, minLen, maxLen int, words []string, count int) ([]string, error) {
	if minLen < 0 || maxLen < minLen {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "text sample: invalid length range [%d,%d]", minLen, maxLen)
	}
	if len(words) == 0 {
		words = DefaultWords
	}

	out := make([]string, count)
	for i := range out {
		target := minLen
		if maxLen > minLen {
			target += rng.Intn(maxLen - minLen + 1)
		}
		var parts []string
		length := 0
		for length < target {
			w := words[rng.Intn(len(words))]
			extra := len(w)
			if len(parts) > 0 {
				extra++
			}
			if length+extra > maxLen && len(parts) > 0 {
				break
			}
			parts = append(parts, w)
			length += extra
		}
		out[i] = strings.Join(parts, " ")
	}
	return out, nil
}

// IDs builds zero-padded sequential identifiers: prefix + number + suffix.
func IDs(prefix, suffix string, start, width, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = fmt.Sprintf("%s%0*d%s", prefix, width, start+i, suffix)
	}
	return out
}

// ApplyMissing independently replaces each value with nil with probability p.
// A Bernoulli trial per row, not per batch.
func ApplyMissing(rng *rand.Rand, column []any, p float64) []any {
	if p <= 0 {
		return column
	}
	for i := range column {
		if rng.Float64() < p {
			column[i] = nil
		}
	}
	return column
}

// poisson draws via Knuth's algorithm; adequate for the lambdas seen in
// generation configs.
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func binomial(rng *rand.Rand, n int, p float64) int {
	successes := 0
	for i := 0; i < n; i++ {
		if rng.Float64() < p {
			successes++
		}
	}
	return successes
}
