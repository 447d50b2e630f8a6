// Package fitting estimates per-variable statistical models from source
// columns. Fitting never mutates its input and has no side effects; columns
// with no usable values yield no model, which callers treat as "no
// statistical basis" and fall back to random generation.
package fitting

import (
	"fmt"
	"math"
	"sort"
	"time"

	"datareplicator/internal/generation/models"
)

// NumericSummary is a parametric summary of a numeric column, optionally
// carrying a kernel density estimator for non-parametric resampling.
type NumericSummary struct {
	N      int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	Median float64
	Q1     float64
	Q3     float64
	KDE    *KDE
}

// CategoricalSummary is an empirical frequency table, values in
// first-appearance order, probabilities normalized to sum to 1.
type CategoricalSummary struct {
	Values []string
	Probs  []float64
}

// TemporalSummary holds independent marginal distributions over year, month
// and day-of-month. The marginals are sampled independently at generation
// time, so invalid combinations are possible and repaired downstream.
type TemporalSummary struct {
	MinDate    time.Time
	MaxDate    time.Time
	Years      []int
	YearProbs  []float64
	Months     []int
	MonthProbs []float64
	Days       []int
	DayProbs   []float64
}

// Model is the tagged union produced by fitting one column. Exactly one of
// the summaries is set, matching Kind.
type Model struct {
	Kind        models.DataType
	Numeric     *NumericSummary
	Categorical *CategoricalSummary
	Temporal    *TemporalSummary
}

// Fit estimates a model for one column according to its declared type.
// Returns nil when the column holds no usable values. Text columns have no
// statistical model.
func Fit(dataType models.DataType, column []any) *Model {
	switch dataType {
	case models.DataTypeNumeric:
		return FitNumeric(column)
	case models.DataTypeCategorical:
		return FitCategorical(column)
	case models.DataTypeDate:
		return FitTemporal(column)
	default:
		return nil
	}
}

// FitNumeric computes mean, population std, min/max, median and quartiles
// over the cleaned values, and attempts a Gaussian KDE. Degenerate data
// (fewer than two points, zero variance) drops the KDE only — the parametric
// summary still stands.
func FitNumeric(column []any) *Model {
	values := cleanNumeric(column)
	if len(values) == 0 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(values)))

	s := &NumericSummary{
		N:      len(values),
		Mean:   mean,
		Std:    std,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: percentile(sorted, 50),
		Q1:     percentile(sorted, 25),
		Q3:     percentile(sorted, 75),
	}
	if kde, err := NewKDE(values); err == nil {
		s.KDE = kde
	}

	return &Model{Kind: models.DataTypeNumeric, Numeric: s}
}

// FitCategorical computes the empirical frequency table of the cleaned
// values, normalized to sum to 1.
func FitCategorical(column []any) *Model {
	counts := make(map[string]int)
	var order []string
	total := 0
	for _, raw := range column {
		if raw == nil {
			continue
		}
		v := asString(raw)
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
		total++
	}
	if total == 0 {
		return nil
	}

	s := &CategoricalSummary{
		Values: order,
		Probs:  make([]float64, len(order)),
	}
	for i, v := range order {
		s.Probs[i] = float64(counts[v]) / float64(total)
	}
	return &Model{Kind: models.DataTypeCategorical, Categorical: s}
}

// dateLayouts are the input formats the fitter tolerates; unparsable entries
// are dropped rather than failing the fit.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02-Jan-2006",
}

// FitTemporal parses the column to calendar dates and computes independent
// marginal distributions over year, month and day-of-month.
func FitTemporal(column []any) *Model {
	var dates []time.Time
	for _, raw := range column {
		if raw == nil {
			continue
		}
		if d, ok := parseDate(raw); ok {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil
	}

	s := &TemporalSummary{MinDate: dates[0], MaxDate: dates[0]}
	for _, d := range dates {
		if d.Before(s.MinDate) {
			s.MinDate = d
		}
		if d.After(s.MaxDate) {
			s.MaxDate = d
		}
	}

	years := func(d time.Time) int { return d.Year() }
	months := func(d time.Time) int { return int(d.Month()) }
	days := func(d time.Time) int { return d.Day() }
	s.Years, s.YearProbs = marginal(dates, years)
	s.Months, s.MonthProbs = marginal(dates, months)
	s.Days, s.DayProbs = marginal(dates, days)

	return &Model{Kind: models.DataTypeDate, Temporal: s}
}

func marginal(dates []time.Time, component func(time.Time) int) ([]int, []float64) {
	counts := make(map[int]int)
	var order []int
	for _, d := range dates {
		c := component(d)
		if _, seen := counts[c]; !seen {
			order = append(order, c)
		}
		counts[c]++
	}
	probs := make([]float64, len(order))
	for i, c := range order {
		probs[i] = float64(counts[c]) / float64(len(dates))
	}
	return order, probs
}

func parseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, v); err == nil {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

func cleanNumeric(column []any) []float64 {
	var out []float64
	for _, raw := range column {
		if raw == nil {
			continue
		}
		if v, ok := toFloat(raw); ok {
			out = append(out, v)
		}
	}
	return out
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func asString(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", raw)
}

// percentile interpolates linearly between order statistics, matching the
// default numpy behavior. Input must be sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
