// Package generator implements the domain generation strategies. Both
// strategies share a result lifecycle: failures inside Generate are caught at
// the boundary and recorded on the result, never propagated — callers check
// Status instead of handling errors.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"datareplicator/internal/generation/models"
)

// Generator produces a full synthetic table for one domain.
type Generator interface {
	Generate(ctx context.Context) *models.DomainGenerationResult
}

// base carries the state shared by both strategies: config, a private
// randomness source, and the result being assembled.
type base struct {
	cfg    models.DomainConfig
	rng    *rand.Rand
	logger *slog.Logger
	result *models.DomainGenerationResult
}

func newBase(cfg models.DomainConfig, seed *int64, logger *slog.Logger) base {
	src := time.Now().UnixNano()
	if seed != nil {
		src = *seed
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return base{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(src)),
		logger: logger,
		result: models.NewDomainResult(cfg),
	}
}

func (b *base) start() {
	b.result.Status = models.StatusInProgress
}

// fail stamps the result as FAILED with the error's description. Counts stay
// at their zero defaults.
func (b *base) fail(err error) *models.DomainGenerationResult {
	b.result.Status = models.StatusFailed
	b.result.ErrorMessage = err.Error()
	b.stampEnd()
	return b.result
}

// recoverPanic converts a panic inside a strategy into a FAILED result so no
// exception crosses the Generate boundary.
func (b *base) recoverPanic(out **models.DomainGenerationResult) {
	if r := recover(); r != nil {
		b.logger.Error("generation panicked", "domain", b.cfg.DomainName, "panic", r)
		*out = b.fail(fmt.Errorf("generation panicked: %v", r))
	}
}

// finalize computes per-variable outcomes, runs the quality checks, scores
// the table and stamps the result COMPLETED.
func (b *base) finalize(table *models.Table) *models.DomainGenerationResult {
	b.updateStats(table)

	defects := evaluateQuality(b.cfg, table)
	for i := range defects {
		if outcome, ok := b.result.Variables[defects[i].Variable]; ok {
			outcome.Defects = append(outcome.Defects, defects[i])
		}
	}
	b.result.QualityScore = qualityScore(defects, table.Rows())

	b.result.Table = table
	b.result.Status = models.StatusCompleted
	b.stampEnd()
	return b.result
}

func (b *base) stampEnd() {
	b.result.EndTime = time.Now()
	b.result.DurationSeconds = b.result.EndTime.Sub(b.result.StartTime).Seconds()
}

func (b *base) updateStats(table *models.Table) {
	b.result.RecordCount = table.Rows()

	if table.HasColumn(models.SubjectVariable) {
		b.result.SubjectCount = table.DistinctCount(models.SubjectVariable)
	}

	for _, v := range b.cfg.Variables {
		col, ok := table.Column(v.Name)
		if !ok {
			continue
		}
		outcome := b.result.Variables[v.Name]
		outcome.GeneratedCount = len(col)
		outcome.MissingCount = countMissing(col)
		outcome.UniqueCount = table.DistinctCount(v.Name)

		switch v.DataType {
		case models.DataTypeNumeric:
			numericStats(outcome, col)
		case models.DataTypeCategorical:
			categoricalStats(outcome, col)
		case models.DataTypeDate:
			dateStats(outcome, col)
		}
	}
}

func countMissing(col []any) int {
	n := 0
	for _, v := range col {
		if v == nil {
			n++
		}
	}
	return n
}

func numericStats(outcome *models.VariableOutcome, col []any) {
	var values []float64
	for _, raw := range col {
		if v, ok := raw.(float64); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return
	}
	sort.Float64s(values)

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
	median := values[len(values)/2]
	if len(values)%2 == 0 {
		median = (values[len(values)/2-1] + values[len(values)/2]) / 2
	}

	outcome.MinValue = values[0]
	outcome.MaxValue = values[len(values)-1]
	outcome.Mean = &mean
	outcome.Std = &std
	outcome.Median = &median
}

func categoricalStats(outcome *models.VariableOutcome, col []any) {
	counts := make(map[string]int)
	total := 0
	for _, raw := range col {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		counts[s]++
		total++
	}
	if total == 0 {
		return
	}

	type freq struct {
		value string
		n     int
	}
	ordered := make([]freq, 0, len(counts))
	for v, n := range counts {
		ordered = append(ordered, freq{v, n})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].n != ordered[j].n {
			return ordered[i].n > ordered[j].n
		}
		return ordered[i].value < ordered[j].value
	})
	if len(ordered) > 10 {
		ordered = ordered[:10]
	}

	outcome.TopValues = make(map[string]float64, len(ordered))
	for _, f := range ordered {
		outcome.TopValues[f.value] = float64(f.n) / float64(total)
	}
}

// dateStats relies on ISO dates sorting lexicographically.
func dateStats(outcome *models.VariableOutcome, col []any) {
	var min, max string
	for _, raw := range col {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if min == "" || s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if min != "" {
		outcome.MinValue = min
		outcome.MaxValue = max
	}
}
