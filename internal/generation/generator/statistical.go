package generator

import (
	"context"
	"fmt"
	"log/slog"

	"datareplicator/internal/generation/fitting"
	"datareplicator/internal/generation/models"
	"datareplicator/internal/generation/sampling"
	dErrors "datareplicator/pkg/domain-errors"
)

// StatisticalGenerator fits per-variable models from a source table and
// samples new values from them. Variables with no statistical basis fall back
// to the random per-variable path; the fallback is logged and recorded as a
// warning so callers can tell which strategy produced each column.
type StatisticalGenerator struct {
	base
	source *models.Table
	models map[string]*fitting.Model
}

// NewStatistical constructs a statistical-strategy generator over the given
// source table.
func NewStatistical(cfg models.DomainConfig, source *models.Table, seed *int64, logger *slog.Logger) *StatisticalGenerator {
	return &StatisticalGenerator{
		base:   newBase(cfg, seed, logger),
		source: source,
		models: make(map[string]*fitting.Model),
	}
}

// Generate fits, samples and finalizes. A missing or empty source table is
// fatal for this domain only.
func (g *StatisticalGenerator) Generate(ctx context.Context) (out *models.DomainGenerationResult) {
	defer g.recoverPanic(&out)

	g.start()
	g.logger.InfoContext(ctx, "statistical generation started",
		"domain", g.cfg.DomainName,
		"records", g.cfg.RecordCount,
	)

	if g.source.IsEmpty() {
		return g.fail(dErrors.New(dErrors.CodeUnavailable,
			"source data is required for statistical generation but was not provided"))
	}

	g.fitModels()

	table := models.NewTable(g.cfg.DomainName, g.cfg.RecordCount)
	for _, v := range g.cfg.Variables {
		col, err := g.generateColumn(ctx, v)
		if err != nil {
			return g.fail(err)
		}
		if err := table.SetColumn(v.Name, col); err != nil {
			return g.fail(err)
		}
	}

	return g.finalize(table)
}

// fitModels estimates a model for every configured variable present in the
// source. Absent columns and degenerate fits simply leave no model behind.
func (g *StatisticalGenerator) fitModels() {
	for _, v := range g.cfg.Variables {
		col, ok := g.source.Column(v.Name)
		if !ok {
			continue
		}
		if m := fitting.Fit(v.DataType, col); m != nil {
			g.models[v.Name] = m
		}
	}
}

func (g *StatisticalGenerator) generateColumn(ctx context.Context, v models.VariableConfig) ([]any, error) {
	model, ok := g.models[v.Name]
	if !ok {
		g.logger.WarnContext(ctx, "no fitted model, falling back to random generation",
			"domain", g.cfg.DomainName,
			"variable", v.Name,
		)
		g.result.AddWarning(fmt.Sprintf("variable %s: no fitted model, generated randomly", v.Name))
		return randomColumn(g.rng, g.cfg.RecordCount, v, nil)
	}

	var (
		col []any
		err error
	)
	switch model.Kind {
	case models.DataTypeNumeric:
		col = g.sampleNumeric(model.Numeric, v.Constraint)
	case models.DataTypeCategorical:
		col, err = g.sampleCategorical(model.Categorical, v.Constraint)
	case models.DataTypeDate:
		col = g.sampleTemporal(model.Temporal)
	}
	if err != nil {
		return nil, err
	}

	if c := v.Constraint; c != nil && c.Nullable && c.NullProbability > 0 {
		col = sampling.ApplyMissing(g.rng, col, c.NullProbability)
	}
	return col, nil
}

// sampleNumeric resamples the fitted density when one exists, else draws
// normal(mean,std). Values are clipped to the fitted range unless the
// constraint overrides a bound.
func (g *StatisticalGenerator) sampleNumeric(s *fitting.NumericSummary, c *models.Constraint) []any {
	var values []float64
	if s.KDE != nil {
		values = s.KDE.Resample(g.rng, g.cfg.RecordCount)
	} else {
		values = make([]float64, g.cfg.RecordCount)
		for i := range values {
			values[i] = g.rng.NormFloat64()*s.Std + s.Mean
		}
	}

	min, max := s.Min, s.Max
	if c != nil && c.MinValue != nil {
		min = *c.MinValue
	}
	if c != nil && c.MaxValue != nil {
		max = *c.MaxValue
	}
	for i, v := range values {
		if v < min {
			v = min
		}
		if v > max {
			v = max
		}
		values[i] = v
	}
	return floatsToAny(values)
}

// sampleCategorical draws from the empirical frequency table, restricted to
// the constraint's allowed-value set when one is present. The restricted
// probabilities are renormalized; an allowed set that excludes every fitted
// value leaves the fitted table in force.
func (g *StatisticalGenerator) sampleCategorical(s *fitting.CategoricalSummary, c *models.Constraint) ([]any, error) {
	values, probs := s.Values, s.Probs

	if c != nil && len(c.AllowedValues) > 0 {
		allowed := make(map[string]struct{}, len(c.AllowedValues))
		for _, v := range c.AllowedValues {
			allowed[v] = struct{}{}
		}
		var fv []string
		var fp []float64
		for i, v := range values {
			if _, ok := allowed[v]; ok {
				fv = append(fv, v)
				fp = append(fp, probs[i])
			}
		}
		if len(fv) > 0 {
			values, probs = fv, fp
		}
	}

	drawn, err := sampling.Categorical(g.rng, values, probs, g.cfg.RecordCount)
	if err != nil {
		return nil, err
	}
	return stringsToAny(drawn), nil
}

// sampleTemporal draws year, month and day independently from their marginal
// distributions and repairs invalid combinations deterministically.
func (g *StatisticalGenerator) sampleTemporal(s *fitting.TemporalSummary) []any {
	out := make([]any, g.cfg.RecordCount)
	for i := range out {
		year := s.Years[g.weightedIndex(s.YearProbs)]
		month := s.Months[g.weightedIndex(s.MonthProbs)]
		day := s.Days[g.weightedIndex(s.DayProbs)]
		out[i] = sampling.RepairDate(year, month, day).Format(sampling.DateLayout)
	}
	return out
}

func (g *StatisticalGenerator) weightedIndex(probs []float64) int {
	u := g.rng.Float64()
	var running float64
	for i, p := range probs {
		running += p
		if u <= running {
			return i
		}
	}
	return len(probs) - 1
}
