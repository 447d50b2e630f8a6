package generator

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"datareplicator/internal/generation/models"
	"datareplicator/internal/generation/sampling"
)

// Default value ranges applied when a variable carries no constraints.
const (
	defaultNumericMin = 0.0
	defaultNumericMax = 100.0
	defaultTextMin    = 5
	defaultTextMax    = 20
	subjectIDPrefix   = "SUBJ"
	subjectIDWidth    = 6
)

var defaultCategories = []string{"Category A", "Category B", "Category C", "Category D"}

var (
	defaultDateMin = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	defaultDateMax = time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
)

// RandomGenerator synthesizes a domain from declarative rules alone, without
// any source data.
type RandomGenerator struct {
	base
}

// NewRandom constructs a random-strategy generator. A nil seed leaves the run
// non-reproducible.
func NewRandom(cfg models.DomainConfig, seed *int64, logger *slog.Logger) *RandomGenerator {
	return &RandomGenerator{base: newBase(cfg, seed, logger)}
}

// Generate builds the table and finalizes the result. Errors and panics are
// recorded as a FAILED result, never returned.
func (g *RandomGenerator) Generate(ctx context.Context) (out *models.DomainGenerationResult) {
	defer g.recoverPanic(&out)

	g.start()
	g.logger.InfoContext(ctx, "random generation started",
		"domain", g.cfg.DomainName,
		"records", g.cfg.RecordCount,
	)

	table := models.NewTable(g.cfg.DomainName, g.cfg.RecordCount)
	subjects := g.subjectIDs()

	for _, v := range g.cfg.Variables {
		col, err := randomColumn(g.rng, g.cfg.RecordCount, v, subjects)
		if err != nil {
			return g.fail(err)
		}
		if err := table.SetColumn(v.Name, col); err != nil {
			return g.fail(err)
		}
	}

	return g.finalize(table)
}

// subjectIDs synthesizes the distinct subject identifiers when the domain
// declares a subject variable.
func (g *RandomGenerator) subjectIDs() []string {
	hasSubject := false
	for _, v := range g.cfg.Variables {
		if v.Name == models.SubjectVariable {
			hasSubject = true
			break
		}
	}
	if !hasSubject {
		return nil
	}

	n := g.cfg.SubjectCount
	if n <= 0 || n > g.cfg.RecordCount {
		n = g.cfg.RecordCount
	}
	return sampling.IDs(subjectIDPrefix, "", 1, subjectIDWidth, n)
}

// randomColumn generates one column's values. Shared with the statistical
// strategy as its per-variable fallback.
func randomColumn(rng *rand.Rand, count int, v models.VariableConfig, subjects []string) ([]any, error) {
	if v.Name == models.SubjectVariable && len(subjects) > 0 {
		return distributeSubjects(subjects, count), nil
	}

	var (
		col []any
		err error
	)
	switch v.DataType {
	case models.DataTypeNumeric:
		col, err = randomNumeric(rng, count, v)
	case models.DataTypeCategorical:
		col, err = randomCategorical(rng, count, v)
	case models.DataTypeDate:
		col, err = randomDates(rng, count, v)
	default:
		// Unknown types degrade to free text, same as the text type itself.
		col, err = randomText(rng, count, v)
	}
	if err != nil {
		return nil, err
	}

	if c := v.Constraint; c != nil && c.Nullable && c.NullProbability > 0 {
		col = sampling.ApplyMissing(rng, col, c.NullProbability)
	}
	return col, nil
}

// distributeSubjects spreads the distinct identifiers across rows as evenly
// as possible; remainder rows go round-robin to the first subjects.
func distributeSubjects(subjects []string, count int) []any {
	per := count / len(subjects)
	rem := count % len(subjects)

	out := make([]any, 0, count)
	for _, s := range subjects {
		for i := 0; i < per; i++ {
			out = append(out, s)
		}
	}
	for i := 0; i < rem; i++ {
		out = append(out, subjects[i])
	}
	return out
}

func randomNumeric(rng *rand.Rand, count int, v models.VariableConfig) ([]any, error) {
	c := v.Constraint

	effMin, effMax := defaultNumericMin, defaultNumericMax
	var min, max *float64
	if c != nil && c.MinValue != nil {
		effMin = *c.MinValue
		min = c.MinValue
	}
	if c != nil && c.MaxValue != nil {
		effMax = *c.MaxValue
		max = c.MaxValue
	}

	dist := v.Distribution
	if dist == "" || dist == models.DistCategorical || dist == models.DistCustom {
		dist = models.DistNormal
	}

	params := make(map[string]float64, len(v.Params))
	for k, val := range v.Params {
		params[k] = val
	}
	switch dist {
	case models.DistNormal:
		if _, ok := params["mean"]; !ok {
			params["mean"] = (effMin + effMax) / 2
		}
		if _, ok := params["std"]; !ok {
			params["std"] = (effMax - effMin) / 6
		}
		// Normal draws are always clipped to the effective range.
		if min == nil {
			min = &effMin
		}
		if max == nil {
			max = &effMax
		}
	case models.DistUniform:
		if _, ok := params["low"]; !ok {
			params["low"] = effMin
		}
		if _, ok := params["high"]; !ok {
			params["high"] = effMax
		}
	}

	asInteger := params["as_integer"] != 0
	values, err := sampling.Numeric(rng, dist, params, min, max, count, asInteger)
	if err != nil {
		return nil, err
	}
	return floatsToAny(values), nil
}

func randomCategorical(rng *rand.Rand, count int, v models.VariableConfig) ([]any, error) {
	values := defaultCategories
	if c := v.Constraint; c != nil && len(c.AllowedValues) > 0 {
		values = c.AllowedValues
	}

	var weights []float64
	if len(v.Weights) == len(values) {
		weights = v.Weights
	}

	drawn, err := sampling.Categorical(rng, values, weights, count)
	if err != nil {
		return nil, err
	}
	return stringsToAny(drawn), nil
}

func randomDates(rng *rand.Rand, count int, v models.VariableConfig) ([]any, error) {
	start, end := defaultDateMin, defaultDateMax
	if c := v.Constraint; c != nil {
		if c.MinDate != nil {
			start = *c.MinDate
		}
		if c.MaxDate != nil {
			end = *c.MaxDate
		}
	}

	dist := models.DistUniform
	if v.Distribution == models.DistNormal {
		dist = models.DistNormal
	}

	dates, err := sampling.Dates(rng, start, end, dist, count)
	if err != nil {
		return nil, err
	}
	return stringsToAny(dates), nil
}

func randomText(rng *rand.Rand, count int, v models.VariableConfig) ([]any, error) {
	if c := v.Constraint; c != nil && c.FormatPattern != "" {
		return stringsToAny(sampling.Pattern(rng, c.FormatPattern, count)), nil
	}

	minLen, maxLen := defaultTextMin, defaultTextMax
	if v.Params != nil {
		if m, ok := v.Params["min_length"]; ok {
			minLen = int(m)
		}
		if m, ok := v.Params["max_length"]; ok {
			maxLen = int(m)
		}
	}

	texts, err := sampling.Text(rng, minLen, maxLen, nil, count)
	if err != nil {
		return nil, err
	}
	return stringsToAny(texts), nil
}

func floatsToAny(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
