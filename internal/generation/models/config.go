package models

import (
	"fmt"
	"time"

	dErrors "datareplicator/pkg/domain-errors"
)

// SubjectVariable is the conventional subject-identifier column name for
// clinical-trial style domains.
const SubjectVariable = "USUBJID"

// DataType categorizes a variable for sampling and fitting.
type DataType string

const (
	DataTypeNumeric     DataType = "numeric"
	DataTypeCategorical DataType = "categorical"
	DataTypeDate        DataType = "date"
	DataTypeText        DataType = "text"
)

// IsValid checks if the data type is one of the supported enum values.
func (d DataType) IsValid() bool {
	switch d {
	case DataTypeNumeric, DataTypeCategorical, DataTypeDate, DataTypeText:
		return true
	}
	return false
}

// ParseDataType creates a DataType from a string, validating it.
func ParseDataType(s string) (DataType, error) {
	d := DataType(s)
	if !d.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported data type %q", s)
	}
	return d, nil
}

// Distribution names a sampling distribution family.
type Distribution string

const (
	DistNormal      Distribution = "normal"
	DistUniform     Distribution = "uniform"
	DistPoisson     Distribution = "poisson"
	DistExponential Distribution = "exponential"
	DistBinomial    Distribution = "binomial"
	DistCategorical Distribution = "categorical"
	DistCustom      Distribution = "custom"
)

// IsValid checks if the distribution is one of the supported families.
func (d Distribution) IsValid() bool {
	switch d {
	case DistNormal, DistUniform, DistPoisson, DistExponential, DistBinomial, DistCategorical, DistCustom:
		return true
	}
	return false
}

// Strategy selects how a domain's table is synthesized.
type Strategy string

const (
	StrategyRandom      Strategy = "random"
	StrategyStatistical Strategy = "statistical"
	StrategyCopy        Strategy = "copy"
	StrategyRelational  Strategy = "relational"
	StrategyDerived     Strategy = "derived"
)

// IsValid checks if the strategy is a known enum value.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyRandom, StrategyStatistical, StrategyCopy, StrategyRelational, StrategyDerived:
		return true
	}
	return false
}

// IsExecutable reports whether the core engine implements the strategy.
func (s Strategy) IsExecutable() bool {
	return s == StrategyRandom || s == StrategyStatistical
}

// Constraint bounds the values a variable may take.
type Constraint struct {
	MinValue        *float64   `json:"min_value,omitempty"`
	MaxValue        *float64   `json:"max_value,omitempty"`
	MinDate         *time.Time `json:"min_date,omitempty"`
	MaxDate         *time.Time `json:"max_date,omitempty"`
	AllowedValues   []string   `json:"allowed_values,omitempty"`
	FormatPattern   string     `json:"format_pattern,omitempty"`
	Unique          bool       `json:"unique"`
	Nullable        bool       `json:"nullable"`
	NullProbability float64    `json:"null_probability"`
}

// Validate rejects contradictory or out-of-range constraint settings.
func (c *Constraint) Validate() error {
	if c == nil {
		return nil
	}
	if c.NullProbability < 0 || c.NullProbability > 1 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "null_probability must be between 0 and 1, got %v", c.NullProbability)
	}
	if c.MinValue != nil && c.MaxValue != nil && *c.MaxValue < *c.MinValue {
		return dErrors.Newf(dErrors.CodeInvalidInput, "max_value %v is below min_value %v", *c.MaxValue, *c.MinValue)
	}
	if c.MinDate != nil && c.MaxDate != nil && c.MaxDate.Before(*c.MinDate) {
		return dErrors.New(dErrors.CodeInvalidInput, "max_date is before min_date")
	}
	return nil
}

// VariableConfig describes how one column is generated. Immutable once a
// generation run starts.
type VariableConfig struct {
	Name         string             `json:"name"`
	DataType     DataType           `json:"data_type"`
	Distribution Distribution       `json:"distribution,omitempty"`
	Params       map[string]float64 `json:"params,omitempty"`
	// Weights pair with Constraint.AllowedValues for categorical draws.
	Weights    []float64   `json:"weights,omitempty"`
	Constraint *Constraint `json:"constraint,omitempty"`
}

// Validate checks the variable configuration before any sampling happens.
func (v *VariableConfig) Validate() error {
	if v.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "variable name is required")
	}
	if !v.DataType.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "variable %s: unsupported data type %q", v.Name, v.DataType)
	}
	if v.Distribution != "" && !v.Distribution.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "variable %s: unsupported distribution %q", v.Name, v.Distribution)
	}
	if len(v.Weights) > 0 {
		if v.Constraint == nil || len(v.Constraint.AllowedValues) != len(v.Weights) {
			return dErrors.Newf(dErrors.CodeInvalidInput, "variable %s: weights must match allowed_values", v.Name)
		}
	}
	if err := v.Constraint.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("variable %s", v.Name))
	}
	return nil
}

// DomainConfig describes one domain's generation run. Owned by the caller and
// read-only to the engine.
type DomainConfig struct {
	DomainName   string           `json:"domain_name"`
	RecordCount  int              `json:"record_count"`
	SubjectCount int              `json:"subject_count"`
	Strategy     Strategy         `json:"strategy"`
	Variables    []VariableConfig `json:"variables"`
	SourceDomain string           `json:"source_domain,omitempty"`
}

// Validate checks the whole domain configuration up front so generation never
// starts on a config the sampler would reject.
func (c *DomainConfig) Validate() error {
	if c.DomainName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "domain_name is required")
	}
	if c.RecordCount <= 0 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "domain %s: record_count must be positive, got %d", c.DomainName, c.RecordCount)
	}
	if c.SubjectCount < 0 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "domain %s: subject_count must not be negative", c.DomainName)
	}
	if !c.Strategy.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "domain %s: unknown strategy %q", c.DomainName, c.Strategy)
	}
	if !c.Strategy.IsExecutable() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "domain %s: strategy %q is not implemented by the generation core", c.DomainName, c.Strategy)
	}
	if len(c.Variables) == 0 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "domain %s: at least one variable is required", c.DomainName)
	}

	seen := make(map[string]struct{}, len(c.Variables))
	for i := range c.Variables {
		v := &c.Variables[i]
		if err := v.Validate(); err != nil {
			return err
		}
		if _, dup := seen[v.Name]; dup {
			return dErrors.Newf(dErrors.CodeInvalidInput, "domain %s: duplicate variable %s", c.DomainName, v.Name)
		}
		seen[v.Name] = struct{}{}
	}
	return nil
}
