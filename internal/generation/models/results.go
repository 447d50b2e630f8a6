package models

import (
	"time"
)

// Status tracks the lifecycle of a generation run or job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPartial    Status = "partial"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// DefectKind classifies a quality defect.
type DefectKind string

const (
	DefectMissingValues   DefectKind = "missing_values"
	DefectDuplicateValues DefectKind = "duplicate_values"
	DefectOutOfRange      DefectKind = "out_of_range"
	DefectInvalidFormat   DefectKind = "invalid_format"
)

// QualityDefect records one failed (or tolerated) quality check.
type QualityDefect struct {
	Name        string     `json:"name"`
	Kind        DefectKind `json:"kind"`
	Variable    string     `json:"variable"`
	Passed      bool       `json:"passed"`
	IssueCount  int        `json:"issue_count"`
	Description string     `json:"description"`
}

// VariableOutcome summarizes one generated column.
type VariableOutcome struct {
	Variable       string          `json:"variable"`
	DataType       DataType        `json:"data_type"`
	GeneratedCount int             `json:"generated_count"`
	MissingCount   int             `json:"missing_count"`
	UniqueCount    int             `json:"unique_count"`
	MinValue       any             `json:"min_value,omitempty"`
	MaxValue       any             `json:"max_value,omitempty"`
	Mean           *float64        `json:"mean,omitempty"`
	Std            *float64        `json:"std,omitempty"`
	Median         *float64        `json:"median,omitempty"`
	// TopValues holds up to the ten most frequent categories with their
	// observed frequency.
	TopValues map[string]float64 `json:"top_values,omitempty"`
	Defects   []QualityDefect    `json:"defects,omitempty"`
}

// DomainGenerationResult is created when a generator starts and finalized
// exactly once.
type DomainGenerationResult struct {
	DomainName      string                      `json:"domain_name"`
	Strategy        Strategy                    `json:"strategy"`
	Status          Status                      `json:"status"`
	RecordCount     int                         `json:"record_count"`
	SubjectCount    int                         `json:"subject_count"`
	StartTime       time.Time                   `json:"start_time"`
	EndTime         time.Time                   `json:"end_time,omitzero"`
	DurationSeconds float64                     `json:"duration_seconds"`
	Variables       map[string]*VariableOutcome `json:"variables"`
	QualityScore    float64                     `json:"quality_score"`
	ErrorMessage    string                      `json:"error_message,omitempty"`
	Warnings        []string                    `json:"warnings,omitempty"`

	// Table carries the generated data to the reconciler; it is not part of
	// the serialized result.
	Table *Table `json:"-"`
}

// NewDomainResult initializes a pending result with zeroed outcomes for every
// configured variable.
func NewDomainResult(cfg DomainConfig) *DomainGenerationResult {
	r := &DomainGenerationResult{
		DomainName: cfg.DomainName,
		Strategy:   cfg.Strategy,
		Status:     StatusPending,
		StartTime:  time.Now(),
		Variables:  make(map[string]*VariableOutcome, len(cfg.Variables)),
	}
	for _, v := range cfg.Variables {
		r.Variables[v.Name] = &VariableOutcome{
			Variable: v.Name,
			DataType: v.DataType,
		}
	}
	return r
}

// AddWarning appends a human-readable warning to the result.
func (r *DomainGenerationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// GenerationJobResult aggregates the per-domain outcomes of one job. It is
// mutated by the orchestrator as domains complete and is terminal once all
// domains (and reconciliation) finish.
type GenerationJobResult struct {
	JobID               string                             `json:"job_id"`
	Status              Status                             `json:"status"`
	StartTime           time.Time                          `json:"start_time"`
	EndTime             time.Time                          `json:"end_time,omitzero"`
	DurationSeconds     float64                            `json:"duration_seconds"`
	Domains             map[string]*DomainGenerationResult `json:"domains"`
	TotalRecords        int                                `json:"total_records"`
	TotalSubjects       int                                `json:"total_subjects"`
	OverallQualityScore float64                            `json:"overall_quality_score"`
	ErrorMessage        string                             `json:"error_message,omitempty"`
	Warnings            []string                           `json:"warnings,omitempty"`
}

// NewJobResult creates a pending job result.
func NewJobResult(jobID string) *GenerationJobResult {
	return &GenerationJobResult{
		JobID:     jobID,
		Status:    StatusPending,
		StartTime: time.Now(),
		Domains:   make(map[string]*DomainGenerationResult),
	}
}

// AddDomainResult records one domain's outcome and accumulates totals.
func (j *GenerationJobResult) AddDomainResult(r *DomainGenerationResult) {
	j.Domains[r.DomainName] = r
	j.TotalRecords += r.RecordCount
	j.TotalSubjects += r.SubjectCount
	j.Warnings = append(j.Warnings, r.Warnings...)
}

// AggregateStatus derives the job status from its domain outcomes: completed
// iff all domains completed, partial when only some did, failed when none did
// while at least one domain ran.
func (j *GenerationJobResult) AggregateStatus() Status {
	if len(j.Domains) == 0 {
		return StatusFailed
	}
	completed := 0
	for _, r := range j.Domains {
		if r.Status == StatusCompleted {
			completed++
		}
	}
	switch completed {
	case len(j.Domains):
		return StatusCompleted
	case 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// RecalculateQualityScore sets the overall score to the unweighted mean of
// completed domain scores.
func (j *GenerationJobResult) RecalculateQualityScore() float64 {
	var sum float64
	var n int
	for _, r := range j.Domains {
		if r.Status == StatusCompleted {
			sum += r.QualityScore
			n++
		}
	}
	if n == 0 {
		j.OverallQualityScore = 0
		return 0
	}
	j.OverallQualityScore = sum / float64(n)
	return j.OverallQualityScore
}
