package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func domainResult(name string, status Status, score float64) *DomainGenerationResult {
	return &DomainGenerationResult{
		DomainName:   name,
		Status:       status,
		QualityScore: score,
	}
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all completed", []Status{StatusCompleted, StatusCompleted}, StatusCompleted},
		{"some completed", []Status{StatusCompleted, StatusFailed}, StatusPartial},
		{"none completed", []Status{StatusFailed, StatusFailed}, StatusFailed},
		{"no domains", nil, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJobResult("job-1")
			for i, st := range tt.statuses {
				job.AddDomainResult(domainResult(string(rune('A'+i)), st, 0))
			}
			assert.Equal(t, tt.want, job.AggregateStatus())
		})
	}
}

func TestRecalculateQualityScore(t *testing.T) {
	t.Run("mean over completed domains only", func(t *testing.T) {
		job := NewJobResult("job-1")
		job.AddDomainResult(domainResult("DM", StatusCompleted, 90))
		job.AddDomainResult(domainResult("LB", StatusCompleted, 70))
		job.AddDomainResult(domainResult("AE", StatusFailed, 0))

		assert.InDelta(t, 80, job.RecalculateQualityScore(), 1e-9)
		assert.InDelta(t, 80, job.OverallQualityScore, 1e-9)
	})

	t.Run("zero when nothing completed", func(t *testing.T) {
		job := NewJobResult("job-1")
		job.AddDomainResult(domainResult("DM", StatusFailed, 0))
		assert.Zero(t, job.RecalculateQualityScore())
	})
}

func TestAddDomainResultAccumulates(t *testing.T) {
	job := NewJobResult("job-1")

	dm := domainResult("DM", StatusCompleted, 100)
	dm.RecordCount = 50
	dm.SubjectCount = 10
	dm.Warnings = []string{"w1"}
	job.AddDomainResult(dm)

	lb := domainResult("LB", StatusCompleted, 100)
	lb.RecordCount = 200
	lb.SubjectCount = 10
	job.AddDomainResult(lb)

	assert.Equal(t, 250, job.TotalRecords)
	assert.Equal(t, 20, job.TotalSubjects)
	assert.Equal(t, []string{"w1"}, job.Warnings)
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusPartial.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestNewDomainResultZeroedOutcomes(t *testing.T) {
	cfg := DomainConfig{
		DomainName:  "DM",
		RecordCount: 10,
		Strategy:    StrategyRandom,
		Variables: []VariableConfig{
			{Name: "AGE", DataType: DataTypeNumeric},
			{Name: "SEX", DataType: DataTypeCategorical},
		},
	}

	r := NewDomainResult(cfg)
	assert.Equal(t, StatusPending, r.Status)
	assert.Len(t, r.Variables, 2)
	assert.Equal(t, DataTypeNumeric, r.Variables["AGE"].DataType)
	assert.Zero(t, r.Variables["AGE"].GeneratedCount)
}
