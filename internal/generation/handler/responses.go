package handler

import "datareplicator/internal/generation/models"

// CreateJobResponse acknowledges a created job before it runs.
type CreateJobResponse struct {
	JobID  string        `json:"job_id"`
	Status models.Status `json:"status"`
}

// ListJobsResponse wraps the job list so the payload stays extensible.
type ListJobsResponse struct {
	Jobs []*models.GenerationJobResult `json:"jobs"`
}
