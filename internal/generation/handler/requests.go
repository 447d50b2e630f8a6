package handler

import (
	"time"

	"datareplicator/internal/generation/models"
	"datareplicator/internal/generation/service"
)

// CreateJobRequest is the body of POST /generation/jobs.
type CreateJobRequest struct {
	Domains               []models.DomainConfig `json:"domains"`
	Seed                  *int64                `json:"seed,omitempty"`
	Parallel              bool                  `json:"parallel"`
	PreserveRelationships bool                  `json:"preserve_relationships"`
	DomainTimeoutSeconds  int                   `json:"domain_timeout_seconds,omitempty"`
}

// Validate delegates to the job configuration checks so transport and
// service agree on what a valid job looks like.
func (r CreateJobRequest) Validate() error {
	cfg := r.toJobConfig()
	return cfg.Validate()
}

func (r CreateJobRequest) toJobConfig() service.JobConfig {
	return service.JobConfig{
		Domains:               r.Domains,
		Seed:                  r.Seed,
		Parallel:              r.Parallel,
		PreserveRelationships: r.PreserveRelationships,
		DomainTimeout:         time.Duration(r.DomainTimeoutSeconds) * time.Second,
	}
}
