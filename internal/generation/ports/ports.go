// Package ports declares the collaborator interfaces the generation service
// depends on. Implementations are injected at wiring time; the service never
// reaches for package-level singletons.
package ports

import (
	"context"
	"log/slog"
	"time"

	"datareplicator/internal/generation/models"
	"datareplicator/internal/generation/reconcile"
)

// DataProvider supplies the current best-known source table for a domain.
// A nil or empty table means no source data is available.
type DataProvider interface {
	LoadTable(ctx context.Context, domainName string) (*models.Table, error)
}

// RelationshipProvider supplies the relationship graph, consumed once per
// job after all domains complete. Read-only.
type RelationshipProvider interface {
	RelationshipGraph(ctx context.Context) (reconcile.Graph, error)
}

// JobStore persists generation job results.
type JobStore interface {
	Save(ctx context.Context, result *models.GenerationJobResult) error
	Get(ctx context.Context, jobID string) (*models.GenerationJobResult, error)
	List(ctx context.Context) ([]*models.GenerationJobResult, error)
}

// Lifecycle event kinds emitted by the orchestrator.
const (
	EventJobCreated      = "generation.job.created"
	EventJobFinished     = "generation.job.finished"
	EventDomainCompleted = "generation.domain.completed"
	EventDomainFailed    = "generation.domain.failed"
)

// Event is a generation lifecycle event emitted by the orchestrator.
type Event struct {
	Kind      string    `json:"kind"`
	JobID     string    `json:"job_id"`
	Domain    string    `json:"domain,omitempty"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher fans generation lifecycle events out to interested systems.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublishEvent emits an event through the publisher when one is configured
// and always logs it, so the lifecycle stays observable without a broker.
func PublishEvent(ctx context.Context, logger *slog.Logger, publisher EventPublisher, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if logger != nil {
		logger.InfoContext(ctx, "generation event",
			"kind", event.Kind,
			"job_id", event.JobID,
			"domain", event.Domain,
			"status", event.Status,
		)
	}
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil && logger != nil {
		logger.ErrorContext(ctx, "event publish failed", "kind", event.Kind, "job_id", event.JobID, "error", err)
	}
}
