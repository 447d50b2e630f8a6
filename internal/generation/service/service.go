// Package service orchestrates generation jobs: it validates job
// configurations, fans domain generation out across workers, reconciles
// cross-domain relationships and persists the aggregated result.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"datareplicator/internal/generation/generator"
	"datareplicator/internal/generation/metrics"
	"datareplicator/internal/generation/models"
	"datareplicator/internal/generation/ports"
	"datareplicator/internal/generation/reconcile"
	dErrors "datareplicator/pkg/domain-errors"
)

const (
	defaultDomainTimeout = 5 * time.Minute
	maxParallelDomains   = 4
)

// JobConfig is the caller-supplied plan for one generation job.
type JobConfig struct {
	Domains []models.DomainConfig `json:"domains"`
	// Seed makes the whole job reproducible. Each domain derives its own
	// seed from it so parallel and sequential runs produce the same data.
	Seed                  *int64        `json:"seed,omitempty"`
	Parallel              bool          `json:"parallel"`
	PreserveRelationships bool          `json:"preserve_relationships"`
	DomainTimeout         time.Duration `json:"-"`
}

// Validate checks every domain configuration and rejects duplicates up front.
func (c *JobConfig) Validate() error {
	if len(c.Domains) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one domain is required")
	}
	seen := make(map[string]struct{}, len(c.Domains))
	for i := range c.Domains {
		if err := c.Domains[i].Validate(); err != nil {
			return err
		}
		name := c.Domains[i].DomainName
		if _, dup := seen[name]; dup {
			return dErrors.Newf(dErrors.CodeInvalidInput, "duplicate domain %s", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Service coordinates generation jobs end to end.
type Service struct {
	jobs          ports.JobStore
	data          ports.DataProvider
	relationships ports.RelationshipProvider
	publisher     ports.EventPublisher
	metrics       *metrics.Metrics
	logger        *slog.Logger
	domainTimeout time.Duration

	// pending holds the configs of created-but-not-yet-run jobs. Configs are
	// request-scoped; only results are persisted.
	mu      sync.Mutex
	pending map[string]JobConfig
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the Prometheus metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithEventPublisher sets the lifecycle event publisher.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithDomainTimeout overrides the default per-domain generation timeout.
func WithDomainTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.domainTimeout = d
		}
	}
}

// New constructs the generation service. The job store and data provider are
// required; everything else is optional wiring.
func New(jobs ports.JobStore, data ports.DataProvider, relationships ports.RelationshipProvider, opts ...Option) *Service {
	s := &Service{
		jobs:          jobs,
		data:          data,
		relationships: relationships,
		logger:        slog.New(slog.DiscardHandler),
		domainTimeout: defaultDomainTimeout,
		pending:       make(map[string]JobConfig),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateJob validates the configuration, persists a pending result and
// returns it. The job does not run until RunJob is called.
func (s *Service) CreateJob(ctx context.Context, cfg JobConfig) (*models.GenerationJobResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := models.NewJobResult(uuid.NewString())
	if err := s.jobs.Save(ctx, result); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save pending job")
	}

	s.mu.Lock()
	s.pending[result.JobID] = cfg
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "generation job created",
		"job_id", result.JobID,
		"domains", len(cfg.Domains),
		"parallel", cfg.Parallel,
	)
	ports.PublishEvent(ctx, s.logger, s.publisher, ports.Event{
		Kind:  ports.EventJobCreated,
		JobID: result.JobID,
	})
	return result, nil
}

// RunJob executes a previously created job to completion and returns the
// terminal result. Running a job twice is a conflict.
func (s *Service) RunJob(ctx context.Context, jobID string) (*models.GenerationJobResult, error) {
	s.mu.Lock()
	cfg, ok := s.pending[jobID]
	if ok {
		delete(s.pending, jobID)
	}
	s.mu.Unlock()

	result, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !ok || result.Status != models.StatusPending {
		return nil, dErrors.Newf(dErrors.CodeConflict, "job %s has already been run", jobID)
	}

	result.Status = models.StatusInProgress
	result.StartTime = time.Now()
	if err := s.jobs.Save(ctx, result); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save running job")
	}
	s.metrics.IncJobsStarted()
	s.logger.InfoContext(ctx, "generation job started", "job_id", jobID, "domains", len(cfg.Domains))

	domainResults := s.runDomains(ctx, jobID, cfg)

	if cfg.PreserveRelationships {
		s.reconcileDomains(ctx, result, domainResults)
	}

	for _, dr := range domainResults {
		result.AddDomainResult(dr)
		s.metrics.ObserveDomain(string(dr.Status), time.Duration(dr.DurationSeconds*float64(time.Second)), dr.QualityScore, dr.Status == models.StatusCompleted)

		kind := ports.EventDomainCompleted
		if dr.Status != models.StatusCompleted {
			kind = ports.EventDomainFailed
		}
		ports.PublishEvent(ctx, s.logger, s.publisher, ports.Event{
			Kind:   kind,
			JobID:  jobID,
			Domain: dr.DomainName,
			Status: string(dr.Status),
		})
	}

	result.Status = result.AggregateStatus()
	result.RecalculateQualityScore()
	result.EndTime = time.Now()
	result.DurationSeconds = result.EndTime.Sub(result.StartTime).Seconds()
	if result.Status == models.StatusFailed {
		result.ErrorMessage = "no domain completed successfully"
	}

	if err := s.jobs.Save(ctx, result); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save finished job")
	}

	s.logger.InfoContext(ctx, "generation job finished",
		"job_id", jobID,
		"status", result.Status,
		"total_records", result.TotalRecords,
		"quality_score", result.OverallQualityScore,
	)
	ports.PublishEvent(ctx, s.logger, s.publisher, ports.Event{
		Kind:   ports.EventJobFinished,
		JobID:  jobID,
		Status: string(result.Status),
	})
	return result, nil
}

// GetJob returns the stored result for a job.
func (s *Service) GetJob(ctx context.Context, jobID string) (*models.GenerationJobResult, error) {
	return s.jobs.Get(ctx, jobID)
}

// ListJobs returns all stored job results.
func (s *Service) ListJobs(ctx context.Context) ([]*models.GenerationJobResult, error) {
	return s.jobs.List(ctx)
}

// runDomains generates every domain, sequentially or with a bounded worker
// pool. The returned slice preserves configuration order regardless of how
// the domains were scheduled.
func (s *Service) runDomains(ctx context.Context, jobID string, cfg JobConfig) []*models.DomainGenerationResult {
	results := make([]*models.DomainGenerationResult, len(cfg.Domains))

	if !cfg.Parallel || len(cfg.Domains) == 1 {
		for i := range cfg.Domains {
			results[i] = s.runDomain(ctx, jobID, cfg, i)
		}
		return results
	}

	limit := maxParallelDomains
	if len(cfg.Domains) < limit {
		limit = len(cfg.Domains)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range cfg.Domains {
		g.Go(func() error {
			results[i] = s.runDomain(gctx, jobID, cfg, i)
			return nil
		})
	}
	// Workers never return errors; failures live on the domain results.
	_ = g.Wait()
	return results
}

// runDomain builds the right generator for one domain and runs it under the
// per-domain timeout. Every outcome, including a timeout, comes back as a
// result; this function never fails the job.
func (s *Service) runDomain(ctx context.Context, jobID string, cfg JobConfig, index int) *models.DomainGenerationResult {
	domainCfg := cfg.Domains[index]

	var seed *int64
	if cfg.Seed != nil {
		derived := *cfg.Seed + int64(index)
		seed = &derived
	}

	gen, err := s.buildGenerator(ctx, domainCfg, seed)
	if err != nil {
		s.logger.ErrorContext(ctx, "generator setup failed",
			"job_id", jobID, "domain", domainCfg.DomainName, "error", err)
		return failedResult(domainCfg, err)
	}

	timeout := cfg.DomainTimeout
	if timeout <= 0 {
		timeout = s.domainTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan *models.DomainGenerationResult, 1)
	go func() {
		done <- gen.Generate(runCtx)
	}()

	select {
	case dr := <-done:
		return dr
	case <-runCtx.Done():
		s.logger.ErrorContext(ctx, "domain generation timed out",
			"job_id", jobID, "domain", domainCfg.DomainName, "timeout", timeout)
		return failedResult(domainCfg,
			dErrors.Newf(dErrors.CodeTimeout, "generation timed out after %s", timeout))
	}
}

func (s *Service) buildGenerator(ctx context.Context, cfg models.DomainConfig, seed *int64) (generator.Generator, error) {
	switch cfg.Strategy {
	case models.StrategyRandom:
		return generator.NewRandom(cfg, seed, s.logger), nil
	case models.StrategyStatistical:
		sourceDomain := cfg.SourceDomain
		if sourceDomain == "" {
			sourceDomain = cfg.DomainName
		}
		var source *models.Table
		if s.data != nil {
			var err error
			source, err = s.data.LoadTable(ctx, sourceDomain)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeUnavailable,
					fmt.Sprintf("load source data for domain %s", sourceDomain))
			}
		}
		return generator.NewStatistical(cfg, source, seed, s.logger), nil
	default:
		// Validate rejects non-executable strategies; this is a safety net.
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "strategy %q is not implemented", cfg.Strategy)
	}
}

// reconcileDomains applies the relationship graph across all completed
// tables. Reconciliation problems degrade to warnings; they never fail a job
// whose domains generated successfully.
func (s *Service) reconcileDomains(ctx context.Context, job *models.GenerationJobResult, domainResults []*models.DomainGenerationResult) {
	tables := make(map[string]*models.Table)
	for _, dr := range domainResults {
		if dr.Status == models.StatusCompleted && dr.Table != nil {
			tables[dr.DomainName] = dr.Table
		}
	}
	if len(tables) < 2 {
		return
	}

	if s.relationships == nil {
		job.Warnings = append(job.Warnings, "relationship preservation requested but no relationship provider is configured")
		return
	}
	graph, err := s.relationships.RelationshipGraph(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "relationship graph unavailable", "job_id", job.JobID, "error", err)
		job.Warnings = append(job.Warnings, fmt.Sprintf("relationship graph unavailable: %v", err))
		return
	}
	if graph.IsEmpty() {
		return
	}

	outcomes := reconcile.Apply(s.logger, tables, graph)
	for _, o := range outcomes {
		if !o.Applied && o.Edge.Kind.Enforced() {
			job.Warnings = append(job.Warnings, fmt.Sprintf(
				"relationship %s.%s -> %s.%s not reconciled: %s",
				o.Edge.SourceDomain, o.Edge.SourceVariable,
				o.Edge.TargetDomain, o.Edge.TargetVariable, o.Reason))
		}
	}
}

// failedResult builds a terminal failed result for a domain that never
// reached its generator.
func failedResult(cfg models.DomainConfig, err error) *models.DomainGenerationResult {
	r := models.NewDomainResult(cfg)
	r.Status = models.StatusFailed
	r.ErrorMessage = err.Error()
	r.EndTime = time.Now()
	r.DurationSeconds = r.EndTime.Sub(r.StartTime).Seconds()
	return r
}
