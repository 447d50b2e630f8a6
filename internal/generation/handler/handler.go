// Package handler exposes the generation service over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"datareplicator/internal/generation/models"
	"datareplicator/internal/generation/service"
	"datareplicator/pkg/platform/httputil"
)

// Service defines the generation operations the handler needs.
type Service interface {
	CreateJob(ctx context.Context, cfg service.JobConfig) (*models.GenerationJobResult, error)
	RunJob(ctx context.Context, jobID string) (*models.GenerationJobResult, error)
	GetJob(ctx context.Context, jobID string) (*models.GenerationJobResult, error)
	ListJobs(ctx context.Context) ([]*models.GenerationJobResult, error)
}

// Handler handles generation job endpoints.
type Handler struct {
	logger     *slog.Logger
	generation Service
}

// New creates a generation Handler.
func New(generation Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		logger:     logger,
		generation: generation,
	}
}

// Register registers the generation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	jobsRouter := chi.NewRouter()
	jobsRouter.Use(middleware.RequestID)
	jobsRouter.Use(middleware.Recoverer)
	jobsRouter.Use(middleware.Timeout(10 * time.Minute))
	jobsRouter.Post("/generation/jobs", h.handleCreateJob)
	jobsRouter.Post("/generation/jobs/{jobID}/run", h.handleRunJob)
	jobsRouter.Get("/generation/jobs/{jobID}", h.handleGetJob)
	jobsRouter.Get("/generation/jobs", h.handleListJobs)

	r.Mount("/", jobsRouter)
}

// handleCreateJob validates the job plan and stores a pending job.
func (h *Handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateJobRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.generation.CreateJob(ctx, req.toJobConfig())
	if err != nil {
		h.logger.WarnContext(ctx, "create job failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, CreateJobResponse{
		JobID:  result.JobID,
		Status: result.Status,
	})
}

// handleRunJob executes a pending job synchronously and returns its terminal
// result.
func (h *Handler) handleRunJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	jobID := chi.URLParam(r, "jobID")

	result, err := h.generation.RunJob(ctx, jobID)
	if err != nil {
		h.logger.WarnContext(ctx, "run job failed", "request_id", requestID, "job_id", jobID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobID")

	result, err := h.generation.GetJob(ctx, jobID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.generation.ListJobs(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ListJobsResponse{Jobs: jobs})
}
