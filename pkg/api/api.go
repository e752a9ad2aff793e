// Package api exposes the publisher over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/edgeflare/fakeuser/pkg/httputil"
	mw "github.com/edgeflare/fakeuser/pkg/httputil/middleware"
	"github.com/edgeflare/fakeuser/pkg/metrics"
	"github.com/edgeflare/fakeuser/pkg/publisher"
	"go.uber.org/zap"
)

// UserPublisher is the part of publisher.Publisher the trigger endpoint needs.
type UserPublisher interface {
	SendRandomUsers(ctx context.Context, count int) (int, error)
}

// JobRunner is the part of publisher.Jobs the job endpoints need.
type JobRunner interface {
	Start(count int) publisher.Job
	Get(id string) (publisher.Job, error)
	Cancel(id string) (publisher.Job, error)
	List() []publisher.Job
}

// Handler serves the trigger and job endpoints.
type Handler struct {
	pub  UserPublisher
	jobs JobRunner
}

// NewHandler creates a Handler. jobs may be nil to disable the /jobs endpoints.
func NewHandler(pub UserPublisher, jobs JobRunner) *Handler {
	return &Handler{pub: pub, jobs: jobs}
}

// Register mounts the routes on r.
func (h *Handler) Register(r *httputil.Router) {
	r.HandleFunc("GET /send/{count}", h.Send)
	r.HandleFunc("GET /healthz", h.Health)

	if h.jobs != nil {
		r.HandleFunc("GET /jobs", h.ListJobs)
		r.HandleFunc("POST /jobs/{count}", h.StartJob)
		r.HandleFunc("GET /jobs/{id}", h.GetJob)
		r.HandleFunc("DELETE /jobs/{id}", h.CancelJob)
	}
}

// Send publishes count fake users and blocks until the whole loop has run.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	count, err := parseCount(r)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	logger := mw.LogEntry(r.Context())
	start := time.Now()

	sent, err := h.pub.SendRandomUsers(r.Context(), count)
	if err != nil {
		outcome := "error"
		if errors.Is(err, publisher.ErrInterrupted) {
			outcome = "interrupted"
		}
		metrics.TriggerDuration.WithLabelValues("sync", outcome).Observe(time.Since(start).Seconds())
		logger.Error("send failed", zap.Int("count", count), zap.Int("sent", sent), zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.TriggerDuration.WithLabelValues("sync", "success").Observe(time.Since(start).Seconds())

	httputil.Text(w, http.StatusOK, fmt.Sprintf("Sent %d fake users to Kafka!", count))
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "ok")
}

func (h *Handler) StartJob(w http.ResponseWriter, r *http.Request) {
	count, err := parseCount(r)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	job := h.jobs.Start(count)
	w.Header().Set("Location", "/jobs/"+job.ID)
	httputil.JSON(w, http.StatusAccepted, job)
}

func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, h.jobs.List())
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.PathValue("id"))
	writeJob(w, job, err)
}

func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Cancel(r.PathValue("id"))
	writeJob(w, job, err)
}

func writeJob(w http.ResponseWriter, job publisher.Job, err error) {
	switch {
	case errors.Is(err, publisher.ErrJobNotFound):
		httputil.Error(w, http.StatusNotFound, err.Error())
	case err != nil:
		httputil.Error(w, http.StatusInternalServerError, err.Error())
	default:
		httputil.JSON(w, http.StatusOK, job)
	}
}

func parseCount(r *http.Request) (int, error) {
	raw := r.PathValue("count")
	count, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: must be a 32-bit integer", raw)
	}
	return int(count), nil
}
