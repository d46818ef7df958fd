package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"sportscast/internal/domain"
	"sportscast/internal/jobs"
)

// Requested video length bounds in seconds. A zero duration takes the
// default; anything outside the bounds is rejected.
const (
	MinDurationSeconds     = 60
	MaxDurationSeconds     = 300
	DefaultDurationSeconds = 150
)

type GenerateRequest struct {
	Prompt          string `json:"prompt"`
	DurationSeconds int    `json:"duration_seconds"`
}

type GenerateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Generate enqueues a prompt-to-video job and returns its id immediately.
// Production happens asynchronously in the worker.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if req.DurationSeconds == 0 {
		req.DurationSeconds = DefaultDurationSeconds
	}
	if req.DurationSeconds < MinDurationSeconds || req.DurationSeconds > MaxDurationSeconds {
		a.error(w, http.StatusBadRequest, "duration_seconds must be between 60 and 300")
		return
	}

	id, err := a.Jobs.Enqueue(r.Context(), req.Prompt, req.DurationSeconds)
	if err != nil {
		a.Logger.Error().Err(err).Msg("api: enqueue failed")
		a.error(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	a.Logger.Info().Str("job_id", id).Int("duration", req.DurationSeconds).Msg("api: job enqueued")
	a.json(w, http.StatusAccepted, GenerateResponse{ID: id, Status: string(jobs.StatusQueued)})
}

type VideoStatusResponse struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	Prompt          string          `json:"prompt"`
	DurationSeconds int             `json:"duration_seconds"`
	Result          json.RawMessage `json:"result,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// VideoStatus reports the lifecycle state of a job and, once terminal, the
// persisted production result.
func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := a.Jobs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", id).Msg("api: fetch job failed")
		a.error(w, http.StatusInternalServerError, "failed to fetch job")
		return
	}

	resp := VideoStatusResponse{
		ID:              job.ID,
		Status:          string(job.Status),
		Prompt:          job.Prompt,
		DurationSeconds: job.DurationSeconds,
		Error:           job.ErrorMessage,
	}
	if len(job.ResultJSON) > 0 {
		resp.Result = json.RawMessage(job.ResultJSON)
	}
	a.json(w, http.StatusOK, resp)
}

// Script returns just the generated script of a finished job, when one
// exists. Useful while media production is still running or has failed.
func (a *App) Script(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := a.Jobs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", id).Msg("api: fetch job failed")
		a.error(w, http.StatusInternalServerError, "failed to fetch job")
		return
	}

	if len(job.ResultJSON) == 0 {
		a.error(w, http.StatusNotFound, "no script available yet")
		return
	}
	var result jobs.Result
	if err := json.Unmarshal(job.ResultJSON, &result); err != nil || result.Script == nil {
		a.error(w, http.StatusNotFound, "no script available yet")
		return
	}
	a.json(w, http.StatusOK, result.Script)
}
