package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"sportscast/internal/domain"
	"sportscast/internal/infra"
	"sportscast/internal/sqlinline"
)

// Status enumerates narrative job lifecycle states.
type Status string

const (
	StatusQueued    Status = "QUEUED"
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Job is one prompt-to-video request tracked in the registry. The pipeline
// itself is stateless across invocations; the job row is the only durable
// record of a run.
type Job struct {
	ID              string
	Prompt          string
	DurationSeconds int
	Status          Status
	ResultJSON      []byte
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Result is the terminal payload persisted when a run finishes.
type Result struct {
	Status         string          `json:"status"`
	FinalMediaPath string          `json:"final_media_path,omitempty"`
	Script         *domain.Script  `json:"script,omitempty"`
	FailedSegments []FailedSegment `json:"failed_segments,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// FailedSegment mirrors domain.SegmentFailure in a serializable form.
type FailedSegment struct {
	Order int    `json:"order"`
	Error string `json:"error"`
}

// Repo persists narrative jobs in Postgres.
type Repo struct {
	sql infra.SQLExecutor
}

func NewRepo(sql infra.SQLExecutor) *Repo {
	return &Repo{sql: sql}
}

// Enqueue inserts a queued job and returns its id.
func (r *Repo) Enqueue(ctx context.Context, prompt string, durationSeconds int) (string, error) {
	id := uuid.NewString()
	if _, err := r.sql.Exec(ctx, sqlinline.QEnqueueNarrativeJob, id, prompt, durationSeconds); err != nil {
		return "", err
	}
	return id, nil
}

// Claim atomically marks the oldest queued job RUNNING and returns it.
// Returns domain.ErrNotFound when the queue is empty.
func (r *Repo) Claim(ctx context.Context) (*Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QWorkerClaimJob)
	var j Job
	if err := row.Scan(&j.ID, &j.Prompt, &j.DurationSeconds); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	j.Status = StatusRunning
	return &j, nil
}

// Complete records a successful run.
func (r *Repo) Complete(ctx context.Context, id string, result Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = r.sql.Exec(ctx, sqlinline.QCompleteJob, id, raw)
	return err
}

// Fail records a terminal failure. The partial result is still persisted so
// callers can see which stage or segments went wrong.
func (r *Repo) Fail(ctx context.Context, id, message string, result Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		raw = []byte("{}")
	}
	_, err = r.sql.Exec(ctx, sqlinline.QFailJob, id, message, raw)
	return err
}

// Get fetches a job by id. Returns domain.ErrNotFound for unknown ids.
func (r *Repo) Get(ctx context.Context, id string) (*Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectJob, id)
	var j Job
	if err := row.Scan(&j.ID, &j.Prompt, &j.DurationSeconds, &j.Status, &j.ResultJSON, &j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}
