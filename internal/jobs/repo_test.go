package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sportscast/internal/domain"
)

type stubSQL struct {
	execFunc     func(query string, args ...any) (pgconn.CommandTag, error)
	queryRowFunc func(query string, args ...any) pgx.Row
}

func (s *stubSQL) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if s.execFunc == nil {
		return pgconn.CommandTag{}, nil
	}
	return s.execFunc(query, args...)
}

func (s *stubSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return s.queryRowFunc(query, args...)
}

func (s *stubSQL) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

type scanRow func(dest ...any) error

func (f scanRow) Scan(dest ...any) error { return f(dest...) }

func TestEnqueueAssignsUUID(t *testing.T) {
	var gotID string
	repo := NewRepo(&stubSQL{
		execFunc: func(query string, args ...any) (pgconn.CommandTag, error) {
			gotID = args[0].(string)
			return pgconn.CommandTag{}, nil
		},
	})

	id, err := repo.Enqueue(context.Background(), "prompt", 150)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if id != gotID {
		t.Fatalf("returned id %q != persisted id %q", id, gotID)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("id %q is not a uuid: %v", id, err)
	}
}

func TestClaimEmptyQueue(t *testing.T) {
	repo := NewRepo(&stubSQL{
		queryRowFunc: func(query string, args ...any) pgx.Row {
			return scanRow(func(dest ...any) error { return pgx.ErrNoRows })
		},
	})

	if _, err := repo.Claim(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestClaimReturnsRunningJob(t *testing.T) {
	repo := NewRepo(&stubSQL{
		queryRowFunc: func(query string, args ...any) pgx.Row {
			return scanRow(func(dest ...any) error {
				*dest[0].(*string) = "job-1"
				*dest[1].(*string) = "the storyline"
				*dest[2].(*int) = 120
				return nil
			})
		},
	})

	job, err := repo.Claim(context.Background())
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if job.ID != "job-1" || job.Prompt != "the storyline" || job.DurationSeconds != 120 {
		t.Fatalf("job = %+v", job)
	}
	if job.Status != StatusRunning {
		t.Fatalf("status = %s, want RUNNING", job.Status)
	}
}

func TestGetUnknownJob(t *testing.T) {
	repo := NewRepo(&stubSQL{
		queryRowFunc: func(query string, args ...any) pgx.Row {
			return scanRow(func(dest ...any) error { return pgx.ErrNoRows })
		},
	})

	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestCompleteSerializesResult(t *testing.T) {
	var raw []byte
	repo := NewRepo(&stubSQL{
		execFunc: func(query string, args ...any) (pgconn.CommandTag, error) {
			raw = args[1].([]byte)
			return pgconn.CommandTag{}, nil
		},
	})

	result := Result{
		Status:         "assembly_done",
		FinalMediaPath: "/media/final_1.mp4",
		FailedSegments: []FailedSegment{{Order: 4, Error: "no candidates"}},
	}
	if err := repo.Complete(context.Background(), "job-1", result); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("result json not persisted")
	}
	for _, want := range []string{"assembly_done", "final_media_path", "no candidates"} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("persisted json missing %q: %s", want, raw)
		}
	}
}
