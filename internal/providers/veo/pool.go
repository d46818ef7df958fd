package veo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// Credential is one Veo API key. Media locators returned by the service are
// scoped to the credential that submitted the job, so the pool hands back
// the credential id with every client.
type Credential struct {
	ID     string
	APIKey string
}

// Generator is the narrow contract the generation sub-pipeline needs from a
// Veo client. Fakes implement it in tests.
type Generator interface {
	Submit(ctx context.Context, prompt string) (Operation, error)
	Poll(ctx context.Context, op Operation) (Operation, error)
	Download(ctx context.Context, uri, dest string) error
}

// Pool round-robins a fixed set of credentials, each bound to its own
// client. The cursor is the only state shared across concurrent segment
// tasks; a single atomic increment keeps rotation lock-free.
type Pool struct {
	entries []poolEntry
	cursor  atomic.Uint64
}

type poolEntry struct {
	client Generator
	id     string
}

// NewPool builds a pool from credentials using the provided factory.
func NewPool(creds []Credential, factory func(Credential) Generator) (*Pool, error) {
	if len(creds) == 0 {
		return nil, errors.New("veo: at least one credential is required")
	}
	p := &Pool{}
	for i, c := range creds {
		id := c.ID
		if id == "" {
			id = fmt.Sprintf("credential-%d", i+1)
		}
		p.entries = append(p.entries, poolEntry{client: factory(c), id: id})
	}
	return p, nil
}

// Next returns the next client in rotation along with its credential id.
// With M credentials, the (M+1)-th call returns the first credential again.
func (p *Pool) Next() (Generator, string) {
	idx := (p.cursor.Add(1) - 1) % uint64(len(p.entries))
	e := p.entries[idx]
	return e.client, e.id
}

// Size returns the number of pooled credentials.
func (p *Pool) Size() int {
	return len(p.entries)
}
