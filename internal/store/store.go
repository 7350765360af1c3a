// Package store opens the persistence target of an import and serializes
// writes to each table.
//
// A target is either a PostgreSQL URL (postgres:// or postgresql://) or a
// SQLite file path.
package store

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/JonMunkholm/datasheet/internal/config"
	"github.com/JonMunkholm/datasheet/internal/core"
	"github.com/JonMunkholm/datasheet/internal/store/postgres"
	"github.com/JonMunkholm/datasheet/internal/store/sqlite"
)

// Kind names the database behind a target.
type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// KindOf classifies target.
func KindOf(target string) Kind {
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return KindPostgres
	}
	return KindSQLite
}

// Store is an open persistence target. Writes to the same table name are
// serialized.
type Store struct {
	*Serialized
	kind   Kind
	closer io.Closer
}

// Open connects to target.
func Open(ctx context.Context, target string, cfg config.DatabaseConfig) (*Store, error) {
	if target == "" {
		return nil, core.ErrNoTarget
	}

	kind := KindOf(target)

	var (
		p      core.Persister
		closer io.Closer
	)
	switch kind {
	case KindPostgres:
		pg, err := postgres.Open(ctx, target, cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres target: %w", err)
		}
		p, closer = pg, pg
	default:
		lite, err := sqlite.Open(target, cfg.BusyTimeout)
		if err != nil {
			return nil, fmt.Errorf("open sqlite target: %w", err)
		}
		p, closer = lite, lite
	}

	return &Store{Serialized: Serialize(p), kind: kind, closer: closer}, nil
}

// Kind reports which database the store writes to.
func (s *Store) Kind() Kind { return s.kind }

// Close releases the underlying connection.
func (s *Store) Close() error { return s.closer.Close() }

// Serialized wraps a Persister so that writes to one table name never
// interleave. Writes to different tables proceed concurrently.
type Serialized struct {
	next core.Persister

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ core.Persister = (*Serialized)(nil)

// Serialize wraps p.
func Serialize(p core.Persister) *Serialized {
	return &Serialized{next: p, locks: make(map[string]*sync.Mutex)}
}

// Persist waits for earlier writes to name, then delegates.
func (s *Serialized) Persist(ctx context.Context, name string, t core.Table, mode core.IfExists) error {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return s.next.Persist(ctx, name, t, mode)
}

func (s *Serialized) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}
