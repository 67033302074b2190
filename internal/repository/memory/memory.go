// FilePath: internal/repository/memory/memory.go

// Package memory provides map-backed implementations of the repository
// interfaces. They keep the exact storage semantics of the SQL repos
// (insert-only readings, upsert-by-key assessments, ascending point
// queries) and back the package tests and local development runs.
package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/edsonsantana1/agrosilo/internal/database"
	"github.com/edsonsantana1/agrosilo/internal/models"
)

// Store is the shared backing state of all in-memory repositories.
// A single mutex guards every table; contention is irrelevant at the
// scale these repos are used.
type Store struct {
	mu          sync.RWMutex
	silos       map[string]*models.Silo
	sensors     map[string]*models.Sensor
	readings    map[string]map[int64]models.Reading // sensor id → unix nano → reading
	assessments map[string]*models.Assessment       // (silo id | unix nano) → snapshot
}

// NewStore creates an empty backing store.
func NewStore() *Store {
	return &Store{
		silos:       make(map[string]*models.Silo),
		sensors:     make(map[string]*models.Sensor),
		readings:    make(map[string]map[int64]models.Reading),
		assessments: make(map[string]*models.Assessment),
	}
}

// noopTx satisfies database.Transaction for a store without transactional
// semantics. Raw SQL through it is not supported; the typed repository
// methods are the only write path.
type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

func (noopTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return execResult(0), nil
}

type execResult int64

func (r execResult) LastInsertId() (int64, error) { return 0, nil }
func (r execResult) RowsAffected() (int64, error) { return int64(r), nil }

// baseRepo provides the database.Repository surface shared by all repos.
type baseRepo struct {
	store *Store
}

func (r *baseRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return noopTx{}, nil
}
