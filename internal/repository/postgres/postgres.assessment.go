// FilePath: internal/repository/postgres/postgres.assessment.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/database"
	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// AssessmentRepo persists condition snapshots keyed by (silo_id, ts)
type AssessmentRepo struct {
	PostgresBaseRepo
}

// NewAssessmentRepository connects the repo and ensures the snapshot table.
func NewAssessmentRepository(db database.DB) (*AssessmentRepo, error) {
	repo := &AssessmentRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *AssessmentRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			silo_id TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			temperature DOUBLE PRECISION,
			humidity DOUBLE PRECISION,
			pressure DOUBLE PRECISION,
			status JSONB NOT NULL,
			aeration JSONB NOT NULL,
			notes JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (silo_id, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_silo_ts
         ON assessments(silo_id, ts DESC)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize assessments schema", err)
		}
	}
	return nil
}

// Upsert writes the snapshot, overwriting a previous one for the same
// (silo_id, ts) reference instant.
func (r *AssessmentRepo) Upsert(ctx context.Context, assessment *models.Assessment) error {
	query := `
		INSERT INTO assessments (
			id, silo_id, ts, temperature, humidity, pressure,
			status, aeration, notes, created_at, updated_at
		) VALUES (
			:id, :silo_id, :ts, :temperature, :humidity, :pressure,
			:status, :aeration, :notes, :created_at, :updated_at
		)
		ON CONFLICT (silo_id, ts) DO UPDATE SET
			temperature = EXCLUDED.temperature,
			humidity = EXCLUDED.humidity,
			pressure = EXCLUDED.pressure,
			status = EXCLUDED.status,
			aeration = EXCLUDED.aeration,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	if assessment.ID == "" {
		assessment.ID = nuts.NID("asm", 12)
	}
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = now
	}
	assessment.UpdatedAt = now

	_, err := r.db.GetDB().NamedExecContext(ctx, query, assessment)
	if err != nil {
		nuts.L.Errorf("[AssessmentRepo] Failed to upsert assessment: %v", err)
		return errors.NewDatabaseError("failed to upsert assessment", err)
	}

	return nil
}

// Get retrieves a single assessment by ID
func (r *AssessmentRepo) Get(ctx context.Context, id string) (*models.Assessment, error) {
	query := `SELECT * FROM assessments WHERE id = $1`

	assessment := &models.Assessment{}
	err := r.db.GetDB().GetContext(ctx, assessment, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("assessment not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get assessment", err)
	}

	return assessment, nil
}

// GetLatestBySilo retrieves the most recent snapshot of a silo
func (r *AssessmentRepo) GetLatestBySilo(ctx context.Context, siloID string) (*models.Assessment, error) {
	query := `
		SELECT * FROM assessments
		WHERE silo_id = $1
		ORDER BY ts DESC
		LIMIT 1`

	assessment := &models.Assessment{}
	err := r.db.GetDB().GetContext(ctx, assessment, query, siloID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no assessment for silo", err)
		}
		return nil, errors.NewDatabaseError("failed to get latest assessment", err)
	}

	return assessment, nil
}

// List retrieves snapshots of a silo within [start, end], newest first
func (r *AssessmentRepo) List(ctx context.Context, siloID string, start, end time.Time, offset, limit int) ([]*models.Assessment, error) {
	query := `
		SELECT * FROM assessments
		WHERE silo_id = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts DESC
		LIMIT $4 OFFSET $5`

	assessments := []*models.Assessment{}
	err := r.db.GetDB().SelectContext(ctx, &assessments, query, siloID, start, end, limit, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list assessments", err)
	}

	return assessments, nil
}

// DeleteBySiloID removes all snapshots of a silo inside the caller's transaction
func (r *AssessmentRepo) DeleteBySiloID(ctx context.Context, siloID string, tx database.Transaction) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM assessments WHERE silo_id = $1`, siloID)
	if err != nil {
		return errors.NewDatabaseError("failed to delete assessments", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[AssessmentRepo] Deleted %d assessments for silo %s", rows, siloID)
	return nil
}

// DeleteOldData removes snapshots older than the cutoff
func (r *AssessmentRepo) DeleteOldData(ctx context.Context, before time.Time) error {
	result, err := r.db.GetDB().ExecContext(ctx, `DELETE FROM assessments WHERE ts < $1`, before)
	if err != nil {
		return errors.NewDatabaseError("failed to delete old assessments", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[AssessmentRepo] Deleted %d assessments older than %v", rows, before)
	return nil
}
