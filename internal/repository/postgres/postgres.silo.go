// FilePath: internal/repository/postgres/postgres.silo.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/database"
	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/models"
)

type SiloRepo struct {
	PostgresBaseRepo
}

// NewSiloRepository connects the repo and ensures the registry table.
func NewSiloRepository(db database.DB) (*SiloRepo, error) {
	repo := &SiloRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *SiloRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS silos (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			grain_type TEXT NOT NULL DEFAULT '',
			capacity_tons DOUBLE PRECISION NOT NULL DEFAULT 0,
			channel_id TEXT NOT NULL DEFAULT '',
			read_api_key TEXT NOT NULL DEFAULT '',
			timezone TEXT NOT NULL DEFAULT 'UTC',
			last_sync_at TIMESTAMPTZ NOT NULL,
			last_reading_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_silos_created_at
         ON silos(created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize silos schema", err)
		}
	}
	return nil
}

func (r *SiloRepo) Create(ctx context.Context, silo *models.Silo) error {
	query := `
		INSERT INTO silos (
			id, name, description, location, latitude, longitude,
			grain_type, capacity_tons, channel_id, read_api_key, timezone,
			last_sync_at, last_reading_at, created_at, updated_at
		) VALUES (
			:id, :name, :description, :location, :latitude, :longitude,
			:grain_type, :capacity_tons, :channel_id, :read_api_key, :timezone,
			:last_sync_at, :last_reading_at, :created_at, :updated_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, silo)
	if err != nil {
		return errors.NewDatabaseError("failed to create silo", err)
	}
	return nil
}

func (r *SiloRepo) Get(ctx context.Context, id string) (*models.Silo, error) {
	silo := &models.Silo{}
	query := `SELECT * FROM silos WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, silo, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("silo not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get silo", err)
	}
	return silo, nil
}

func (r *SiloRepo) Update(ctx context.Context, silo *models.Silo) error {
	query := `
		UPDATE silos SET
			name = :name,
			description = :description,
			location = :location,
			latitude = :latitude,
			longitude = :longitude,
			grain_type = :grain_type,
			capacity_tons = :capacity_tons,
			channel_id = :channel_id,
			read_api_key = :read_api_key,
			timezone = :timezone,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, silo)
	if err != nil {
		return errors.NewDatabaseError("failed to update silo", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("silo not found", nil)
	}

	return nil
}

func (r *SiloRepo) UpdateLastSync(ctx context.Context, id string, lastSync time.Time) error {
	query := `UPDATE silos SET last_sync_at = $1 WHERE id = $2`
	result, err := r.db.GetDB().ExecContext(ctx, query, lastSync, id)
	if err != nil {
		return errors.NewDatabaseError("failed to update last sync", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("silo not found", nil)
	}

	return nil
}

func (r *SiloRepo) UpdateLastReading(ctx context.Context, id string, lastReading time.Time) error {
	query := `UPDATE silos SET last_reading_at = $1 WHERE id = $2`
	result, err := r.db.GetDB().ExecContext(ctx, query, lastReading, id)
	if err != nil {
		return errors.NewDatabaseError("failed to update last reading", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("silo not found", nil)
	}

	return nil
}

func (r *SiloRepo) List(ctx context.Context, offset, limit int) ([]*models.Silo, error) {
	silos := []*models.Silo{}
	query := `SELECT * FROM silos ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	err := r.db.GetDB().SelectContext(ctx, &silos, query, limit, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list silos", err)
	}

	return silos, nil
}

func (r *SiloRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM silos WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete silo", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("silo not found", nil)
	}

	return nil
}

// DeleteWithChildren removes the silo row inside the caller's transaction.
// Child rows (sensors, readings, assessments) are removed first by the
// cleanup service using the same transaction.
func (r *SiloRepo) DeleteWithChildren(ctx context.Context, id string, tx database.Transaction) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM silos WHERE id = $1`, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete silo", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("silo not found", nil)
	}

	return nil
}
