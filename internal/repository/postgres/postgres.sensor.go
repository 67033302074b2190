// FilePath: internal/repository/postgres/postgres.sensor.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/database"
	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type SensorRepo struct {
	PostgresBaseRepo
}

// NewSensorRepository connects the repo and ensures the registry table.
// There is deliberately no foreign key to silos: ingestion may register
// sensors before the silo row exists.
func NewSensorRepository(db database.DB) (*SensorRepo, error) {
	repo := &SensorRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *SensorRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sensors (
			id TEXT PRIMARY KEY,
			silo_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			unit TEXT NOT NULL DEFAULT '',
			field_index INTEGER NOT NULL DEFAULT 0,
			last_value DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_value_time TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (silo_id, type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sensors_silo_type
         ON sensors(silo_id, type)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize sensors schema", err)
		}
	}
	return nil
}

func (r *SensorRepo) Create(ctx context.Context, sensor *models.Sensor) error {
	query := `
		INSERT INTO sensors (
			id, silo_id, name, description, type, unit, field_index,
			last_value, last_value_time, status, metadata,
			created_at, updated_at
		) VALUES (
			:id, :silo_id, :name, :description, :type, :unit, :field_index,
			:last_value, :last_value_time, :status, :metadata,
			:created_at, :updated_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, sensor)
	if err != nil {
		return errors.NewDatabaseError("failed to create sensor", err)
	}
	return nil
}

func (r *SensorRepo) Get(ctx context.Context, id string) (*models.Sensor, error) {
	sensor := &models.Sensor{}
	query := `SELECT * FROM sensors WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, sensor, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("sensor not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get sensor", err)
	}
	return sensor, nil
}

// GetOrCreate returns the (silo, type) sensor, creating it on first use.
// Sensors are unique per (silo_id, type); a concurrent create is resolved
// by the ON CONFLICT no-op plus re-read.
func (r *SensorRepo) GetOrCreate(ctx context.Context, siloID string, sensorType models.SensorType) (*models.Sensor, error) {
	sensor := &models.Sensor{}
	query := `SELECT * FROM sensors WHERE silo_id = $1 AND type = $2`

	err := r.db.GetDB().GetContext(ctx, sensor, query, siloID, sensorType)
	if err == nil {
		return sensor, nil
	}
	if err != sql.ErrNoRows {
		return nil, errors.NewDatabaseError("failed to get sensor", err)
	}

	now := time.Now().UTC()
	sensor = &models.Sensor{
		ID:        nuts.NID("sn", 12),
		SiloID:    siloID,
		Name:      fmt.Sprintf("%s sensor", sensorType),
		Type:      sensorType,
		Unit:      models.DefaultUnit(sensorType),
		Status:    "active",
		Metadata:  models.JSON{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	insert := `
		INSERT INTO sensors (
			id, silo_id, name, description, type, unit, field_index,
			last_value, last_value_time, status, metadata,
			created_at, updated_at
		) VALUES (
			:id, :silo_id, :name, :description, :type, :unit, :field_index,
			:last_value, :last_value_time, :status, :metadata,
			:created_at, :updated_at
		)
		ON CONFLICT (silo_id, type) DO NOTHING`

	if _, err := r.db.GetDB().NamedExecContext(ctx, insert, sensor); err != nil {
		return nil, errors.NewDatabaseError("failed to create sensor", err)
	}

	if err := r.db.GetDB().GetContext(ctx, sensor, query, siloID, sensorType); err != nil {
		return nil, errors.NewDatabaseError("failed to get sensor", err)
	}
	return sensor, nil
}

func (r *SensorRepo) ListBySilo(ctx context.Context, siloID string) ([]*models.Sensor, error) {
	sensors := []*models.Sensor{}
	query := `SELECT * FROM sensors WHERE silo_id = $1 ORDER BY created_at DESC`

	err := r.db.GetDB().SelectContext(ctx, &sensors, query, siloID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list sensors", err)
	}

	return sensors, nil
}

// IDsBySiloAndType returns the ids of all sensors of one type within a silo.
// The id-set form keeps analysis queries correct even on registries imported
// from deployments that predate the (silo_id, type) uniqueness rule.
func (r *SensorRepo) IDsBySiloAndType(ctx context.Context, siloID string, sensorType models.SensorType) ([]string, error) {
	ids := []string{}
	query := `SELECT id FROM sensors WHERE silo_id = $1 AND type = $2 ORDER BY created_at`

	err := r.db.GetDB().SelectContext(ctx, &ids, query, siloID, sensorType)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list sensor ids", err)
	}
	return ids, nil
}

func (r *SensorRepo) Update(ctx context.Context, sensor *models.Sensor) error {
	query := `
		UPDATE sensors SET
			name = :name,
			description = :description,
			type = :type,
			unit = :unit,
			field_index = :field_index,
			status = :status,
			metadata = :metadata,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, sensor)
	if err != nil {
		return errors.NewDatabaseError("failed to update sensor", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("sensor not found", nil)
	}

	return nil
}

func (r *SensorRepo) UpdateLastValue(ctx context.Context, id string, value float64, timestamp time.Time) error {
	query := `
		UPDATE sensors SET
			last_value = $1,
			last_value_time = $2,
			updated_at = $2
		WHERE id = $3`

	result, err := r.db.GetDB().ExecContext(ctx, query, value, timestamp, id)
	if err != nil {
		return errors.NewDatabaseError("failed to update last value", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("sensor not found", nil)
	}

	return nil
}

func (r *SensorRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sensors WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete sensor", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("sensor not found", nil)
	}

	return nil
}

func (r *SensorRepo) DeleteWithData(ctx context.Context, id string, tx database.Transaction) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM sensors WHERE id = $1`, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete sensor", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("sensor not found", nil)
	}

	return nil
}

func (r *SensorRepo) DeleteBySilo(ctx context.Context, siloID string, tx database.Transaction) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM sensors WHERE silo_id = $1`, siloID)
	if err != nil {
		return errors.NewDatabaseError("failed to delete sensors", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[SensorRepo] Deleted %d sensors for silo %s", rows, siloID)
	return nil
}

// List returns one page of the sensor registry plus the total count of
// rows matching the filters, so callers can paginate past the page.
func (r *SensorRepo) List(ctx context.Context, filters models.SensorFilters, page, limit int) (int64, []*models.Sensor, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if filters.SiloID != "" {
		args = append(args, filters.SiloID)
		where += fmt.Sprintf(` AND silo_id = $%d`, len(args))
	}
	if filters.Type != "" {
		args = append(args, filters.Type)
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var count int64
	if err := r.db.GetDB().GetContext(ctx, &count, `SELECT COUNT(*) FROM sensors`+where, args...); err != nil {
		return 0, nil, errors.NewDatabaseError("failed to count sensors", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := `SELECT * FROM sensors` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	sensors := []*models.Sensor{}
	if err := r.db.GetDB().SelectContext(ctx, &sensors, query, args...); err != nil {
		return 0, nil, errors.NewDatabaseError("failed to list sensors", err)
	}

	return count, sensors, nil
}
