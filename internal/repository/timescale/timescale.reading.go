// FilePath: internal/repository/timescale/timescale.reading.go
package timescale

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/database"
	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/models"
	"github.com/jmoiron/sqlx"
	nuts "github.com/vaudience/go-nuts"
)

// ReadingRepo stores cleaned measurements in a TimescaleDB hypertable.
// The table is insert-only: (sensor_id, timestamp) is unique and a
// conflicting write is silently skipped.
type ReadingRepo struct {
	TimeScaleBaseRepo
}

// NewReadingRepository connects the repo and ensures the hypertable
// schema. retentionDays <= 0 keeps readings forever.
func NewReadingRepository(db database.DB, retentionDays int) (*ReadingRepo, error) {
	repo := &ReadingRepo{TimeScaleBaseRepo: TimeScaleBaseRepo{db: db}}
	if err := repo.initializeSchema(retentionDays); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ReadingRepo) initializeSchema(retentionDays int) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id TEXT NOT NULL,
			sensor_id TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			UNIQUE (sensor_id, timestamp)
		)`,
		`SELECT create_hypertable('readings', 'timestamp',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_sensor_timestamp
         ON readings(sensor_id, timestamp DESC)`,
	}

	for _, query := range queries {
		_, err := r.db.GetDB().Exec(query)
		if err != nil {
			return errors.NewDatabaseError("failed to initialize schema", err)
		}
	}

	if retentionDays > 0 {
		r.setupRetentionPolicy(retentionDays)
	}
	return nil
}

func (r *ReadingRepo) setupRetentionPolicy(retentionDays int) {
	query := fmt.Sprintf(`
		SELECT add_retention_policy('readings',
			INTERVAL '%d days',
			if_not_exists => TRUE
		)`, retentionDays)

	_, err := r.db.GetDB().Exec(query)
	if err != nil {
		nuts.L.Errorf("[ReadingRepo] Failed to set up retention policy: %v", err)
	}
}

// InsertBatch writes the readings and returns the number of rows newly
// created. Rows whose (sensor_id, timestamp) already exists are skipped
// and not counted.
func (r *ReadingRepo) InsertBatch(ctx context.Context, readings []models.Reading) (int, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	for i := range readings {
		if readings[i].ID == "" {
			readings[i].ID = nuts.NID("rd", 12)
		}
	}

	query := `
		INSERT INTO readings (id, sensor_id, value, timestamp)
		VALUES (:id, :sensor_id, :value, :timestamp)
		ON CONFLICT (sensor_id, timestamp) DO NOTHING`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, readings)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to insert readings", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return int(rows), nil
}

// FetchPoints returns the (t, v) sequence of the given sensors within
// [start, end], ascending by timestamp, capped at limit. Zero start/end
// leave the bound open; limit <= 0 fetches everything.
func (r *ReadingRepo) FetchPoints(ctx context.Context, sensorIDs []string, start, end time.Time, limit int) ([]models.Point, error) {
	points := []models.Point{}
	if len(sensorIDs) == 0 {
		return points, nil
	}

	query := `SELECT timestamp, value FROM readings WHERE sensor_id IN (?)`
	inArgs := []interface{}{sensorIDs}

	if !start.IsZero() {
		query += ` AND timestamp >= ?`
		inArgs = append(inArgs, start)
	}
	if !end.IsZero() {
		query += ` AND timestamp <= ?`
		inArgs = append(inArgs, end)
	}
	query += ` ORDER BY timestamp ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		inArgs = append(inArgs, limit)
	}

	query, args, err := sqlx.In(query, inArgs...)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to build points query", err)
	}
	query = r.db.GetDB().Rebind(query)

	if err := r.db.GetDB().SelectContext(ctx, &points, query, args...); err != nil {
		return nil, errors.NewDatabaseError("failed to fetch points", err)
	}
	return points, nil
}

func (r *ReadingRepo) GetLatestBySensor(ctx context.Context, sensorID string) (*models.Reading, error) {
	reading := &models.Reading{}
	query := `
        SELECT id, sensor_id, value, timestamp
        FROM readings
        WHERE sensor_id = $1
        ORDER BY timestamp DESC
        LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, reading, query, sensorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no readings for sensor", err)
		}
		return nil, errors.NewDatabaseError("failed to get latest reading", err)
	}
	return reading, nil
}

func (r *ReadingRepo) GetLatestBySilo(ctx context.Context, siloID string) (map[string]*models.Reading, error) {
	// Window function picks the newest reading per sensor in one pass
	query := `
        WITH RankedReadings AS (
            SELECT rd.id, rd.sensor_id, rd.value, rd.timestamp,
                   ROW_NUMBER() OVER (PARTITION BY rd.sensor_id ORDER BY rd.timestamp DESC) as rn
            FROM readings rd
            JOIN sensors s ON s.id = rd.sensor_id
            WHERE s.silo_id = $1
        )
        SELECT id, sensor_id, value, timestamp
        FROM RankedReadings
        WHERE rn = 1`

	readings := []*models.Reading{}
	err := r.db.GetDB().SelectContext(ctx, &readings, query, siloID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to get latest silo readings", err)
	}

	result := make(map[string]*models.Reading)
	for _, reading := range readings {
		result[reading.SensorID] = reading
	}
	return result, nil
}

func (r *ReadingRepo) DeleteOldData(ctx context.Context, before time.Time) error {
	query := `DELETE FROM readings WHERE timestamp < $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return errors.NewDatabaseError("failed to delete old data", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[ReadingRepo] Deleted %d old readings before %v", rows, before)
	return nil
}

func (r *ReadingRepo) DeleteBySensorIDs(ctx context.Context, sensorIDs []string, tx database.Transaction) error {
	if len(sensorIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM readings WHERE sensor_id IN (?)`, sensorIDs)
	if err != nil {
		return errors.NewDatabaseError("failed to build delete query", err)
	}
	query = r.db.GetDB().Rebind(query)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return errors.NewDatabaseError("failed to delete readings", err)
	}
	return nil
}

func (r *ReadingRepo) DeleteBySiloID(ctx context.Context, siloID string, tx database.Transaction) error {
	query := `
		DELETE FROM readings
		WHERE sensor_id IN (SELECT id FROM sensors WHERE silo_id = $1)`

	if _, err := tx.ExecContext(ctx, query, siloID); err != nil {
		return errors.NewDatabaseError("failed to delete silo readings", err)
	}
	return nil
}
