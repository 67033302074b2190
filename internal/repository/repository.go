// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/database"
	"github.com/edsonsantana1/agrosilo/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// SiloRepository defines the interface for silo data operations
type SiloRepository interface {
	database.Repository
	Create(ctx context.Context, silo *models.Silo) error
	Get(ctx context.Context, id string) (*models.Silo, error)
	Update(ctx context.Context, silo *models.Silo) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*models.Silo, error)
	UpdateLastSync(ctx context.Context, id string, lastSync time.Time) error
	UpdateLastReading(ctx context.Context, id string, lastReading time.Time) error
	DeleteWithChildren(ctx context.Context, id string, tx database.Transaction) error
}

// SensorRepository defines the interface for sensor data operations
type SensorRepository interface {
	database.Repository
	Create(ctx context.Context, sensor *models.Sensor) error
	Get(ctx context.Context, id string) (*models.Sensor, error)
	GetOrCreate(ctx context.Context, siloID string, sensorType models.SensorType) (*models.Sensor, error)
	Update(ctx context.Context, sensor *models.Sensor) error
	Delete(ctx context.Context, id string) error
	ListBySilo(ctx context.Context, siloID string) ([]*models.Sensor, error)
	IDsBySiloAndType(ctx context.Context, siloID string, sensorType models.SensorType) ([]string, error)
	UpdateLastValue(ctx context.Context, id string, value float64, timestamp time.Time) error
	DeleteWithData(ctx context.Context, id string, tx database.Transaction) error
	DeleteBySilo(ctx context.Context, siloID string, tx database.Transaction) error
	List(ctx context.Context, filters models.SensorFilters, page, limit int) (int64, []*models.Sensor, error)
}

// ReadingRepository defines the interface for the cleaned measurement store.
// The store is insert-only: a write for an existing (sensor_id, timestamp)
// pair is a no-op, never an update and never an error.
type ReadingRepository interface {
	database.Repository
	InsertBatch(ctx context.Context, readings []models.Reading) (int, error)
	// FetchPoints returns points for the given sensors ordered by timestamp
	// ascending. A zero start or end leaves that bound open; limit <= 0 means
	// no limit.
	FetchPoints(ctx context.Context, sensorIDs []string, start, end time.Time, limit int) ([]models.Point, error)
	GetLatestBySensor(ctx context.Context, sensorID string) (*models.Reading, error)
	GetLatestBySilo(ctx context.Context, siloID string) (map[string]*models.Reading, error)
	DeleteOldData(ctx context.Context, before time.Time) error
	DeleteBySensorIDs(ctx context.Context, sensorIDs []string, tx database.Transaction) error
	DeleteBySiloID(ctx context.Context, siloID string, tx database.Transaction) error
}

// AssessmentRepository defines the interface for assessment snapshots.
// Snapshots are upserted per (silo_id, ts): re-assessing the same reference
// instant overwrites the stored snapshot.
type AssessmentRepository interface {
	database.Repository
	Upsert(ctx context.Context, assessment *models.Assessment) error
	Get(ctx context.Context, id string) (*models.Assessment, error)
	GetLatestBySilo(ctx context.Context, siloID string) (*models.Assessment, error)
	List(ctx context.Context, siloID string, start, end time.Time, offset, limit int) ([]*models.Assessment, error)
	DeleteBySiloID(ctx context.Context, siloID string, tx database.Transaction) error
	DeleteOldData(ctx context.Context, before time.Time) error
}
