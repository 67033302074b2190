// FilePath: internal/repository/memory/memory.reading.go
package memory

import (
	"context"
	"sort"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/database"
	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type ReadingRepo struct {
	baseRepo
}

func NewReadingRepository(store *Store) *ReadingRepo {
	return &ReadingRepo{baseRepo{store: store}}
}

// InsertBatch writes the readings and returns the number of rows newly
// created. A (sensor_id, timestamp) pair already present is skipped.
func (r *ReadingRepo) InsertBatch(ctx context.Context, readings []models.Reading) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := 0
	for _, reading := range readings {
		byTS, ok := r.store.readings[reading.SensorID]
		if !ok {
			byTS = make(map[int64]models.Reading)
			r.store.readings[reading.SensorID] = byTS
		}
		key := reading.Timestamp.UTC().UnixNano()
		if _, exists := byTS[key]; exists {
			continue
		}
		if reading.ID == "" {
			reading.ID = nuts.NID("rd", 12)
		}
		byTS[key] = reading
		stored++
	}
	return stored, nil
}

func (r *ReadingRepo) FetchPoints(ctx context.Context, sensorIDs []string, start, end time.Time, limit int) ([]models.Point, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	points := []models.Point{}
	for _, id := range sensorIDs {
		for _, reading := range r.store.readings[id] {
			if !start.IsZero() && reading.Timestamp.Before(start) {
				continue
			}
			if !end.IsZero() && reading.Timestamp.After(end) {
				continue
			}
			points = append(points, models.Point{T: reading.Timestamp, V: reading.Value})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].T.Before(points[j].T) })

	if limit > 0 && limit < len(points) {
		points = points[:limit]
	}
	return points, nil
}

func (r *ReadingRepo) GetLatestBySensor(ctx context.Context, sensorID string) (*models.Reading, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest *models.Reading
	for _, reading := range r.store.readings[sensorID] {
		reading := reading
		if latest == nil || reading.Timestamp.After(latest.Timestamp) {
			latest = &reading
		}
	}
	if latest == nil {
		return nil, errors.NewNotFoundError("no readings for sensor", nil)
	}
	clone := *latest
	return &clone, nil
}

func (r *ReadingRepo) GetLatestBySilo(ctx context.Context, siloID string) (map[string]*models.Reading, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make(map[string]*models.Reading)
	for sensorID, sensor := range r.store.sensors {
		if sensor.SiloID != siloID {
			continue
		}
		var latest *models.Reading
		for _, reading := range r.store.readings[sensorID] {
			reading := reading
			if latest == nil || reading.Timestamp.After(latest.Timestamp) {
				latest = &reading
			}
		}
		if latest != nil {
			result[sensorID] = latest
		}
	}
	return result, nil
}

func (r *ReadingRepo) DeleteOldData(ctx context.Context, before time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, byTS := range r.store.readings {
		for key, reading := range byTS {
			if reading.Timestamp.Before(before) {
				delete(byTS, key)
			}
		}
	}
	return nil
}

func (r *ReadingRepo) DeleteBySensorIDs(ctx context.Context, sensorIDs []string, tx database.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, id := range sensorIDs {
		delete(r.store.readings, id)
	}
	return nil
}

func (r *ReadingRepo) DeleteBySiloID(ctx context.Context, siloID string, tx database.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for sensorID, sensor := range r.store.sensors {
		if sensor.SiloID == siloID {
			delete(r.store.readings, sensorID)
		}
	}
	return nil
}
