// FilePath: internal/repository/memory/memory.sensor.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/database"
	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type SensorRepo struct {
	baseRepo
}

func NewSensorRepository(store *Store) *SensorRepo {
	return &SensorRepo{baseRepo{store: store}}
}

func (r *SensorRepo) Create(ctx context.Context, sensor *models.Sensor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.sensors[sensor.ID]; exists {
		return errors.NewDatabaseError("sensor already exists", nil)
	}
	clone := *sensor
	r.store.sensors[sensor.ID] = &clone
	return nil
}

func (r *SensorRepo) Get(ctx context.Context, id string) (*models.Sensor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sensor, ok := r.store.sensors[id]
	if !ok {
		return nil, errors.NewNotFoundError("sensor not found", nil)
	}
	clone := *sensor
	return &clone, nil
}

// GetOrCreate returns the (silo, type) sensor, creating it on first use.
func (r *SensorRepo) GetOrCreate(ctx context.Context, siloID string, sensorType models.SensorType) (*models.Sensor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, sensor := range r.store.sensors {
		if sensor.SiloID == siloID && sensor.Type == sensorType {
			clone := *sensor
			return &clone, nil
		}
	}

	now := time.Now().UTC()
	sensor := &models.Sensor{
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
	r.store.sensors[sensor.ID] = sensor

	clone := *sensor
	return &clone, nil
}

func (r *SensorRepo) Update(ctx context.Context, sensor *models.Sensor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sensors[sensor.ID]; !ok {
		return errors.NewNotFoundError("sensor not found", nil)
	}
	clone := *sensor
	r.store.sensors[sensor.ID] = &clone
	return nil
}

func (r *SensorRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sensors[id]; !ok {
		return errors.NewNotFoundError("sensor not found", nil)
	}
	delete(r.store.sensors, id)
	return nil
}

func (r *SensorRepo) ListBySilo(ctx context.Context, siloID string) ([]*models.Sensor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sensors := []*models.Sensor{}
	for _, sensor := range r.store.sensors {
		if sensor.SiloID == siloID {
			clone := *sensor
			sensors = append(sensors, &clone)
		}
	}
	sort.Slice(sensors, func(i, j int) bool { return sensors[i].CreatedAt.After(sensors[j].CreatedAt) })
	return sensors, nil
}

func (r *SensorRepo) IDsBySiloAndType(ctx context.Context, siloID string, sensorType models.SensorType) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	type entry struct {
		id      string
		created time.Time
	}
	entries := []entry{}
	for _, sensor := range r.store.sensors {
		if sensor.SiloID == siloID && sensor.Type == sensorType {
			entries = append(entries, entry{sensor.ID, sensor.CreatedAt})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].created.Before(entries[j].created) })

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.id)
	}
	return ids, nil
}

func (r *SensorRepo) UpdateLastValue(ctx context.Context, id string, value float64, timestamp time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sensor, ok := r.store.sensors[id]
	if !ok {
		return errors.NewNotFoundError("sensor not found", nil)
	}
	sensor.LastValue = value
	sensor.LastValueTime = timestamp
	sensor.UpdatedAt = timestamp
	return nil
}

func (r *SensorRepo) DeleteWithData(ctx context.Context, id string, tx database.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sensors[id]; !ok {
		return errors.NewNotFoundError("sensor not found", nil)
	}
	delete(r.store.sensors, id)
	delete(r.store.readings, id)
	return nil
}

func (r *SensorRepo) DeleteBySilo(ctx context.Context, siloID string, tx database.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, sensor := range r.store.sensors {
		if sensor.SiloID == siloID {
			delete(r.store.sensors, id)
		}
	}
	return nil
}

func (r *SensorRepo) List(ctx context.Context, filters models.SensorFilters, page, limit int) (int64, []*models.Sensor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sensors := []*models.Sensor{}
	for _, sensor := range r.store.sensors {
		if filters.SiloID != "" && sensor.SiloID != filters.SiloID {
			continue
		}
		if filters.Type != "" && sensor.Type != filters.Type {
			continue
		}
		if filters.Status != "" && sensor.Status != filters.Status {
			continue
		}
		clone := *sensor
		sensors = append(sensors, &clone)
	}
	sort.Slice(sensors, func(i, j int) bool { return sensors[i].CreatedAt.After(sensors[j].CreatedAt) })

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	if offset >= len(sensors) {
		return int64(len(sensors)), []*models.Sensor{}, nil
	}
	paged := sensors[offset:]
	if limit > 0 && limit < len(paged) {
		paged = paged[:limit]
	}
	return int64(len(sensors)), paged, nil
}
