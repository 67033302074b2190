package hubservice

import (
	"context"

	"github.com/edsonsantana1/agrosilo/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// SensorService handles sensor-related business logic
type SensorService interface {
	GetSensor(ctx context.Context, id string) (*models.Sensor, error)
	ListSensors(ctx context.Context, filters models.SensorFilters, page, limit int) (int64, []*models.Sensor, error)
	DeleteSensor(ctx context.Context, id string) error
}

// GetSensor retrieves a sensor by id
func (s *HubService) GetSensor(ctx context.Context, id string) (*models.Sensor, error) {
	return s.Sensors.Get(ctx, id)
}

// ListSensors lists sensors across silos with optional filters. Pagination
// is page-based; limit is capped to keep registry scans bounded.
func (s *HubService) ListSensors(ctx context.Context, filters models.SensorFilters, page, limit int) (int64, []*models.Sensor, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Sensors.List(ctx, filters, page, limit)
}

// DeleteSensor removes a sensor and its readings from both stores.
func (s *HubService) DeleteSensor(ctx context.Context, id string) error {
	if _, err := s.Sensors.Get(ctx, id); err != nil {
		return err
	}

	nuts.L.Infof("[SensorService] Deleting sensor: %s", id)
	return s.Cleanup.DeleteSensor(ctx, id)
}
