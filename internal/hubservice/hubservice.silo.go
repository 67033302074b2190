package hubservice

import (
	"context"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// SiloService handles silo-related business logic
type SiloService interface {
	CreateSilo(ctx context.Context, silo *models.Silo) error
	GetSilo(ctx context.Context, id string) (*models.Silo, error)
	UpdateSilo(ctx context.Context, silo *models.Silo) error
	DeleteSilo(ctx context.Context, id string) error
	ListSilos(ctx context.Context, offset, limit int) ([]*models.Silo, error)
	GetSiloStatus(ctx context.Context, id string) (*SiloStatus, error)
	ListSiloSensors(ctx context.Context, siloID string) ([]*models.Sensor, error)
}

// SiloStatus aggregates everything a dashboard needs for one silo: the
// registry row, the newest reading per sensor, the latest condition
// snapshot and the derived connectivity state.
type SiloStatus struct {
	Silo           *models.Silo               `json:"silo"`
	LastReadings   map[string]*models.Reading `json:"last_readings"`
	LatestSnapshot *models.Assessment         `json:"latest_snapshot"`
	OnlineStatus   string                     `json:"online_status"`
	LastActivity   time.Time                  `json:"last_activity"`
}

// CreateSilo creates a new silo with proper validation and initialization
func (s *HubService) CreateSilo(ctx context.Context, silo *models.Silo) error {
	// Validate required fields
	if silo.Name == "" {
		return errors.NewValidationError("silo name is required", nil)
	}

	// Generate new ID if not provided
	if silo.ID == "" {
		silo.ID = nuts.NID("silo", 12)
	}

	// Set timestamps
	now := time.Now().UTC()
	silo.CreatedAt = now
	silo.UpdatedAt = now

	// Initialize optional fields with defaults
	if silo.Timezone == "" {
		silo.Timezone = "UTC"
	}

	nuts.L.Infof("[SiloService] Creating new silo: %s (%s)", silo.Name, silo.ID)
	return s.Silos.Create(ctx, silo)
}

// GetSilo retrieves a silo by id
func (s *HubService) GetSilo(ctx context.Context, id string) (*models.Silo, error) {
	return s.Silos.Get(ctx, id)
}

// UpdateSilo updates an existing silo, preserving its creation metadata
func (s *HubService) UpdateSilo(ctx context.Context, silo *models.Silo) error {
	existing, err := s.Silos.Get(ctx, silo.ID)
	if err != nil {
		return err
	}

	silo.CreatedAt = existing.CreatedAt
	silo.LastSyncAt = existing.LastSyncAt
	silo.LastReadingAt = existing.LastReadingAt
	silo.UpdatedAt = time.Now().UTC()

	nuts.L.Infof("[SiloService] Updating silo %s", silo.ID)
	return s.Silos.Update(ctx, silo)
}

// DeleteSilo handles silo deletion with cascading cleanup across both
// stores. The cache entry goes last so a failed cascade keeps serving the
// old snapshot instead of a phantom one.
func (s *HubService) DeleteSilo(ctx context.Context, id string) error {
	if _, err := s.Silos.Get(ctx, id); err != nil {
		return err
	}

	nuts.L.Infof("[SiloService] Deleting silo: %s", id)
	if err := s.Cleanup.DeleteSilo(ctx, id); err != nil {
		return err
	}

	if err := s.Cache.InvalidateSilo(ctx, id); err != nil {
		nuts.L.Warnf("[SiloService] Failed to invalidate cache for silo %s: %v", id, err)
	}
	return nil
}

// ListSilos retrieves a paginated list of silos
func (s *HubService) ListSilos(ctx context.Context, offset, limit int) ([]*models.Silo, error) {
	if limit <= 0 || limit > 100 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	return s.Silos.List(ctx, offset, limit)
}

// GetSiloStatus retrieves comprehensive silo status information
func (s *HubService) GetSiloStatus(ctx context.Context, id string) (*SiloStatus, error) {
	silo, err := s.Silos.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Latest reading per sensor
	readings, err := s.Readings.GetLatestBySilo(ctx, id)
	if err != nil {
		nuts.L.Warnf("[SiloService] Failed to get latest readings for silo %s: %v", id, err)
		readings = make(map[string]*models.Reading)
	}

	// Latest condition snapshot
	snapshot, err := s.LatestAssessment(ctx, id)
	if err != nil && !errors.IsNotFound(err) {
		nuts.L.Warnf("[SiloService] Failed to get latest assessment for silo %s: %v", id, err)
	}

	return &SiloStatus{
		Silo:           silo,
		LastReadings:   readings,
		LatestSnapshot: snapshot,
		OnlineStatus:   determineOnlineStatus(silo.LastSyncAt),
		LastActivity:   findLastActivity(silo),
	}, nil
}

// ListSiloSensors lists the sensors registered under a silo
func (s *HubService) ListSiloSensors(ctx context.Context, siloID string) ([]*models.Sensor, error) {
	if _, err := s.Silos.Get(ctx, siloID); err != nil {
		return nil, err
	}
	return s.Sensors.ListBySilo(ctx, siloID)
}

// Helper functions

// determineOnlineStatus derives connectivity from the last successful
// ingestion cycle. The thresholds assume the default 15s poll cadence.
func determineOnlineStatus(lastSync time.Time) string {
	timeSinceLastSync := time.Since(lastSync)

	switch {
	case timeSinceLastSync < 5*time.Minute:
		return "online"
	case timeSinceLastSync < 15*time.Minute:
		return "stale"
	default:
		return "offline"
	}
}

func findLastActivity(silo *models.Silo) time.Time {
	lastActivity := silo.LastSyncAt
	if silo.LastReadingAt.After(lastActivity) {
		lastActivity = silo.LastReadingAt
	}
	return lastActivity
}
