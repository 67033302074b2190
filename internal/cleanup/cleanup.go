// FilePath: internal/cleanup/cleanup.go

// Package cleanup coordinates cascading deletion across the registry
// database and the measurement store, and the retention pruning of aged
// data.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// CleanupService deletes hierarchical silo data in dependency order.
type CleanupService struct {
	silos       repository.SiloRepository
	sensors     repository.SensorRepository
	readings    repository.ReadingRepository
	assessments repository.AssessmentRepository
	events      *nuts.EventEmitter
}

// New creates a new CleanupService
func New(
	silos repository.SiloRepository,
	sensors repository.SensorRepository,
	readings repository.ReadingRepository,
	assessments repository.AssessmentRepository,
) *CleanupService {
	return &CleanupService{
		silos:       silos,
		sensors:     sensors,
		readings:    readings,
		assessments: assessments,
		events:      nuts.NewEventEmitter(),
	}
}

// DeleteSilo deletes a silo and all its associated data. Readings live in
// the measurement store, a separate database from the registry, so they
// are removed first in their own transaction; a crash between the two
// phases leaves registry rows without readings, which the registry
// cascade tolerates.
func (s *CleanupService) DeleteSilo(ctx context.Context, siloID string) error {
	sensors, err := s.sensors.ListBySilo(ctx, siloID)
	if err != nil {
		return fmt.Errorf("failed to list sensors: %w", err)
	}
	sensorIDs := make([]string, len(sensors))
	for i, sensor := range sensors {
		sensorIDs[i] = sensor.ID
	}

	if len(sensorIDs) > 0 {
		dataTx, err := s.readings.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin measurement transaction: %w", err)
		}
		defer dataTx.Rollback() // Will be ignored if transaction is committed

		if err := s.readings.DeleteBySensorIDs(ctx, sensorIDs, dataTx); err != nil {
			return fmt.Errorf("failed to delete readings: %w", err)
		}
		if err := dataTx.Commit(); err != nil {
			return fmt.Errorf("failed to commit measurement transaction: %w", err)
		}
	}

	for _, id := range sensorIDs {
		s.events.Emit("sensor.deleted", id)
	}

	tx, err := s.silos.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.assessments.DeleteBySiloID(ctx, siloID, tx); err != nil {
		return fmt.Errorf("failed to delete assessments: %w", err)
	}
	if err := s.sensors.DeleteBySilo(ctx, siloID, tx); err != nil {
		return fmt.Errorf("failed to delete sensors: %w", err)
	}
	if err := s.silos.DeleteWithChildren(ctx, siloID, tx); err != nil {
		return fmt.Errorf("failed to delete silo: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Emit event after successful deletion
	s.events.Emit("silo.deleted", siloID)
	return nil
}

// DeleteSensor deletes a sensor and all its readings.
func (s *CleanupService) DeleteSensor(ctx context.Context, sensorID string) error {
	dataTx, err := s.readings.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin measurement transaction: %w", err)
	}
	defer dataTx.Rollback()

	if err := s.readings.DeleteBySensorIDs(ctx, []string{sensorID}, dataTx); err != nil {
		return fmt.Errorf("failed to delete readings: %w", err)
	}
	if err := dataTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit measurement transaction: %w", err)
	}

	tx, err := s.sensors.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.sensors.DeleteWithData(ctx, sensorID, tx); err != nil {
		return fmt.Errorf("failed to delete sensor: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.events.Emit("sensor.deleted", sensorID)
	return nil
}

// PruneReadings drops readings and assessment snapshots older than the
// cut-off. Used by the retention loop; deletion counts are logged by the
// repositories.
func (s *CleanupService) PruneReadings(ctx context.Context, before time.Time) error {
	if err := s.readings.DeleteOldData(ctx, before); err != nil {
		return fmt.Errorf("failed to prune readings: %w", err)
	}
	if err := s.assessments.DeleteOldData(ctx, before); err != nil {
		return fmt.Errorf("failed to prune assessments: %w", err)
	}

	nuts.L.Infof("[Cleanup] Pruned measurement data older than %s", before.Format(time.RFC3339))
	s.events.Emit("data.pruned", before.Format(time.RFC3339))
	return nil
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, "cleanup_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}
