package hubservice

import (
	"github.com/edsonsantana1/agrosilo/internal/cache"
	"github.com/edsonsantana1/agrosilo/internal/cleanup"
	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/repository"
)

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Silos       repository.SiloRepository
	Sensors     repository.SensorRepository
	Readings    repository.ReadingRepository
	Assessments repository.AssessmentRepository
	Cleanup     *cleanup.CleanupService
	Cache       *cache.Cache
}

// New creates a new HubService instance. cache may be nil when the cache
// layer is disabled; lookups then always hit the repositories.
func New(
	silos repository.SiloRepository,
	sensors repository.SensorRepository,
	readings repository.ReadingRepository,
	assessments repository.AssessmentRepository,
	c *cache.Cache,
) *HubService {
	svc := &HubService{
		Silos:       silos,
		Sensors:     sensors,
		Readings:    readings,
		Assessments: assessments,
		Cache:       c,
	}
	svc.Cleanup = cleanup.New(silos, sensors, readings, assessments)
	return svc
}

// Validate checks if all required repositories are initialized
func (s *HubService) Validate() error {
	if s.Silos == nil {
		return ErrMissingRepository("silos")
	}
	if s.Sensors == nil {
		return ErrMissingRepository("sensors")
	}
	if s.Readings == nil {
		return ErrMissingRepository("readings")
	}
	if s.Assessments == nil {
		return ErrMissingRepository("assessments")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}
