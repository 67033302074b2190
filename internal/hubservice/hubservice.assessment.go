package hubservice

import (
	"context"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// LatestAssessment returns the newest condition snapshot of a silo,
// serving from the cache when possible and falling back to the store.
// Store hits are written back so the next lookup is cheap again.
func (s *HubService) LatestAssessment(ctx context.Context, siloID string) (*models.Assessment, error) {
	if cached, err := s.Cache.LatestAssessment(ctx, siloID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		nuts.L.Warnf("[AssessmentService] Cache lookup failed for silo %s: %v", siloID, err)
	}

	snapshot, err := s.Assessments.GetLatestBySilo(ctx, siloID)
	if err != nil {
		return nil, err
	}

	if err := s.Cache.SetLatestAssessment(ctx, snapshot); err != nil {
		nuts.L.Warnf("[AssessmentService] Cache write-back failed for silo %s: %v", siloID, err)
	}
	return snapshot, nil
}

// ListAssessments returns the snapshot history of a silo within the
// window, newest first. Zero bounds widen to all recorded history.
func (s *HubService) ListAssessments(ctx context.Context, siloID string, start, end time.Time, offset, limit int) ([]*models.Assessment, error) {
	if _, err := s.Silos.Get(ctx, siloID); err != nil {
		return nil, err
	}

	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = time.Unix(0, 0).UTC()
	}
	if limit <= 0 || limit > 500 {
		limit = 100 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	return s.Assessments.List(ctx, siloID, start, end, offset, limit)
}
