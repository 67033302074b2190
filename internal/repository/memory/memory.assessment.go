// FilePath: internal/repository/memory/memory.assessment.go
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

type AssessmentRepo struct {
	baseRepo
}

func NewAssessmentRepository(store *Store) *AssessmentRepo {
	return &AssessmentRepo{baseRepo{store: store}}
}

func assessmentKey(siloID string, ts time.Time) string {
	return fmt.Sprintf("%s|%d", siloID, ts.UTC().UnixNano())
}

// Upsert writes the snapshot, overwriting a previous one for the same
// (silo_id, ts) reference instant.
func (r *AssessmentRepo) Upsert(ctx context.Context, assessment *models.Assessment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	key := assessmentKey(assessment.SiloID, assessment.Timestamp)

	if existing, ok := r.store.assessments[key]; ok {
		assessment.ID = existing.ID
		assessment.CreatedAt = existing.CreatedAt
	} else {
		if assessment.ID == "" {
			assessment.ID = nuts.NID("asm", 12)
		}
		if assessment.CreatedAt.IsZero() {
			assessment.CreatedAt = now
		}
	}
	assessment.UpdatedAt = now

	clone := *assessment
	r.store.assessments[key] = &clone
	return nil
}

func (r *AssessmentRepo) Get(ctx context.Context, id string) (*models.Assessment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, assessment := range r.store.assessments {
		if assessment.ID == id {
			clone := *assessment
			return &clone, nil
		}
	}
	return nil, errors.NewNotFoundError("assessment not found", nil)
}

func (r *AssessmentRepo) GetLatestBySilo(ctx context.Context, siloID string) (*models.Assessment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest *models.Assessment
	for _, assessment := range r.store.assessments {
		if assessment.SiloID != siloID {
			continue
		}
		if latest == nil || assessment.Timestamp.After(latest.Timestamp) {
			latest = assessment
		}
	}
	if latest == nil {
		return nil, errors.NewNotFoundError("no assessment for silo", nil)
	}
	clone := *latest
	return &clone, nil
}

func (r *AssessmentRepo) List(ctx context.Context, siloID string, start, end time.Time, offset, limit int) ([]*models.Assessment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	assessments := []*models.Assessment{}
	for _, assessment := range r.store.assessments {
		if assessment.SiloID != siloID {
			continue
		}
		if !start.IsZero() && assessment.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && assessment.Timestamp.After(end) {
			continue
		}
		clone := *assessment
		assessments = append(assessments, &clone)
	}
	sort.Slice(assessments, func(i, j int) bool {
		return assessments[i].Timestamp.After(assessments[j].Timestamp)
	})

	if offset >= len(assessments) {
		return []*models.Assessment{}, nil
	}
	assessments = assessments[offset:]
	if limit > 0 && limit < len(assessments) {
		assessments = assessments[:limit]
	}
	return assessments, nil
}

func (r *AssessmentRepo) DeleteBySiloID(ctx context.Context, siloID string, tx database.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for key, assessment := range r.store.assessments {
		if assessment.SiloID == siloID {
			delete(r.store.assessments, key)
		}
	}
	return nil
}

func (r *AssessmentRepo) DeleteOldData(ctx context.Context, before time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	removed := 0
	for key, assessment := range r.store.assessments {
		if assessment.Timestamp.Before(before) {
			delete(r.store.assessments, key)
			removed++
		}
	}
	if removed > 0 {
		nuts.L.Infof("[AssessmentRepo] Deleted %d assessments older than %v", removed, before)
	}
	return nil
}
