// FilePath: internal/repository/memory/memory.silo.go
package memory

import (
	"context"
	"sort"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/database"
	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/models"
)

type SiloRepo struct {
	baseRepo
}

func NewSiloRepository(store *Store) *SiloRepo {
	return &SiloRepo{baseRepo{store: store}}
}

func (r *SiloRepo) Create(ctx context.Context, silo *models.Silo) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.silos[silo.ID]; exists {
		return errors.NewDatabaseError("silo already exists", nil)
	}
	clone := *silo
	r.store.silos[silo.ID] = &clone
	return nil
}

func (r *SiloRepo) Get(ctx context.Context, id string) (*models.Silo, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	silo, ok := r.store.silos[id]
	if !ok {
		return nil, errors.NewNotFoundError("silo not found", nil)
	}
	clone := *silo
	return &clone, nil
}

func (r *SiloRepo) Update(ctx context.Context, silo *models.Silo) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.silos[silo.ID]; !ok {
		return errors.NewNotFoundError("silo not found", nil)
	}
	clone := *silo
	r.store.silos[silo.ID] = &clone
	return nil
}

func (r *SiloRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.silos[id]; !ok {
		return errors.NewNotFoundError("silo not found", nil)
	}
	delete(r.store.silos, id)
	return nil
}

func (r *SiloRepo) List(ctx context.Context, offset, limit int) ([]*models.Silo, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	silos := make([]*models.Silo, 0, len(r.store.silos))
	for _, silo := range r.store.silos {
		clone := *silo
		silos = append(silos, &clone)
	}
	sort.Slice(silos, func(i, j int) bool { return silos[i].CreatedAt.After(silos[j].CreatedAt) })

	if offset >= len(silos) {
		return []*models.Silo{}, nil
	}
	silos = silos[offset:]
	if limit > 0 && limit < len(silos) {
		silos = silos[:limit]
	}
	return silos, nil
}

func (r *SiloRepo) UpdateLastSync(ctx context.Context, id string, lastSync time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	silo, ok := r.store.silos[id]
	if !ok {
		return errors.NewNotFoundError("silo not found", nil)
	}
	silo.LastSyncAt = lastSync
	return nil
}

func (r *SiloRepo) UpdateLastReading(ctx context.Context, id string, lastReading time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	silo, ok := r.store.silos[id]
	if !ok {
		return errors.NewNotFoundError("silo not found", nil)
	}
	silo.LastReadingAt = lastReading
	return nil
}

func (r *SiloRepo) DeleteWithChildren(ctx context.Context, id string, tx database.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.silos[id]; !ok {
		return errors.NewNotFoundError("silo not found", nil)
	}
	delete(r.store.silos, id)
	return nil
}
