package repository

import (
	"context"
	"sort"
	"sync"

	repo "interview-screener/internal/domain/interfaces/repository"
)

// MemoryRepository keeps entities in process memory only.
type MemoryRepository[T any] struct {
	mu       sync.RWMutex
	entities map[string]T
}

func NewMemoryRepository[T any]() *MemoryRepository[T] {
	return &MemoryRepository[T]{entities: make(map[string]T)}
}

func (r *MemoryRepository[T]) Create(ctx context.Context, id string, entity T) (T, error) {
	if err := ctx.Err(); err != nil {
		return entity, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[id] = entity
	return entity, nil
}

// Update replaces the entity stored under id, creating it when absent.
func (r *MemoryRepository[T]) Update(ctx context.Context, id string, entity T) (T, error) {
	return r.Create(ctx, id, entity)
}

func (r *MemoryRepository[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entities, id)
	return nil
}

func (r *MemoryRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	var entity T
	if err := ctx.Err(); err != nil {
		return entity, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entity, ok := r.entities[id]
	if !ok {
		return entity, repo.ErrNotFound
	}
	return entity, nil
}

// FindAll returns the entities ordered by id.
func (r *MemoryRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.entities))
	for id := range r.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entities := make([]T, 0, len(ids))
	for _, id := range ids {
		entities = append(entities, r.entities[id])
	}
	return entities, nil
}
