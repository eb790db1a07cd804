package repository

import (
	"context"
	"testing"

	repo "interview-screener/internal/domain/interfaces/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ repo.Repository[string] = (*MemoryRepository[string])(nil)

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository[string]()

	_, err := r.FindByID(ctx, "a")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = r.Create(ctx, "b", "bee")
	require.NoError(t, err)
	_, err = r.Update(ctx, "a", "ay")
	require.NoError(t, err)
	_, err = r.Update(ctx, "a", "alpha")
	require.NoError(t, err)

	got, err := r.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got)

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "bee"}, all)

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))
	_, err = r.FindByID(ctx, "a")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestMemoryRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewMemoryRepository[int]()

	_, err := r.Create(ctx, "a", 1)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = r.FindAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
