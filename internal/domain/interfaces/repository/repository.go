package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("entity not found")

type Repository[T any] interface {
	Create(ctx context.Context, id string, entity T) (T, error)
	Update(ctx context.Context, id string, entity T) (T, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (T, error)
	FindAll(ctx context.Context) ([]T, error)
}
