//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/repositories.go -package=mocks . GasometerRepository,ReadingRepository

// Package views holds the stateful screens of GasControl: the gasometer and
// reading lists and the dashboard. Each view owns its state exclusively and
// replaces it wholesale after every fetch.
package views

import (
	"context"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
)

// Repository is a fetched collection of T written with P payloads.
// *api.Resource satisfies it.
type Repository[T any, P any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id int, payload P) (T, error)
	Delete(ctx context.Context, id int) error
}

// Lister is the read side of a Repository.
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// GasometerRepository is Repository[models.Gasometer, models.GasometerPayload].
type GasometerRepository interface {
	List(ctx context.Context) ([]models.Gasometer, error)
	Create(ctx context.Context, payload models.GasometerPayload) (models.Gasometer, error)
	Update(ctx context.Context, id int, payload models.GasometerPayload) (models.Gasometer, error)
	Delete(ctx context.Context, id int) error
}

// ReadingRepository is Repository[models.Reading, models.ReadingPayload].
type ReadingRepository interface {
	List(ctx context.Context) ([]models.Reading, error)
	Create(ctx context.Context, payload models.ReadingPayload) (models.Reading, error)
	Update(ctx context.Context, id int, payload models.ReadingPayload) (models.Reading, error)
	Delete(ctx context.Context, id int) error
}

// Gate guards protected views. *session.Session satisfies it.
type Gate interface {
	Require() error
}

type openGate struct{}

func (openGate) Require() error { return nil }
