package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
)

const (
	gasometersPath = "/gasometros/"
	readingsPath   = "/leituras/"
)

// Resource is a REST collection of T items written with P payloads.
type Resource[T any, P any] struct {
	client *Client
	name   string
	path   string
}

// NewResource binds a collection path, e.g. "/leituras/", to the client.
func NewResource[T any, P any](c *Client, name, path string) *Resource[T, P] {
	return &Resource[T, P]{client: c, name: name, path: path}
}

// Gasometers is the /gasometros/ collection.
func (c *Client) Gasometers() *Resource[models.Gasometer, models.GasometerPayload] {
	return NewResource[models.Gasometer, models.GasometerPayload](c, "gasometers", gasometersPath)
}

// Readings is the /leituras/ collection.
func (c *Client) Readings() *Resource[models.Reading, models.ReadingPayload] {
	return NewResource[models.Reading, models.ReadingPayload](c, "readings", readingsPath)
}

func (r *Resource[T, P]) Name() string {
	return r.name
}

func (r *Resource[T, P]) itemPath(id int) string {
	return fmt.Sprintf("%s%d/", r.path, id)
}

// List fetches the whole collection. A 404 means the collection is empty.
func (r *Resource[T, P]) List(ctx context.Context) ([]T, error) {
	var items []T
	err := r.client.do(ctx, r.name, http.MethodGet, r.path, nil, &items)
	if err != nil {
		if fe, ok := AsFetchError(err); ok && fe.NotFound() {
			return []T{}, nil
		}
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r *Resource[T, P]) Create(ctx context.Context, payload P) (T, error) {
	var created T
	err := r.client.do(ctx, r.name, http.MethodPost, r.path, payload, &created)
	return created, err
}

func (r *Resource[T, P]) Update(ctx context.Context, id int, payload P) (T, error) {
	var updated T
	err := r.client.do(ctx, r.name, http.MethodPut, r.itemPath(id), payload, &updated)
	return updated, err
}

func (r *Resource[T, P]) Delete(ctx context.Context, id int) error {
	return r.client.do(ctx, r.name, http.MethodDelete, r.itemPath(id), nil, nil)
}
