package datastore

import (
	"context"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

// FindImage returns the background image with the given id.
func (rs *RethinkStore) FindImage(ctx context.Context, id string) (*floorplan.Image, error) {
	var i floorplan.Image
	err := rs.findEntityByID(ctx, rs.imageTable(), &i, id)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// ListImages returns all background images.
func (rs *RethinkStore) ListImages(ctx context.Context) ([]floorplan.Image, error) {
	imgs := make([]floorplan.Image, 0)
	err := rs.listEntities(ctx, rs.imageTable(), &imgs)
	return imgs, err
}

// CreateImage creates a new background image.
func (rs *RethinkStore) CreateImage(ctx context.Context, i *floorplan.Image) error {
	return rs.createEntity(ctx, rs.imageTable(), i)
}

// DeleteImage deletes a background image.
func (rs *RethinkStore) DeleteImage(ctx context.Context, i *floorplan.Image) error {
	return rs.deleteEntity(ctx, rs.imageTable(), i)
}
