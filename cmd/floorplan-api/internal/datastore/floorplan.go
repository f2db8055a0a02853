package datastore

import (
	"context"

	"github.com/avast/retry-go/v4"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

// FindFloorplan returns the floorplan with the given id together with its assigned image.
func (rs *RethinkStore) FindFloorplan(ctx context.Context, id string) (*floorplan.Floorplan, error) {
	var f floorplan.Floorplan
	err := rs.findEntityByID(ctx, rs.floorplanTable(), &f, id)
	if err != nil {
		return nil, err
	}

	if f.AssignedImageID != nil {
		img, err := rs.FindImage(ctx, *f.AssignedImageID)
		if err != nil && !floorplan.IsNotFound(err) {
			return nil, err
		}
		if err != nil {
			rs.Warnw("assigned image of floorplan does not exist", "floorplan", id, "image", *f.AssignedImageID)
		}
		f.AssignedImage = img
	}

	return &f, nil
}

// ListFloorplans returns all floorplans.
func (rs *RethinkStore) ListFloorplans(ctx context.Context) (floorplan.Floorplans, error) {
	fs := make(floorplan.Floorplans, 0)
	err := rs.listEntities(ctx, rs.floorplanTable(), &fs)
	return fs, err
}

// SearchFloorplansBySite returns the floorplans of a site.
func (rs *RethinkStore) SearchFloorplansBySite(ctx context.Context, siteID string) (floorplan.Floorplans, error) {
	q := rs.floorplanTable().GetAllByIndex("site_id", siteID)
	fs := make(floorplan.Floorplans, 0)
	err := rs.searchEntities(ctx, &q, &fs)
	return fs, err
}

// CreateFloorplan creates a new floorplan.
func (rs *RethinkStore) CreateFloorplan(ctx context.Context, f *floorplan.Floorplan) error {
	return rs.createEntity(ctx, rs.floorplanTable(), f)
}

// UpdateFloorplan updates a floorplan if it was not changed in the meantime.
func (rs *RethinkStore) UpdateFloorplan(ctx context.Context, oldFloorplan *floorplan.Floorplan, newFloorplan *floorplan.Floorplan) error {
	return rs.updateEntity(ctx, rs.floorplanTable(), newFloorplan, oldFloorplan)
}

// DeleteFloorplan deletes a floorplan.
func (rs *RethinkStore) DeleteFloorplan(ctx context.Context, f *floorplan.Floorplan) error {
	return rs.deleteEntity(ctx, rs.floorplanTable(), f)
}

// PatchFloorplan merges the patch into the stored floorplan. Concurrent
// modifications are retried.
func (rs *RethinkStore) PatchFloorplan(ctx context.Context, id string, patch *floorplan.FloorplanPatch) error {
	return retry.Do(
		func() error {
			var old floorplan.Floorplan
			err := rs.findEntityByID(ctx, rs.floorplanTable(), &old, id)
			if err != nil {
				return err
			}

			patched, err := patch.Apply(old)
			if err != nil {
				return err
			}

			return rs.UpdateFloorplan(ctx, &old, &patched)
		},
		retry.Context(ctx),
		retry.Attempts(10),
		retry.RetryIf(func(err error) bool {
			return floorplan.IsConflict(err)
		}),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
	)
}
