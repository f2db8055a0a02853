package datastore

import (
	"context"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

// FindRack returns the rack record with the given asset id.
func (rs *RethinkStore) FindRack(ctx context.Context, id int) (*floorplan.Rack, error) {
	var rack floorplan.Rack
	err := rs.findEntityByID(ctx, rs.rackTable(), &rack, id)
	if err != nil {
		return nil, err
	}
	return &rack, nil
}

// ListRacks returns all rack records.
func (rs *RethinkStore) ListRacks(ctx context.Context) (floorplan.Racks, error) {
	racks := make(floorplan.Racks, 0)
	err := rs.listEntities(ctx, rs.rackTable(), &racks)
	return racks, err
}

// UpsertRack stores a rack record as received from the asset inventory.
func (rs *RethinkStore) UpsertRack(ctx context.Context, rack *floorplan.Rack) error {
	return rs.upsert(ctx, rs.rackTable(), rack)
}

// FindDevice returns the device record with the given asset id.
func (rs *RethinkStore) FindDevice(ctx context.Context, id int) (*floorplan.Device, error) {
	var device floorplan.Device
	err := rs.findEntityByID(ctx, rs.deviceTable(), &device, id)
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// ListDevices returns all device records.
func (rs *RethinkStore) ListDevices(ctx context.Context) (floorplan.Devices, error) {
	devices := make(floorplan.Devices, 0)
	err := rs.listEntities(ctx, rs.deviceTable(), &devices)
	return devices, err
}

// UpsertDevice stores a device record as received from the asset inventory.
func (rs *RethinkStore) UpsertDevice(ctx context.Context, device *floorplan.Device) error {
	return rs.upsert(ctx, rs.deviceTable(), device)
}
