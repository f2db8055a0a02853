package canvas

import (
	"github.com/samber/lo"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

// Editor implements the placement operations on top of a store.
type Editor struct {
	store *Store
}

// NewEditor returns an editor working on the given store.
func NewEditor(store *Store) *Editor {
	return &Editor{store: store}
}

// Store returns the underlying store.
func (e *Editor) Store() *Store {
	return e.store
}

// AddWall places a wall with default geometry.
func (e *Editor) AddWall() floorplan.Object {
	return e.add(floorplan.NewWall())
}

// AddArea places an area with default geometry.
func (e *Editor) AddArea() floorplan.Object {
	return e.add(floorplan.NewArea())
}

// AddLabel places a text label.
func (e *Editor) AddLabel(text, color string) floorplan.Object {
	return e.add(floorplan.NewLabel(text, color))
}

// AddSimpleRack places a rack labelled with name and status.
func (e *Editor) AddSimpleRack(rack floorplan.Rack, rackScaleFactor float64, color string) floorplan.Object {
	return e.add(floorplan.NewSimpleRack(rack, rackCanvasDimensions(rack, rackScaleFactor), color))
}

// AddAdvancedRack places a rack labelled with name, status, role and tenant.
func (e *Editor) AddAdvancedRack(rack floorplan.Rack, rackScaleFactor float64, color string) floorplan.Object {
	return e.add(floorplan.NewAdvancedRack(rack, rackCanvasDimensions(rack, rackScaleFactor), color))
}

// AddSimpleDevice places a device labelled with name and status.
func (e *Editor) AddSimpleDevice(device floorplan.Device, deviceScaleFactor float64, color string) floorplan.Object {
	return e.add(floorplan.NewSimpleDevice(device, deviceCanvasDimensions(deviceScaleFactor), color))
}

// AddAdvancedDevice places a device labelled with name, status, role and tenant.
func (e *Editor) AddAdvancedDevice(device floorplan.Device, deviceScaleFactor float64, color string) floorplan.Object {
	return e.add(floorplan.NewAdvancedDevice(device, deviceCanvasDimensions(deviceScaleFactor), color))
}

// SetFloorplanBoundary replaces any existing boundary by one of the given physical size.
func (e *Editor) SetFloorplanBoundary(width, height float64, unit floorplan.Unit, scaleFactor float64) floorplan.Object {
	e.store.RemoveType(floorplan.TypeBoundary)

	dims := floorplan.RealWorldToCanvas(floorplan.PhysicalDimensions{Width: width, Height: height, Unit: unit}, scaleFactor)
	return e.add(floorplan.NewFloorplanBoundary(dims.Width, dims.Height))
}

// Boundary returns the floorplan boundary if there is one.
func (e *Editor) Boundary() (*floorplan.BoundaryObject, bool) {
	o, ok := e.store.Find(floorplan.BoundaryID)
	if !ok {
		return nil, false
	}
	b, ok := o.(*floorplan.BoundaryObject)
	return b, ok
}

// ScaleObjectPositions moves all objects except the boundary so that they keep
// their position relative to the boundary after a scale change. All positions are
// computed from one snapshot and written in a single transition.
func (e *Editor) ScaleObjectPositions(oldScale, newScale float64) {
	ratio := floorplan.ScaleRatio(oldScale, newScale)

	scaled := lo.Map(e.store.Objects(), func(o floorplan.Object, _ int) floorplan.Object {
		if o.Base().Type == floorplan.TypeBoundary {
			return o
		}
		b := o.Base()
		b.X *= ratio
		b.Y *= ratio
		return o
	})

	e.store.ReplaceAll(scaled)
}

// Racks returns all placed racks.
func (e *Editor) Racks() []*floorplan.RackObject {
	return lo.FilterMap(e.store.Objects(), func(o floorplan.Object, _ int) (*floorplan.RackObject, bool) {
		r, ok := o.(*floorplan.RackObject)
		return r, ok
	})
}

// Devices returns all placed devices.
func (e *Editor) Devices() []*floorplan.DeviceObject {
	return lo.FilterMap(e.store.Objects(), func(o floorplan.Object, _ int) (*floorplan.DeviceObject, bool) {
		d, ok := o.(*floorplan.DeviceObject)
		return d, ok
	})
}

// MappedRackIDs returns the asset ids of all placed racks.
func (e *Editor) MappedRackIDs() []int {
	return lo.Map(e.Racks(), func(r *floorplan.RackObject, _ int) int {
		return r.RackID
	})
}

// MappedDeviceIDs returns the asset ids of all placed devices.
func (e *Editor) MappedDeviceIDs() []int {
	return lo.Map(e.Devices(), func(d *floorplan.DeviceObject, _ int) int {
		return d.DeviceID
	})
}

func (e *Editor) add(o floorplan.Object) floorplan.Object {
	e.store.Add(o)
	return o
}

func rackCanvasDimensions(rack floorplan.Rack, rackScaleFactor float64) floorplan.CanvasDimensions {
	w, d := floorplan.RackFootprint(rack)
	return floorplan.RackDimensionsToCanvas(w, d, orDefaultScale(rackScaleFactor))
}

func deviceCanvasDimensions(deviceScaleFactor float64) floorplan.CanvasDimensions {
	return floorplan.DeviceDimensionsToCanvas(floorplan.DeviceWidth, floorplan.DeviceDepth, orDefaultScale(deviceScaleFactor))
}

func orDefaultScale(scaleFactor float64) float64 {
	if scaleFactor <= 0 {
		return floorplan.DefaultScaleFactor
	}
	return scaleFactor
}
