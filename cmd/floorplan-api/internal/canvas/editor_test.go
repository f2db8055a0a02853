package canvas

import (
	"testing"

	"github.com/metal-stack/metal-lib/pkg/pointer"
	"github.com/stretchr/testify/require"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

func TestSetFloorplanBoundaryKeepsSingleBoundary(t *testing.T) {
	e := NewEditor(NewStore())
	e.AddWall()

	for i := 0; i < 5; i++ {
		e.SetFloorplanBoundary(float64(10+i), 30, floorplan.UnitFeet, 100)
	}
	// a second boundary sneaked in from persisted data
	e.Store().Add(floorplan.NewFloorplanBoundary(1, 1))
	e.SetFloorplanBoundary(50, 30, floorplan.UnitFeet, 100)

	boundaries := e.Store().OfType(floorplan.TypeBoundary)
	require.Len(t, boundaries, 1)

	b, ok := e.Boundary()
	require.True(t, ok)
	require.Equal(t, 1524.0, b.Width)
	require.Equal(t, 914.4, b.Height)
	require.Equal(t, 2, e.Store().Len())
}

func TestScaleObjectPositions(t *testing.T) {
	e := NewEditor(NewStore())
	e.SetFloorplanBoundary(20, 10, floorplan.UnitMeters, 100)
	w := e.AddWall()
	e.Store().Update(w.Base().ID, floorplan.Patch{X: pointer.Pointer(200.0), Y: pointer.Pointer(300.0)})
	e.Store().Update(floorplan.BoundaryID, floorplan.Patch{X: pointer.Pointer(5.0), Y: pointer.Pointer(7.0)})

	notifications := 0
	e.Store().Subscribe(func(floorplan.Objects) { notifications++ })

	e.ScaleObjectPositions(100, 50)

	require.Equal(t, 1, notifications)

	o, ok := e.Store().Find(w.Base().ID)
	require.True(t, ok)
	require.Equal(t, 400.0, o.Base().X)
	require.Equal(t, 600.0, o.Base().Y)

	b, ok := e.Boundary()
	require.True(t, ok)
	require.Equal(t, 5.0, b.X)
	require.Equal(t, 7.0, b.Y)
	require.Equal(t, 2000.0, b.Width)
}

func TestScaleObjectPositionsRoundTrip(t *testing.T) {
	e := NewEditor(NewStore())
	l := e.AddLabel("x", "")
	e.Store().Update(l.Base().ID, floorplan.Patch{X: pointer.Pointer(123.0), Y: pointer.Pointer(45.0)})

	e.ScaleObjectPositions(100, 200)
	o, _ := e.Store().Find(l.Base().ID)
	require.Equal(t, 61.5, o.Base().X)
	require.Equal(t, 22.5, o.Base().Y)

	e.ScaleObjectPositions(200, 100)
	o, _ = e.Store().Find(l.Base().ID)
	require.Equal(t, 123.0, o.Base().X)
	require.Equal(t, 45.0, o.Base().Y)
}

func TestAddRacksAndDevices(t *testing.T) {
	e := NewEditor(NewStore())

	r := e.AddSimpleRack(floorplan.Rack{ID: 1, Name: "r1", OuterWidth: pointer.Pointer(600.0), OuterDepth: pointer.Pointer(1000.0)}, 100, "")
	rack := r.(*floorplan.RackObject)
	require.Equal(t, 60.0, rack.Width)
	require.Equal(t, 100.0, rack.Height)

	r = e.AddAdvancedRack(floorplan.Rack{ID: 2, Name: "r2", Role: &floorplan.Role{Name: "storage"}}, 50, "")
	rack = r.(*floorplan.RackObject)
	require.Equal(t, 120.0, rack.Width)
	require.Equal(t, 160.0, rack.Height)
	require.Equal(t, pointer.Pointer("storage"), rack.Labels.Role)

	d := e.AddSimpleDevice(floorplan.Device{ID: 3, Name: "d3"}, 0, "")
	device := d.(*floorplan.DeviceObject)
	require.InDelta(t, 48.26, device.Width, 1e-9)
	require.InDelta(t, 60, device.Height, 1e-9)

	e.AddAdvancedDevice(floorplan.Device{ID: 4, Name: "d4"}, 200, "")
	e.AddWall()
	e.AddArea()

	require.Equal(t, []int{1, 2}, e.MappedRackIDs())
	require.Equal(t, []int{3, 4}, e.MappedDeviceIDs())
	require.Len(t, e.Racks(), 2)
	require.Len(t, e.Devices(), 2)
}

func TestMappedIDsEmpty(t *testing.T) {
	e := NewEditor(NewStore(floorplan.NewWall()))
	require.Empty(t, e.MappedRackIDs())
	require.Empty(t, e.MappedDeviceIDs())
}
