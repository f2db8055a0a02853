package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/canvas"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

// Messages reported through Err after a failed operation.
const (
	MsgLoadFailed       = "Failed to load floorplan"
	MsgSaveFailed       = "Failed to save floorplan"
	MsgDimensionsFailed = "Failed to update dimensions"
	MsgBackgroundFailed = "Failed to update background"
)

// Backend persists floorplans.
type Backend interface {
	FindFloorplan(ctx context.Context, id string) (*floorplan.Floorplan, error)
	PatchFloorplan(ctx context.Context, id string, patch *floorplan.FloorplanPatch) error
}

// Session owns the canvas objects and the physical settings of one floorplan
// while it is edited.
type Session struct {
	log     *zap.SugaredLogger
	backend Backend
	editor  *canvas.Editor

	FloorplanID       string
	Floorplan         *floorplan.Floorplan
	Width             *float64
	Height            *float64
	MeasurementUnit   floorplan.Unit
	ScaleFactor       float64
	RackScaleFactor   float64
	DeviceScaleFactor float64
	Version           string

	err string
}

// New creates a session without a floorplan.
func New(log *zap.SugaredLogger, backend Backend) *Session {
	return &Session{
		log:               log,
		backend:           backend,
		editor:            canvas.NewEditor(canvas.NewStore()),
		MeasurementUnit:   floorplan.UnitMeters,
		ScaleFactor:       floorplan.DefaultScaleFactor,
		RackScaleFactor:   floorplan.DefaultScaleFactor,
		DeviceScaleFactor: floorplan.DefaultScaleFactor,
	}
}

// Editor returns the canvas editor of the session.
func (s *Session) Editor() *canvas.Editor {
	return s.editor
}

// Store returns the canvas objects of the session.
func (s *Session) Store() *canvas.Store {
	return s.editor.Store()
}

// Err returns the message of the last failed operation, empty if the last
// operation succeeded.
func (s *Session) Err() string {
	return s.err
}

// Dimensions returns the physical dimensions if width, height and unit are known.
func (s *Session) Dimensions() (floorplan.PhysicalDimensions, bool) {
	if s.Width == nil || s.Height == nil || *s.Width == 0 || *s.Height == 0 || s.MeasurementUnit == "" {
		return floorplan.PhysicalDimensions{}, false
	}
	return floorplan.PhysicalDimensions{Width: *s.Width, Height: *s.Height, Unit: s.MeasurementUnit}, true
}

// Load fetches the floorplan and installs its canvas objects. On failure the
// current objects are kept. A canvas which can not be parsed results in an
// empty collection.
func (s *Session) Load(ctx context.Context, id string) error {
	s.err = ""

	f, err := s.backend.FindFloorplan(ctx, id)
	if err != nil {
		s.log.Errorw("failed to load floorplan", "id", id, "error", err)
		s.err = MsgLoadFailed
		return err
	}
	if f == nil {
		s.err = MsgLoadFailed
		return floorplan.NotFound("Floorplan not found")
	}

	c, err := f.Canvas.Decode()
	if err != nil {
		s.log.Errorw("failed to parse canvas, starting with an empty canvas", "id", id, "error", err)
		c = &floorplan.Canvas{Objects: floorplan.Objects{}}
	}

	s.FloorplanID = id
	s.Floorplan = f
	s.Width = f.Width
	s.Height = f.Height
	s.MeasurementUnit = f.MeasurementUnit
	if s.MeasurementUnit == "" {
		s.MeasurementUnit = floorplan.UnitMeters
	}
	envelope := floorplan.ScaleSettings{}
	if c.Scale != nil {
		envelope = *c.Scale
	}
	s.ScaleFactor = firstPositive(f.ScaleFactor, envelope.ScaleFactor)
	s.RackScaleFactor = firstPositive(f.RackScaleFactor, envelope.RackScaleFactor)
	s.DeviceScaleFactor = firstPositive(f.DeviceScaleFactor, envelope.DeviceScaleFactor)
	s.Version = c.Version

	s.Store().ReplaceAll(c.Objects)

	s.log.Debugw("floorplan loaded", "id", id, "objects", len(c.Objects), "version", c.Version, "scale", s.ScaleFactor)
	return nil
}

// Save writes the canvas objects, the scale settings and, if known, the dimensions.
func (s *Session) Save(ctx context.Context) error {
	if s.FloorplanID == "" {
		s.log.Warn("cannot save: no floorplan loaded")
		return nil
	}
	s.err = ""

	patch := &floorplan.FloorplanPatch{
		Canvas: s.canvas(),
		Scale:  s.scaleSettings(),
	}
	if dims, ok := s.Dimensions(); ok {
		patch.Dimensions = &dims
	}

	err := s.backend.PatchFloorplan(ctx, s.FloorplanID, patch)
	if err != nil {
		s.log.Errorw("failed to save floorplan", "id", s.FloorplanID, "error", err)
		s.err = MsgSaveFailed
		return err
	}
	return nil
}

// UpdateDimensions writes new dimensions together with the canvas objects. The
// local dimensions change only if the write succeeded.
func (s *Session) UpdateDimensions(ctx context.Context, width, height float64, unit floorplan.Unit) error {
	if s.FloorplanID == "" {
		s.log.Warn("cannot update dimensions: no floorplan loaded")
		return nil
	}
	s.err = ""

	err := s.backend.PatchFloorplan(ctx, s.FloorplanID, &floorplan.FloorplanPatch{
		Canvas:     s.canvas(),
		Dimensions: &floorplan.PhysicalDimensions{Width: width, Height: height, Unit: unit},
	})
	if err != nil {
		s.log.Errorw("failed to update dimensions", "id", s.FloorplanID, "error", err)
		s.err = MsgDimensionsFailed
		return err
	}

	s.Width = &width
	s.Height = &height
	s.MeasurementUnit = unit
	return nil
}

// UpdateBackground assigns the background image, nil removes it, and reloads
// the floorplan afterwards.
func (s *Session) UpdateBackground(ctx context.Context, imageID *string) error {
	if s.FloorplanID == "" {
		s.log.Warn("cannot update background: no floorplan loaded")
		return nil
	}
	s.err = ""

	err := s.backend.PatchFloorplan(ctx, s.FloorplanID, &floorplan.FloorplanPatch{
		Canvas:     s.canvas(),
		Background: &floorplan.BackgroundChange{ImageID: imageID},
	})
	if err == nil {
		err = s.Load(ctx, s.FloorplanID)
	}
	if err != nil {
		s.log.Errorw("failed to update background", "id", s.FloorplanID, "error", err)
		s.err = MsgBackgroundFailed
		return err
	}
	return nil
}

// ChangeScale moves all objects to keep their place relative to the boundary,
// sets the new scale factor and rebuilds the boundary if the dimensions are known.
func (s *Session) ChangeScale(newScale float64) error {
	if newScale <= 0 {
		return fmt.Errorf("scale factor must be positive, got %v", newScale)
	}
	if newScale == s.ScaleFactor {
		return nil
	}

	s.editor.ScaleObjectPositions(s.ScaleFactor, newScale)
	s.ScaleFactor = newScale

	if dims, ok := s.Dimensions(); ok {
		s.editor.SetFloorplanBoundary(dims.Width, dims.Height, dims.Unit, s.ScaleFactor)
	}
	return nil
}

// SetDimensions changes the local dimensions and scale factor and rebuilds the boundary.
func (s *Session) SetDimensions(width, height float64, unit floorplan.Unit, scaleFactor float64) {
	s.Width = &width
	s.Height = &height
	s.MeasurementUnit = unit
	s.ScaleFactor = orDefault(scaleFactor)

	s.editor.SetFloorplanBoundary(width, height, unit, s.ScaleFactor)
}

func (s *Session) canvas() *floorplan.Canvas {
	c := floorplan.NewCanvas(s.Store().Objects())
	c.Scale = s.scaleSettings()
	return c
}

func (s *Session) scaleSettings() *floorplan.ScaleSettings {
	return &floorplan.ScaleSettings{
		ScaleFactor:       s.ScaleFactor,
		RackScaleFactor:   s.RackScaleFactor,
		DeviceScaleFactor: s.DeviceScaleFactor,
	}
}

// firstPositive returns the first positive scale factor, the default if there is none.
func firstPositive(scaleFactors ...float64) float64 {
	for _, f := range scaleFactors {
		if f > 0 {
			return f
		}
	}
	return floorplan.DefaultScaleFactor
}

func orDefault(scaleFactor float64) float64 {
	if scaleFactor <= 0 {
		return floorplan.DefaultScaleFactor
	}
	return scaleFactor
}
