package floorplan

import (
	"encoding/json"
	"strings"
	"time"
)

// EnvelopeVersion is written into every persisted canvas. It is a compatibility
// marker for other consumers of the canvas and not interpreted here.
const EnvelopeVersion = "6.0.0"

// Entity is an interface that allows metadata management of entities in the datastore.
type Entity interface {
	GetID() string
	SetID(id string)
	GetChanged() time.Time
	SetChanged(changed time.Time)
	GetCreated() time.Time
	SetCreated(created time.Time)
}

// Base implements common fields for most basic entity types (not all).
type Base struct {
	ID          string    `json:"id" description:"a unique ID" unique:"true" rethinkdb:"id,omitempty"`
	Name        string    `json:"name" description:"the readable name" optional:"true" rethinkdb:"name"`
	Description string    `json:"description,omitempty" description:"a description for this entity" optional:"true" rethinkdb:"description"`
	Created     time.Time `json:"created" description:"the creation time of this entity" optional:"true" readOnly:"true" rethinkdb:"created"`
	Changed     time.Time `json:"changed" description:"the last changed timestamp" optional:"true" readOnly:"true" rethinkdb:"changed"`
}

// GetID returns the ID of the entity
func (b *Base) GetID() string {
	return b.ID
}

// SetID sets the ID of the entity
func (b *Base) SetID(id string) {
	b.ID = id
}

// GetChanged returns the last changed timestamp of the entity
func (b *Base) GetChanged() time.Time {
	return b.Changed
}

// SetChanged sets the last changed timestamp of the entity
func (b *Base) SetChanged(changed time.Time) {
	b.Changed = changed
}

// GetCreated returns the creation timestamp of the entity
func (b *Base) GetCreated() time.Time {
	return b.Created
}

// SetCreated sets the creation timestamp of the entity
func (b *Base) SetCreated(created time.Time) {
	b.Created = created
}

// Image is a background image which can be assigned to a floorplan.
type Image struct {
	Base
	File        string `json:"file,omitempty" rethinkdb:"file"`
	ExternalURL string `json:"external_url,omitempty" rethinkdb:"external_url"`
	Filename    string `json:"filename,omitempty" rethinkdb:"filename"`
	Comments    string `json:"comments,omitempty" rethinkdb:"comments"`
}

// Floorplan is the persisted floorplan of a site or location.
type Floorplan struct {
	Base
	SiteID            string    `json:"site_id,omitempty" rethinkdb:"site_id"`
	LocationID        string    `json:"location_id,omitempty" rethinkdb:"location_id"`
	AssignedImageID   *string   `json:"assigned_image_id" rethinkdb:"assigned_image_id"`
	AssignedImage     *Image    `json:"assigned_image,omitempty" rethinkdb:"-"`
	Width             *float64  `json:"width" rethinkdb:"width"`
	Height            *float64  `json:"height" rethinkdb:"height"`
	MeasurementUnit   Unit      `json:"measurement_unit" rethinkdb:"measurement_unit"`
	ScaleFactor       float64   `json:"scale_factor,omitempty" rethinkdb:"scale_factor"`
	RackScaleFactor   float64   `json:"rack_scale_factor,omitempty" rethinkdb:"rack_scale_factor"`
	DeviceScaleFactor float64   `json:"device_scale_factor,omitempty" rethinkdb:"device_scale_factor"`
	Canvas            RawCanvas `json:"canvas" rethinkdb:"canvas"`
}

// Floorplans is a list of floorplans.
type Floorplans []Floorplan

// Dimensions returns the physical dimensions of the floorplan if width, height and unit are set.
func (f *Floorplan) Dimensions() (PhysicalDimensions, bool) {
	if f.Width == nil || f.Height == nil || f.MeasurementUnit == "" {
		return PhysicalDimensions{}, false
	}
	return PhysicalDimensions{Width: *f.Width, Height: *f.Height, Unit: f.MeasurementUnit}, true
}

// Canvas is the persisted envelope of the canvas objects. The scale settings the
// objects were laid out with travel along, backends which have no columns for
// them still round trip them this way.
type Canvas struct {
	Version string         `json:"version"`
	Scale   *ScaleSettings `json:"scale,omitempty"`
	Objects Objects        `json:"objects"`
}

// NewCanvas wraps the objects into an envelope of the current version.
func NewCanvas(objects Objects) *Canvas {
	if objects == nil {
		objects = Objects{}
	}
	return &Canvas{Version: EnvelopeVersion, Objects: objects}
}

// RawCanvas is the canvas as it is stored. It holds either a JSON object or a JSON
// string which contains the JSON object.
type RawCanvas string

// UnmarshalJSON keeps the raw JSON value.
func (c *RawCanvas) UnmarshalJSON(data []byte) error {
	*c = RawCanvas(data)
	return nil
}

// MarshalJSON writes the raw JSON value. Content which is not valid JSON is written as string.
func (c RawCanvas) MarshalJSON() ([]byte, error) {
	if strings.TrimSpace(string(c)) == "" {
		return []byte("null"), nil
	}
	if json.Valid([]byte(c)) {
		return []byte(c), nil
	}
	return json.Marshal(string(c))
}

// EncodeCanvas serializes the canvas envelope.
func EncodeCanvas(canvas *Canvas) (RawCanvas, error) {
	data, err := json.Marshal(canvas)
	if err != nil {
		return "", err
	}
	return RawCanvas(data), nil
}

// Decode parses the canvas. An empty canvas or one without an objects array
// results in an empty object collection.
func (c RawCanvas) Decode() (*Canvas, error) {
	raw := strings.TrimSpace(string(c))
	if raw == "" || raw == "null" {
		return &Canvas{Objects: Objects{}}, nil
	}

	if strings.HasPrefix(raw, `"`) {
		var inner string
		err := json.Unmarshal([]byte(raw), &inner)
		if err != nil {
			return nil, err
		}
		raw = inner
	}

	var canvas Canvas
	err := json.Unmarshal([]byte(raw), &canvas)
	if err != nil {
		return nil, err
	}
	if canvas.Objects == nil {
		canvas.Objects = Objects{}
	}
	return &canvas, nil
}

// BackgroundChange assigns a background image, a nil ImageID removes it.
type BackgroundChange struct {
	ImageID *string
}

// ScaleSettings are the scale factors of a floorplan.
type ScaleSettings struct {
	ScaleFactor       float64 `json:"scale_factor"`
	RackScaleFactor   float64 `json:"rack_scale_factor"`
	DeviceScaleFactor float64 `json:"device_scale_factor"`
}

// FloorplanPatch describes the fields written by a partial update of a floorplan.
// Nil fields are left untouched.
type FloorplanPatch struct {
	Canvas     *Canvas
	Dimensions *PhysicalDimensions
	Background *BackgroundChange
	Scale      *ScaleSettings
}

// Apply merges the patch into a copy of the floorplan.
func (p *FloorplanPatch) Apply(f Floorplan) (Floorplan, error) {
	if p.Canvas != nil {
		raw, err := EncodeCanvas(p.Canvas)
		if err != nil {
			return f, err
		}
		f.Canvas = raw
	}
	if p.Dimensions != nil {
		w, h := p.Dimensions.Width, p.Dimensions.Height
		f.Width = &w
		f.Height = &h
		f.MeasurementUnit = p.Dimensions.Unit
	}
	if p.Background != nil {
		f.AssignedImageID = p.Background.ImageID
		f.AssignedImage = nil
	}
	if p.Scale != nil {
		f.ScaleFactor = p.Scale.ScaleFactor
		f.RackScaleFactor = p.Scale.RackScaleFactor
		f.DeviceScaleFactor = p.Scale.DeviceScaleFactor
	}
	return f, nil
}
