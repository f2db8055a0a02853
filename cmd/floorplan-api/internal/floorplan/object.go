package floorplan

import "encoding/json"

// ObjectType tags the variant of a canvas object.
type ObjectType string

// The canvas object variants.
const (
	TypeWall     ObjectType = "wall"
	TypeArea     ObjectType = "area"
	TypeLabel    ObjectType = "label"
	TypeRack     ObjectType = "rack"
	TypeDevice   ObjectType = "device"
	TypeBoundary ObjectType = "floorplan_boundary"
)

// ObjectTypes lists all canvas object variants.
var ObjectTypes = []ObjectType{TypeWall, TypeArea, TypeLabel, TypeRack, TypeDevice, TypeBoundary}

// BoundaryID is the fixed identifier of the floorplan boundary.
const BoundaryID = "floorplan_boundary"

// Object is a canvas object. The set of implementations is closed, use a type
// switch over *WallObject, *AreaObject, *LabelObject, *RackObject, *DeviceObject
// and *BoundaryObject to handle the variants.
type Object interface {
	Base() *ObjectBase
	Clone() Object
	isObject()
}

// ObjectBase holds the fields every canvas object has.
type ObjectBase struct {
	ID        string     `json:"id"`
	Type      ObjectType `json:"type"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Rotation  float64    `json:"rotation,omitempty"`
	Draggable bool       `json:"draggable"`
}

// Base returns the common fields of the object.
func (b *ObjectBase) Base() *ObjectBase {
	return b
}

// Rect holds the fields of rectangular objects.
type Rect struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// WallObject is a wall segment.
type WallObject struct {
	ObjectBase
	Rect
}

// AreaObject is a translucent area.
type AreaObject struct {
	ObjectBase
	Rect
	Opacity float64 `json:"opacity"`
}

// LabelObject is free text, its size is given by the text metrics of the renderer.
type LabelObject struct {
	ObjectBase
	Text       string  `json:"text"`
	FontSize   float64 `json:"fontSize"`
	Fill       string  `json:"fill"`
	FontFamily string  `json:"fontFamily"`
}

// AssetLabels are the texts shown on a rack or device. Status, role and tenant
// are only set when the corresponding information is requested and available.
type AssetLabels struct {
	Name   string  `json:"name"`
	Status *string `json:"status,omitempty"`
	Role   *string `json:"role,omitempty"`
	Tenant *string `json:"tenant,omitempty"`
}

func (l AssetLabels) clone() AssetLabels {
	l.Status = clonePointer(l.Status)
	l.Role = clonePointer(l.Role)
	l.Tenant = clonePointer(l.Tenant)
	return l
}

// RackObject places a rack of the asset inventory.
type RackObject struct {
	ObjectBase
	Rect
	RackID   int         `json:"rackId"`
	RackName string      `json:"rackName"`
	RackData Rack        `json:"rackData"`
	Labels   AssetLabels `json:"labels"`
}

// DeviceObject places a device of the asset inventory.
type DeviceObject struct {
	ObjectBase
	Rect
	DeviceID   int         `json:"deviceId"`
	DeviceName string      `json:"deviceName"`
	DeviceData Device      `json:"deviceData"`
	Labels     AssetLabels `json:"labels"`
}

// BoundaryObject marks the outer bounds of the physical floorplan.
type BoundaryObject struct {
	ObjectBase
	Rect
}

func (*WallObject) isObject()     {}
func (*AreaObject) isObject()     {}
func (*LabelObject) isObject()    {}
func (*RackObject) isObject()     {}
func (*DeviceObject) isObject()   {}
func (*BoundaryObject) isObject() {}

// Clone returns a copy of the wall.
func (o *WallObject) Clone() Object {
	c := *o
	return &c
}

// Clone returns a copy of the area.
func (o *AreaObject) Clone() Object {
	c := *o
	return &c
}

// Clone returns a copy of the label.
func (o *LabelObject) Clone() Object {
	c := *o
	return &c
}

// Clone returns a copy of the rack including its denormalized rack record.
func (o *RackObject) Clone() Object {
	c := *o
	c.RackData = o.RackData.Clone()
	c.Labels = o.Labels.clone()
	return &c
}

// Clone returns a copy of the device including its denormalized device record.
func (o *DeviceObject) Clone() Object {
	c := *o
	c.DeviceData = o.DeviceData.Clone()
	c.Labels = o.Labels.clone()
	return &c
}

// Clone returns a copy of the boundary.
func (o *BoundaryObject) Clone() Object {
	c := *o
	return &c
}

// Objects is an ordered collection of canvas objects. The order is the drawing order.
type Objects []Object

// Clone returns a deep copy of the collection.
func (os Objects) Clone() Objects {
	res := make(Objects, 0, len(os))
	for _, o := range os {
		res = append(res, o.Clone())
	}
	return res
}

// CountByType returns the amount of objects per variant.
func (os Objects) CountByType() map[ObjectType]int {
	res := map[ObjectType]int{}
	for _, o := range os {
		res[o.Base().Type]++
	}
	return res
}

// UnmarshalJSON decodes the objects by their type tag. Entries which cannot
// be decoded, including unknown type tags, are skipped and reported as a warning.
func (os *Objects) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	err := json.Unmarshal(data, &raws)
	if err != nil {
		return err
	}

	res := Objects{}
	for i, raw := range raws {
		o, err := UnmarshalObject(raw)
		if err != nil {
			log.Warnw("skipping canvas object", "index", i, "unknown-type", IsUnknownObjectType(err), "error", err)
			continue
		}
		res = append(res, o)
	}

	*os = res
	return nil
}

// UnmarshalObject decodes a single canvas object by its type tag.
func UnmarshalObject(data []byte) (Object, error) {
	var tag struct {
		Type ObjectType `json:"type"`
	}
	err := json.Unmarshal(data, &tag)
	if err != nil {
		return nil, err
	}

	var o Object
	switch tag.Type {
	case TypeWall:
		o = &WallObject{}
	case TypeArea:
		o = &AreaObject{}
	case TypeLabel:
		o = &LabelObject{}
	case TypeRack:
		o = &RackObject{}
	case TypeDevice:
		o = &DeviceObject{}
	case TypeBoundary:
		o = &BoundaryObject{}
	default:
		return nil, unknownObjectType(tag.Type)
	}

	err = json.Unmarshal(data, o)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Patch is a partial update of a canvas object. Fields which do not exist on the
// patched variant are ignored, id and type can not be changed.
type Patch struct {
	X           *float64 `json:"x,omitempty" optional:"true"`
	Y           *float64 `json:"y,omitempty" optional:"true"`
	Rotation    *float64 `json:"rotation,omitempty" optional:"true"`
	Draggable   *bool    `json:"draggable,omitempty" optional:"true"`
	Width       *float64 `json:"width,omitempty" optional:"true"`
	Height      *float64 `json:"height,omitempty" optional:"true"`
	Fill        *string  `json:"fill,omitempty" optional:"true"`
	Stroke      *string  `json:"stroke,omitempty" optional:"true"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" optional:"true"`
	Opacity     *float64 `json:"opacity,omitempty" optional:"true"`
	Text        *string  `json:"text,omitempty" optional:"true"`
	FontSize    *float64 `json:"fontSize,omitempty" optional:"true"`
	FontFamily  *string  `json:"fontFamily,omitempty" optional:"true"`
}

// Apply returns a copy of the object with the patch merged in.
func (p Patch) Apply(o Object) Object {
	c := o.Clone()

	b := c.Base()
	setFloat(&b.X, p.X)
	setFloat(&b.Y, p.Y)
	setFloat(&b.Rotation, p.Rotation)
	if p.Draggable != nil {
		b.Draggable = *p.Draggable
	}

	switch v := c.(type) {
	case *WallObject:
		p.applyRect(&v.Rect)
	case *AreaObject:
		p.applyRect(&v.Rect)
		setFloat(&v.Opacity, p.Opacity)
	case *LabelObject:
		setString(&v.Text, p.Text)
		setFloat(&v.FontSize, p.FontSize)
		setString(&v.Fill, p.Fill)
		setString(&v.FontFamily, p.FontFamily)
	case *RackObject:
		p.applyRect(&v.Rect)
	case *DeviceObject:
		p.applyRect(&v.Rect)
	case *BoundaryObject:
		p.applyRect(&v.Rect)
	}

	return c
}

func (p Patch) applyRect(r *Rect) {
	setFloat(&r.Width, p.Width)
	setFloat(&r.Height, p.Height)
	setString(&r.Fill, p.Fill)
	setString(&r.Stroke, p.Stroke)
	setFloat(&r.StrokeWidth, p.StrokeWidth)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Extent returns the pixel rectangle an object occupies. Labels have no intrinsic
// size and occupy their anchor point only.
func Extent(o Object) BoundingBox {
	b := o.Base()
	box := BoundingBox{X: b.X, Y: b.Y}
	switch v := o.(type) {
	case *WallObject:
		box.Width, box.Height = v.Width, v.Height
	case *AreaObject:
		box.Width, box.Height = v.Width, v.Height
	case *RackObject:
		box.Width, box.Height = v.Width, v.Height
	case *DeviceObject:
		box.Width, box.Height = v.Width, v.Height
	case *BoundaryObject:
		box.Width, box.Height = v.Width, v.Height
	case *LabelObject:
	}
	return box
}
