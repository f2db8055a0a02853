package floorplan

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Default colors of the object variants.
const (
	ColorWall     = "#6c757d"
	ColorArea     = "#0d6efd"
	ColorText     = "#000000"
	ColorRack     = "#28a745"
	ColorDevice   = "#17a2b8"
	ColorBoundary = "#dee2e6"

	colorStroke      = "#000000"
	colorTransparent = "transparent"

	// DefaultLabelText is used for labels created without text.
	DefaultLabelText = "Label"
	// UnnamedDevice is shown for devices without a name.
	UnnamedDevice = "Unnamed Device"

	defaultPosition = 100
)

// StatusColors maps an asset status value to its fill color. Lookup is case sensitive.
var StatusColors = map[string]string{
	"active":          "#28a745",
	"planned":         "#6c757d",
	"staged":          "#17a2b8",
	"failed":          "#dc3545",
	"decommissioning": "#ffc107",
	"offline":         "#6c757d",
}

var (
	idCounter atomic.Uint64
	now       = time.Now
)

// GenerateID returns an identifier which is unique for the lifetime of the process.
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, now().UnixMilli(), idCounter.Add(1)-1)
}

// NewWall creates a wall with default geometry.
func NewWall() *WallObject {
	return &WallObject{
		ObjectBase: newBase(TypeWall, defaultPosition, defaultPosition),
		Rect: Rect{
			Width:       10,
			Height:      100,
			Fill:        ColorWall,
			Stroke:      colorStroke,
			StrokeWidth: 1,
		},
	}
}

// NewArea creates an area with default geometry.
func NewArea() *AreaObject {
	return &AreaObject{
		ObjectBase: newBase(TypeArea, defaultPosition, defaultPosition),
		Rect: Rect{
			Width:       100,
			Height:      100,
			Fill:        ColorArea,
			Stroke:      ColorArea,
			StrokeWidth: 2,
		},
		Opacity: 0.3,
	}
}

// NewLabel creates a text label. An empty text results in the default text,
// an empty color in the default text color.
func NewLabel(text, color string) *LabelObject {
	if text == "" {
		text = DefaultLabelText
	}
	return &LabelObject{
		ObjectBase: newBase(TypeLabel, defaultPosition, defaultPosition),
		Text:       text,
		FontSize:   16,
		Fill:       orDefault(color, ColorText),
		FontFamily: "Arial",
	}
}

// NewSimpleRack creates a rack showing its name and status.
func NewSimpleRack(rack Rack, dims CanvasDimensions, color string) *RackObject {
	return newRack(rack, dims, color, AssetLabels{
		Name:   rack.Name,
		Status: rack.Status.label(),
	})
}

// NewAdvancedRack creates a rack showing its name, status, role and tenant.
// Role and tenant are omitted if the rack has none.
func NewAdvancedRack(rack Rack, dims CanvasDimensions, color string) *RackObject {
	return newRack(rack, dims, color, AssetLabels{
		Name:   rack.Name,
		Status: rack.Status.label(),
		Role:   rack.Role.name(),
		Tenant: rack.Tenant.name(),
	})
}

// NewSimpleDevice creates a device showing its name and status.
func NewSimpleDevice(device Device, dims CanvasDimensions, color string) *DeviceObject {
	return newDevice(device, dims, color, AssetLabels{
		Name:   deviceName(device),
		Status: device.Status.label(),
	})
}

// NewAdvancedDevice creates a device showing its name, status, role and tenant.
// Role and tenant are omitted if the device has none.
func NewAdvancedDevice(device Device, dims CanvasDimensions, color string) *DeviceObject {
	return newDevice(device, dims, color, AssetLabels{
		Name:   deviceName(device),
		Status: device.Status.label(),
		Role:   device.DeviceRole.name(),
		Tenant: device.Tenant.name(),
	})
}

// NewFloorplanBoundary creates the boundary of the floorplan. It always carries BoundaryID.
func NewFloorplanBoundary(width, height float64) *BoundaryObject {
	return &BoundaryObject{
		ObjectBase: ObjectBase{
			ID:        BoundaryID,
			Type:      TypeBoundary,
			Draggable: true,
		},
		Rect: Rect{
			Width:       width,
			Height:      height,
			Fill:        colorTransparent,
			Stroke:      ColorBoundary,
			StrokeWidth: 2,
		},
	}
}

// FillColor resolves the fill of a rack or device: an explicit color wins over
// the status color which wins over the default.
func FillColor(color string, status *Status, fallback string) string {
	if color != "" {
		return color
	}
	if c, ok := StatusColors[status.value()]; ok {
		return c
	}
	return fallback
}

func newRack(rack Rack, dims CanvasDimensions, color string, labels AssetLabels) *RackObject {
	return &RackObject{
		ObjectBase: newBase(TypeRack, defaultPosition, defaultPosition),
		Rect:       assetRect(dims, FillColor(color, rack.Status, ColorRack)),
		RackID:     rack.ID,
		RackName:   rack.Name,
		RackData:   rack,
		Labels:     labels,
	}
}

func newDevice(device Device, dims CanvasDimensions, color string, labels AssetLabels) *DeviceObject {
	return &DeviceObject{
		ObjectBase: newBase(TypeDevice, defaultPosition, defaultPosition),
		Rect:       assetRect(dims, FillColor(color, device.Status, ColorDevice)),
		DeviceID:   device.ID,
		DeviceName: deviceName(device),
		DeviceData: device,
		Labels:     labels,
	}
}

func assetRect(dims CanvasDimensions, fill string) Rect {
	return Rect{
		Width:       dims.Width,
		Height:      dims.Height,
		Fill:        fill,
		Stroke:      colorStroke,
		StrokeWidth: 2,
	}
}

func newBase(t ObjectType, x, y float64) ObjectBase {
	return ObjectBase{
		ID:        GenerateID(string(t)),
		Type:      t,
		X:         x,
		Y:         y,
		Draggable: true,
	}
}

func deviceName(d Device) string {
	return orDefault(d.Name, UnnamedDevice)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
