package floorplan

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// BasePixelsPerMeter is the amount of canvas pixels for one meter at scale 1:100.
	BasePixelsPerMeter = 100
	// DefaultScaleFactor is used whenever no scale factor was chosen.
	DefaultScaleFactor = 100
	// MaxDimension is the largest width or height a floorplan accepts, in any unit.
	MaxDimension = 100000
	// MinVisibleGridSize is the smallest on-screen grid spacing in pixels which is still drawn.
	MinVisibleGridSize = 5

	// rack footprint in millimeters used when the rack has no outer dimensions
	defaultRackOuterWidth = 600
	defaultRackOuterDepth = 800

	// DeviceWidth is the standard 19" device width in millimeters.
	DeviceWidth = 482.6
	// DeviceDepth is the default device depth in millimeters.
	DeviceDepth = 600
)

var (
	// ScaleFactors are the standard scale factors offered to users.
	ScaleFactors = []float64{50, 75, 100, 125, 150, 200}

	// MetricGridSizes are the grid spacings offered for metric floorplans, in meters.
	MetricGridSizes = []float64{0.5, 1, 2, 5, 10}
	// ImperialGridSizes are the grid spacings offered for imperial floorplans, in feet.
	ImperialGridSizes = []float64{1, 2, 5, 10, 20}
)

// PhysicalDimensions is a real world rectangular extent.
type PhysicalDimensions struct {
	Width  float64 `json:"width" description:"the width in the given unit"`
	Height float64 `json:"height" description:"the height in the given unit"`
	Unit   Unit    `json:"unit" description:"the measurement unit" enum:"m|ft|in|cm"`
}

// CanvasDimensions is a rectangular extent in canvas pixels.
type CanvasDimensions struct {
	Width  float64 `json:"width" description:"the width in pixels"`
	Height float64 `json:"height" description:"the height in pixels"`
}

// DisplayScale returns the pixels per meter for the given scale factor.
// A smaller scale factor results in a larger rendering.
func DisplayScale(scaleFactor float64) float64 {
	return BasePixelsPerMeter * (100 / scaleFactor)
}

// RealWorldToCanvas converts physical dimensions to canvas pixels, rounded to two decimals.
func RealWorldToCanvas(physical PhysicalDimensions, scaleFactor float64) CanvasDimensions {
	displayScale := DisplayScale(scaleFactor)

	return CanvasDimensions{
		Width:  round2(ToMeters(physical.Width, physical.Unit) * displayScale),
		Height: round2(ToMeters(physical.Height, physical.Unit) * displayScale),
	}
}

// CanvasToRealWorld converts canvas pixels to physical dimensions in the target unit,
// rounded to two decimals.
func CanvasToRealWorld(canvas CanvasDimensions, target Unit, scaleFactor float64) PhysicalDimensions {
	displayScale := DisplayScale(scaleFactor)

	return PhysicalDimensions{
		Width:  round2(FromMeters(canvas.Width/displayScale, target)),
		Height: round2(FromMeters(canvas.Height/displayScale, target)),
		Unit:   target,
	}
}

// GridSize returns the pixel spacing of grid lines for a grid given in real world units.
func GridSize(physicalGridSize float64, unit Unit, scaleFactor float64) float64 {
	return ToMeters(physicalGridSize, unit) * DisplayScale(scaleFactor)
}

// DefaultGridSize returns the default grid spacing for a unit: one meter for
// metric units and five feet otherwise.
func DefaultGridSize(unit Unit) float64 {
	if unit.Metric() {
		return 1
	}
	return 5
}

// GridVisible returns true if a grid with the given pixel spacing should be drawn at this zoom level.
func GridVisible(gridSize, zoom float64) bool {
	return gridSize*zoom >= MinVisibleGridSize
}

// RackDimensionsToCanvas converts a rack footprint given in millimeters to canvas pixels.
func RackDimensionsToCanvas(widthMM, depthMM, rackScaleFactor float64) CanvasDimensions {
	return millimetersToCanvas(widthMM, depthMM, rackScaleFactor)
}

// DeviceDimensionsToCanvas converts a device footprint given in millimeters to canvas pixels.
// The device scale factor is independent from the floorplan scale factor.
func DeviceDimensionsToCanvas(widthMM, depthMM, deviceScaleFactor float64) CanvasDimensions {
	return millimetersToCanvas(widthMM, depthMM, deviceScaleFactor)
}

func millimetersToCanvas(widthMM, depthMM, scaleFactor float64) CanvasDimensions {
	displayScale := DisplayScale(scaleFactor)
	return CanvasDimensions{
		Width:  widthMM / 1000 * displayScale,
		Height: depthMM / 1000 * displayScale,
	}
}

// RackFootprint returns the outer width and depth of a rack in millimeters,
// falling back to a standard footprint for missing values.
func RackFootprint(rack Rack) (widthMM float64, depthMM float64) {
	widthMM, depthMM = defaultRackOuterWidth, defaultRackOuterDepth
	if rack.OuterWidth != nil && *rack.OuterWidth != 0 {
		widthMM = *rack.OuterWidth
	}
	if rack.OuterDepth != nil && *rack.OuterDepth != 0 {
		depthMM = *rack.OuterDepth
	}
	return widthMM, depthMM
}

// CalculateOptimalScale returns the standard scale factor which fits the physical
// dimensions best into a canvas of the given size. The more restrictive axis wins,
// on equal distance the first standard scale factor is taken.
func CalculateOptimalScale(canvasWidth, canvasHeight float64, physical PhysicalDimensions) float64 {
	scaleForWidth := ToMeters(physical.Width, physical.Unit) * BasePixelsPerMeter * 100 / canvasWidth
	scaleForHeight := ToMeters(physical.Height, physical.Unit) * BasePixelsPerMeter * 100 / canvasHeight

	suggested := math.Max(scaleForWidth, scaleForHeight)

	best := ScaleFactors[0]
	for _, candidate := range ScaleFactors[1:] {
		if math.Abs(candidate-suggested) < math.Abs(best-suggested) {
			best = candidate
		}
	}
	return best
}

// ScaleRatio returns the factor by which pixel positions change when switching
// from the old to the new scale factor.
func ScaleRatio(oldScale, newScale float64) float64 {
	return oldScale / newScale
}

// IsStandardScale returns true if the scale factor is one of the standard scale factors.
func IsStandardScale(scaleFactor float64) bool {
	for _, s := range ScaleFactors {
		if s == scaleFactor {
			return true
		}
	}
	return false
}

// FormatScale returns the scale in ratio notation, e.g. "1:100".
func FormatScale(scaleFactor float64) string {
	return "1:" + strconv.FormatFloat(scaleFactor, 'f', -1, 64)
}

// FormatDimension returns the value with the given precision followed by the unit, e.g. "15.24 m".
func FormatDimension(value float64, unit Unit, precision int) string {
	return fmt.Sprintf("%.*f %s", precision, value, unit)
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e15 {
		return v
	}
	return math.Round(v*100) / 100
}
