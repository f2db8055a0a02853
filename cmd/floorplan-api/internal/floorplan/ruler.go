package floorplan

import (
	"math"
	"strconv"
)

// RulerStep is the distance between two ruler ticks in real world units.
const RulerStep = 2

// MaxRulerTicks limits the ticks of one ruler, longer rulers end at the last tick.
const MaxRulerTicks = 1000

const defaultRulerExtent = 100

// Tick is a labelled ruler mark, the position is in canvas pixels relative to the boundary.
type Tick struct {
	Position float64 `json:"position"`
	Label    string  `json:"label"`
}

// Ruler holds the ticks of the horizontal and the vertical ruler.
type Ruler struct {
	Horizontal []Tick `json:"horizontal"`
	Vertical   []Tick `json:"vertical"`
}

// RulerTicks computes the rulers for a floorplan. Missing, non-positive or
// non-finite dimensions default to 100 meters, a missing scale factor to the
// default scale.
func RulerTicks(width, height *float64, unit Unit, scaleFactor float64) Ruler {
	w, h := rulerExtent(width), rulerExtent(height)
	if unit == "" {
		unit = UnitMeters
	}
	if scaleFactor <= 0 || math.IsNaN(scaleFactor) || math.IsInf(scaleFactor, 0) {
		scaleFactor = DefaultScaleFactor
	}

	step := RealWorldToCanvas(PhysicalDimensions{Width: RulerStep, Height: RulerStep, Unit: unit}, scaleFactor)

	return Ruler{
		Horizontal: ticks(w, step.Width, unit),
		Vertical:   ticks(h, step.Height, unit),
	}
}

func rulerExtent(v *float64) float64 {
	if v == nil || *v <= 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return defaultRulerExtent
	}
	return *v
}

func ticks(extent, stepPixels float64, unit Unit) []Tick {
	n := MaxRulerTicks - 1
	if steps := math.Ceil(extent / RulerStep); steps < float64(n) {
		n = int(steps)
	}
	res := make([]Tick, 0, n+1)
	for i := 0; i <= n; i++ {
		res = append(res, Tick{
			Position: float64(i) * stepPixels,
			Label:    strconv.FormatFloat(float64(i*RulerStep), 'f', -1, 64) + string(unit),
		})
	}
	return res
}
