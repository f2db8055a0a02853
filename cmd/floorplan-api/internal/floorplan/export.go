package floorplan

import (
	"fmt"
	"math"
	"path"
	"strings"
	"time"
)

// ExportFormat is the output format of an export.
type ExportFormat string

// The supported export formats.
const (
	FormatPNG  ExportFormat = "png"
	FormatJPEG ExportFormat = "jpeg"
	FormatPDF  ExportFormat = "pdf"
)

// PaperSize is a paper format for pdf exports.
type PaperSize string

// The supported paper sizes.
const (
	PaperA4     PaperSize = "a4"
	PaperA3     PaperSize = "a3"
	PaperLetter PaperSize = "letter"
	PaperLegal  PaperSize = "legal"
)

// Orientation of the pdf page.
type Orientation string

// The page orientations.
const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

const (
	defaultExportScale   = 2
	defaultJPEGQuality   = 0.9
	pageMargin           = 10
	exportUploadPrefix   = "netbox-floorplan/"
	exportFilenamePrefix = "floorplan-"
)

// portrait paper sizes in millimeters
var paperSizes = map[PaperSize]struct{ width, height float64 }{
	PaperA4:     {210, 297},
	PaperA3:     {297, 420},
	PaperLetter: {215.9, 279.4},
	PaperLegal:  {215.9, 355.6},
}

// BoundingBox is a pixel rectangle.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ContentBounds returns the smallest rectangle which contains all objects.
// It returns false for an empty collection.
func ContentBounds(objects Objects) (BoundingBox, bool) {
	if len(objects) == 0 {
		return BoundingBox{}, false
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, o := range objects {
		e := Extent(o)
		minX = math.Min(minX, e.X)
		minY = math.Min(minY, e.Y)
		maxX = math.Max(maxX, e.X+e.Width)
		maxY = math.Max(maxY, e.Y+e.Height)
	}

	return BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// ExportRegion returns the region to export. Without content or for a degenerated
// content rectangle the whole stage is exported.
func ExportRegion(objects Objects, stage CanvasDimensions) BoundingBox {
	region := BoundingBox{Width: stage.Width, Height: stage.Height}
	bounds, ok := ContentBounds(objects)
	if !ok {
		return region
	}
	region.X, region.Y = bounds.X, bounds.Y
	if bounds.Width > 0 {
		region.Width = bounds.Width
	}
	if bounds.Height > 0 {
		region.Height = bounds.Height
	}
	return region
}

// PaperDimensions returns the portrait size of the paper in millimeters,
// unknown sizes fall back to a4.
func PaperDimensions(size PaperSize) (width float64, height float64) {
	d, ok := paperSizes[size]
	if !ok {
		d = paperSizes[PaperA4]
	}
	return d.width, d.height
}

// ExportOptions control an export.
type ExportOptions struct {
	Format      ExportFormat `json:"format" enum:"png|jpeg|pdf"`
	Quality     float64      `json:"quality,omitempty" optional:"true"`
	Scale       float64      `json:"scale,omitempty" optional:"true"`
	PaperSize   PaperSize    `json:"paperSize,omitempty" optional:"true" enum:"a4|a3|letter|legal"`
	Orientation Orientation  `json:"orientation,omitempty" optional:"true" enum:"portrait|landscape"`
	Filename    string       `json:"filename,omitempty" optional:"true"`
}

// Complete fills in the defaults of the format and appends the file extension.
func (o ExportOptions) Complete(t time.Time) (ExportOptions, error) {
	if o.Filename == "" {
		o.Filename = ExportFilename(t)
	}

	switch o.Format {
	case FormatPNG:
		o.Scale = orDefaultFloat(o.Scale, defaultExportScale)
		o.Filename += ".png"
	case FormatJPEG:
		o.Quality = orDefaultFloat(o.Quality, defaultJPEGQuality)
		o.Scale = orDefaultFloat(o.Scale, defaultExportScale)
		o.Filename += ".jpg"
	case FormatPDF:
		if o.PaperSize == "" {
			o.PaperSize = PaperA4
		}
		if o.Orientation == "" {
			o.Orientation = Landscape
		}
		o.Scale = defaultExportScale
		o.Filename += ".pdf"
	default:
		return o, fmt.Errorf("unsupported export format: %s", o.Format)
	}

	return o, nil
}

// PageLayout places the exported content on a pdf page, all values in millimeters.
type PageLayout struct {
	PageWidth  float64 `json:"pageWidth"`
	PageHeight float64 `json:"pageHeight"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Scale      float64 `json:"scale"`
}

// FitToPage scales content of the given pixel size into the printable area of
// the page and centers it.
func FitToPage(contentWidth, contentHeight float64, size PaperSize, orientation Orientation) PageLayout {
	w, h := PaperDimensions(size)
	pageWidth, pageHeight := h, w
	if orientation == Portrait {
		pageWidth, pageHeight = w, h
	}

	scale := math.Min((pageWidth-2*pageMargin)/contentWidth, (pageHeight-2*pageMargin)/contentHeight)
	scaledWidth := contentWidth * scale
	scaledHeight := contentHeight * scale

	return PageLayout{
		PageWidth:  pageWidth,
		PageHeight: pageHeight,
		X:          (pageWidth - scaledWidth) / 2,
		Y:          (pageHeight - scaledHeight) / 2,
		Width:      scaledWidth,
		Height:     scaledHeight,
		Scale:      scale,
	}
}

// ExportFilename returns the default export filename without extension.
func ExportFilename(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05")
	return exportFilenamePrefix + strings.ReplaceAll(ts, ":", "-")
}

// UploadKey returns the object key of an uploaded export file.
func UploadKey(siteID, filename string) string {
	filename = path.Base(filename)
	if siteID == "" {
		return exportUploadPrefix + filename
	}
	return exportUploadPrefix + siteID + "_" + filename
}

// ContentType returns the mime type of the exported file.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

func orDefaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
