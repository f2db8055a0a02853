package v1

import (
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/session"
)

type FloorplanBase struct {
	SiteID          *string           `json:"site_id,omitempty" description:"the site this floorplan belongs to" optional:"true"`
	LocationID      *string           `json:"location_id,omitempty" description:"the location this floorplan belongs to" optional:"true"`
	AssignedImageID *string           `json:"assigned_image_id,omitempty" description:"the id of the background image" optional:"true"`
	AssignedImage   *ImageResponse    `json:"assigned_image,omitempty" description:"the background image" optional:"true"`
	Width           *float64          `json:"width,omitempty" description:"the physical width of the floorplan" optional:"true"`
	Height          *float64          `json:"height,omitempty" description:"the physical height of the floorplan" optional:"true"`
	MeasurementUnit floorplan.Unit    `json:"measurement_unit" description:"the unit of width and height" enum:"m|ft|in|cm"`
	Boundary        *CanvasExtent     `json:"boundary,omitempty" description:"the size of the floorplan on the canvas, only set if the dimensions are known" optional:"true"`
	Scale           ScaleInfo         `json:"scale" description:"the scale settings of the floorplan"`
	Version         string            `json:"version" description:"the version of the stored canvas"`
	Objects         floorplan.Objects `json:"objects" description:"the canvas objects in drawing order"`
}

type ImageResponse struct {
	Common
	File        *string `json:"file,omitempty" description:"the path of the uploaded image" optional:"true"`
	ExternalURL *string `json:"external_url,omitempty" description:"the url of the image" optional:"true"`
	Filename    *string `json:"filename,omitempty" description:"the name of the image file" optional:"true"`
}

type CanvasExtent struct {
	Width  float64 `json:"width" description:"the width in pixels"`
	Height float64 `json:"height" description:"the height in pixels"`
}

type ScaleInfo struct {
	ScaleFactor       float64 `json:"scale_factor" description:"the scale factor of the floorplan, 100 means 1:100"`
	RackScaleFactor   float64 `json:"rack_scale_factor" description:"the scale factor used to size racks"`
	DeviceScaleFactor float64 `json:"device_scale_factor" description:"the scale factor used to size devices"`
	DisplayScale      float64 `json:"display_scale" description:"canvas pixels per meter"`
	Label             string  `json:"label" description:"the scale in the form 1:n"`
	Standard          bool    `json:"standard" description:"true if the scale factor is one of the standard scale factors"`
	GridSize          float64 `json:"grid_size" description:"the default grid spacing in pixels"`
}

type FloorplanResponse struct {
	Common
	FloorplanBase
}

type FloorplanSaveRequest struct {
	Objects floorplan.Objects `json:"objects" description:"the canvas objects which replace the current ones"`
}

type FloorplanDimensionsRequest struct {
	Width  float64        `json:"width" description:"the physical width" minimum:"0" exclusiveMinimum:"true"`
	Height float64        `json:"height" description:"the physical height" minimum:"0" exclusiveMinimum:"true"`
	Unit   floorplan.Unit `json:"unit" description:"the unit of width and height" enum:"m|ft|in|cm"`
}

type FloorplanScaleRequest struct {
	ScaleFactor       float64  `json:"scale_factor" description:"the new scale factor of the floorplan" minimum:"0" exclusiveMinimum:"true"`
	RackScaleFactor   *float64 `json:"rack_scale_factor,omitempty" description:"the new scale factor for racks" optional:"true"`
	DeviceScaleFactor *float64 `json:"device_scale_factor,omitempty" description:"the new scale factor for devices" optional:"true"`
}

type FloorplanBackgroundRequest struct {
	ImageID *string `json:"image_id" description:"the id of the background image, null removes the background" optional:"true"`
}

type ObjectCreateRequest struct {
	Type  floorplan.ObjectType `json:"type" description:"the type of the object to add" enum:"wall|area|label"`
	Text  *string              `json:"text,omitempty" description:"the text of a label" optional:"true"`
	Color *string              `json:"color,omitempty" description:"the fill color of a label" optional:"true"`
}

type AssetPlaceRequest struct {
	IDs      []int   `json:"ids" description:"the ids of the racks or devices to place"`
	Advanced bool    `json:"advanced,omitempty" description:"show status, role and tenant on the placed objects" optional:"true"`
	Color    *string `json:"color,omitempty" description:"the fill color, defaults to the status color" optional:"true"`
}

type MappedAssetsResponse struct {
	RackIDs   []int `json:"rack_ids" description:"the ids of the racks placed on the floorplan"`
	DeviceIDs []int `json:"device_ids" description:"the ids of the devices placed on the floorplan"`
}

type ExportRequest struct {
	floorplan.ExportOptions
	StageWidth  float64 `json:"stage_width,omitempty" description:"the width of the visible stage in pixels, used if the canvas has no content" optional:"true"`
	StageHeight float64 `json:"stage_height,omitempty" description:"the height of the visible stage in pixels, used if the canvas has no content" optional:"true"`
}

type ExportResponse struct {
	SnapshotID  string                  `json:"snapshot_id" description:"the id of the export snapshot"`
	Options     floorplan.ExportOptions `json:"options" description:"the completed export options"`
	Region      floorplan.BoundingBox   `json:"region" description:"the exported canvas region in pixels"`
	Page        *floorplan.PageLayout   `json:"page,omitempty" description:"the placement on the pdf page" optional:"true"`
	Key         *string                 `json:"key,omitempty" description:"the object key of the uploaded snapshot" optional:"true"`
	ContentType string                  `json:"content_type" description:"the mime type of the file rendered from the layout"`
	Size        string                  `json:"size" description:"the size of the snapshot"`
}

type ScaleOptimalRequest struct {
	CanvasWidth  float64                      `json:"canvas_width" description:"the available canvas width in pixels"`
	CanvasHeight float64                      `json:"canvas_height" description:"the available canvas height in pixels"`
	Dimensions   floorplan.PhysicalDimensions `json:"dimensions" description:"the physical dimensions of the floorplan"`
}

type ScaleOptimalResponse struct {
	ScaleFactor  float64                    `json:"scale_factor" description:"the standard scale factor which fits the floorplan best"`
	Label        string                     `json:"label" description:"the scale in the form 1:n"`
	DisplayScale float64                    `json:"display_scale" description:"canvas pixels per meter"`
	Canvas       floorplan.CanvasDimensions `json:"canvas" description:"the size of the floorplan on the canvas at this scale"`
}

type ScaleConvertRequest struct {
	ScaleFactor float64                       `json:"scale_factor,omitempty" description:"the scale factor, defaults to 100" optional:"true"`
	Physical    *floorplan.PhysicalDimensions `json:"physical,omitempty" description:"physical dimensions to convert to canvas pixels" optional:"true"`
	Canvas      *floorplan.CanvasDimensions   `json:"canvas,omitempty" description:"canvas dimensions to convert to physical dimensions" optional:"true"`
	Target      floorplan.Unit                `json:"target,omitempty" description:"the unit of the converted canvas dimensions, defaults to m" optional:"true" enum:"m|ft|in|cm"`
	GridSize    *float64                      `json:"grid_size,omitempty" description:"a physical grid spacing to convert, in the unit of target" optional:"true"`
	Zoom        *float64                      `json:"zoom,omitempty" description:"the zoom of the stage used to decide the grid visibility, defaults to 1" optional:"true"`
}

type ScaleConvertResponse struct {
	Canvas      *floorplan.CanvasDimensions   `json:"canvas,omitempty" description:"the converted canvas dimensions" optional:"true"`
	Physical    *floorplan.PhysicalDimensions `json:"physical,omitempty" description:"the converted physical dimensions" optional:"true"`
	Formatted   *string                       `json:"formatted,omitempty" description:"the converted physical dimensions formatted for display" optional:"true"`
	GridSize    *float64                      `json:"grid_size,omitempty" description:"the grid spacing in pixels" optional:"true"`
	GridVisible *bool                         `json:"grid_visible,omitempty" description:"true if the grid is drawn at the given zoom" optional:"true"`
}

func NewFloorplanResponse(s *session.Session) *FloorplanResponse {
	if s == nil {
		return nil
	}

	res := &FloorplanResponse{
		Common: Common{
			Identifiable: Identifiable{
				ID: s.FloorplanID,
			},
		},
		FloorplanBase: FloorplanBase{
			Width:           s.Width,
			Height:          s.Height,
			MeasurementUnit: s.MeasurementUnit,
			Scale: ScaleInfo{
				ScaleFactor:       s.ScaleFactor,
				RackScaleFactor:   s.RackScaleFactor,
				DeviceScaleFactor: s.DeviceScaleFactor,
				DisplayScale:      floorplan.DisplayScale(s.ScaleFactor),
				Label:             floorplan.FormatScale(s.ScaleFactor),
				Standard:          floorplan.IsStandardScale(s.ScaleFactor),
				GridSize:          floorplan.GridSize(floorplan.DefaultGridSize(s.MeasurementUnit), s.MeasurementUnit, s.ScaleFactor),
			},
			Version: s.Version,
			Objects: s.Store().Objects(),
		},
	}

	if dims, ok := s.Dimensions(); ok {
		c := floorplan.RealWorldToCanvas(dims, s.ScaleFactor)
		res.Boundary = &CanvasExtent{Width: c.Width, Height: c.Height}
	}

	f := s.Floorplan
	if f == nil {
		return res
	}
	if f.Name != "" {
		res.Name = &f.Name
	}
	if f.Description != "" {
		res.Description = &f.Description
	}
	if f.SiteID != "" {
		res.SiteID = &f.SiteID
	}
	if f.LocationID != "" {
		res.LocationID = &f.LocationID
	}
	res.AssignedImageID = f.AssignedImageID
	res.AssignedImage = NewImageResponse(f.AssignedImage)

	return res
}

func NewImageResponse(i *floorplan.Image) *ImageResponse {
	if i == nil {
		return nil
	}
	res := &ImageResponse{
		Common: Common{
			Identifiable: Identifiable{
				ID: i.ID,
			},
		},
	}
	if i.Name != "" {
		res.Name = &i.Name
	}
	if i.Description != "" {
		res.Description = &i.Description
	}
	if i.File != "" {
		res.File = &i.File
	}
	if i.ExternalURL != "" {
		res.ExternalURL = &i.ExternalURL
	}
	if i.Filename != "" {
		res.Filename = &i.Filename
	}
	return res
}

type FloorplanCreateRequest struct {
	Describable
	ID         string          `json:"id,omitempty" description:"the unique ID of the floorplan, generated if empty" optional:"true"`
	SiteID     *string         `json:"site_id,omitempty" description:"the site this floorplan belongs to" optional:"true"`
	LocationID *string         `json:"location_id,omitempty" description:"the location this floorplan belongs to" optional:"true"`
	Width      *float64        `json:"width,omitempty" description:"the physical width of the floorplan" optional:"true"`
	Height     *float64        `json:"height,omitempty" description:"the physical height of the floorplan" optional:"true"`
	Unit       *floorplan.Unit `json:"measurement_unit,omitempty" description:"the unit of width and height, defaults to m" optional:"true" enum:"m|ft|in|cm"`
}

type FloorplanSummaryResponse struct {
	Common
	SiteID          *string        `json:"site_id,omitempty" description:"the site this floorplan belongs to" optional:"true"`
	LocationID      *string        `json:"location_id,omitempty" description:"the location this floorplan belongs to" optional:"true"`
	AssignedImageID *string        `json:"assigned_image_id,omitempty" description:"the id of the background image" optional:"true"`
	Width           *float64       `json:"width,omitempty" description:"the physical width of the floorplan" optional:"true"`
	Height          *float64       `json:"height,omitempty" description:"the physical height of the floorplan" optional:"true"`
	MeasurementUnit floorplan.Unit `json:"measurement_unit" description:"the unit of width and height" enum:"m|ft|in|cm"`
	ScaleFactor     float64        `json:"scale_factor" description:"the scale factor of the floorplan"`
}

func NewFloorplanSummaryResponse(f *floorplan.Floorplan) *FloorplanSummaryResponse {
	if f == nil {
		return nil
	}
	res := &FloorplanSummaryResponse{
		Common: Common{
			Identifiable: Identifiable{
				ID: f.ID,
			},
		},
		AssignedImageID: f.AssignedImageID,
		Width:           f.Width,
		Height:          f.Height,
		MeasurementUnit: f.MeasurementUnit,
		ScaleFactor:     f.ScaleFactor,
	}
	if f.Name != "" {
		res.Name = &f.Name
	}
	if f.Description != "" {
		res.Description = &f.Description
	}
	if f.SiteID != "" {
		res.SiteID = &f.SiteID
	}
	if f.LocationID != "" {
		res.LocationID = &f.LocationID
	}
	return res
}
