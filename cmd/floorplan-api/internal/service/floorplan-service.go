package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/metal-stack/metal-lib/httperrors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/canvas"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/metrics"
	v1 "github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/service/v1"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/session"
)

const snapshotContentType = "application/json"

// Publisher publishes messages to a topic.
type Publisher interface {
	Publish(topic string, data any) error
}

// Uploader stores export snapshots.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
}

// Registry manages the floorplan entities of backends which own them.
type Registry interface {
	ListFloorplans(ctx context.Context) (floorplan.Floorplans, error)
	SearchFloorplansBySite(ctx context.Context, siteID string) (floorplan.Floorplans, error)
	CreateFloorplan(ctx context.Context, f *floorplan.Floorplan) error
	DeleteFloorplan(ctx context.Context, f *floorplan.Floorplan) error
}

// AssetLookup finds racks and devices of the asset inventory.
type AssetLookup interface {
	FindRack(ctx context.Context, id int) (*floorplan.Rack, error)
	FindDevice(ctx context.Context, id int) (*floorplan.Device, error)
}

type floorplanResource struct {
	webResource
	backend   session.Backend
	registry  Registry
	assets    AssetLookup
	publisher Publisher
	uploader  Uploader
}

type exportSnapshot struct {
	ID          string                  `json:"id"`
	FloorplanID string                  `json:"floorplan_id"`
	Options     floorplan.ExportOptions `json:"options"`
	Region      floorplan.BoundingBox   `json:"region"`
	Page        *floorplan.PageLayout   `json:"page,omitempty"`
	Objects     floorplan.Objects       `json:"objects"`
}

// NewFloorplan returns a webservice for floorplan specific endpoints. The uploader
// may be nil, exports are not stored then. Floorplans can only be listed, created
// and deleted if the backend is a Registry.
func NewFloorplan(log *zap.SugaredLogger, backend session.Backend, assets AssetLookup, publisher Publisher, uploader Uploader) *restful.WebService {
	r := floorplanResource{
		webResource: webResource{
			log: log,
		},
		backend:   backend,
		assets:    assets,
		publisher: publisher,
		uploader:  uploader,
	}
	if registry, ok := backend.(Registry); ok {
		r.registry = registry
	}

	return r.webService()
}

func (r *floorplanResource) webService() *restful.WebService {
	ws := new(restful.WebService)
	ws.
		Path(BasePath + "v1/floorplan").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	tags := []string{"Floorplan"}

	if r.registry != nil {
		ws.Route(ws.GET("/").
			To(r.listFloorplans).
			Operation("listFloorplans").
			Doc("get all floorplans, optionally only the ones of a site").
			Param(ws.QueryParameter("site", "identifier of the site").DataType("string")).
			Metadata(restfulspec.KeyOpenAPITags, tags).
			Writes([]v1.FloorplanSummaryResponse{}).
			Returns(http.StatusOK, "OK", []v1.FloorplanSummaryResponse{}).
			DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

		ws.Route(ws.PUT("/").
			To(r.createFloorplan).
			Operation("createFloorplan").
			Doc("create a floorplan. if the given ID already exists a conflict is returned").
			Metadata(restfulspec.KeyOpenAPITags, tags).
			Reads(v1.FloorplanCreateRequest{}).
			Returns(http.StatusCreated, "Created", v1.FloorplanSummaryResponse{}).
			Returns(http.StatusConflict, "Conflict", httperrors.HTTPErrorResponse{}).
			DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

		ws.Route(ws.DELETE("/{id}").
			To(r.deleteFloorplan).
			Operation("deleteFloorplan").
			Doc("deletes a floorplan and returns the deleted entity").
			Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
			Metadata(restfulspec.KeyOpenAPITags, tags).
			Writes(v1.FloorplanSummaryResponse{}).
			Returns(http.StatusOK, "OK", v1.FloorplanSummaryResponse{}).
			DefaultReturns("Error", httperrors.HTTPErrorResponse{}))
	}

	ws.Route(ws.GET("/{id}").
		To(r.findFloorplan).
		Operation("findFloorplan").
		Doc("get floorplan by id together with its scale settings and canvas objects").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(v1.FloorplanResponse{}).
		Returns(http.StatusOK, "OK", v1.FloorplanResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.POST("/{id}").
		To(r.saveFloorplan).
		Operation("saveFloorplan").
		Doc("replaces all canvas objects of a floorplan").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(v1.FloorplanSaveRequest{}).
		Returns(http.StatusOK, "OK", v1.FloorplanResponse{}).
		Returns(http.StatusConflict, "Conflict", httperrors.HTTPErrorResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.POST("/{id}/dimensions").
		To(r.updateDimensions).
		Operation("updateFloorplanDimensions").
		Doc("sets the physical dimensions of a floorplan and rebuilds its boundary").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(v1.FloorplanDimensionsRequest{}).
		Returns(http.StatusOK, "OK", v1.FloorplanResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.POST("/{id}/scale").
		To(r.changeScale).
		Operation("changeFloorplanScale").
		Doc("changes the scale factor of a floorplan and moves all objects accordingly").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(v1.FloorplanScaleRequest{}).
		Returns(http.StatusOK, "OK", v1.FloorplanResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.POST("/{id}/background").
		To(r.updateBackground).
		Operation("updateFloorplanBackground").
		Doc("assigns or removes the background image of a floorplan").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(v1.FloorplanBackgroundRequest{}).
		Returns(http.StatusOK, "OK", v1.FloorplanResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.PUT("/{id}/object").
		To(r.addObject).
		Operation("addFloorplanObject").
		Doc("adds a wall, an area or a label to a floorplan").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(v1.ObjectCreateRequest{}).
		Returns(http.StatusCreated, "Created", v1.FloorplanResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.PUT("/{id}/rack").
		To(r.placeRacks).
		Operation("placeFloorplanRacks").
		Doc("places racks of the asset inventory on a floorplan").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(v1.AssetPlaceRequest{}).
		Returns(http.StatusCreated, "Created", v1.FloorplanResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.PUT("/{id}/device").
		To(r.placeDevices).
		Operation("placeFloorplanDevices").
		Doc("places devices of the asset inventory on a floorplan").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(v1.AssetPlaceRequest{}).
		Returns(http.StatusCreated, "Created", v1.FloorplanResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.POST("/{id}/object/{oid}").
		To(r.updateObject).
		Operation("updateFloorplanObject").
		Doc("updates fields of a canvas object").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Param(ws.PathParameter("oid", "identifier of the canvas object").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(floorplan.Patch{}).
		Returns(http.StatusOK, "OK", v1.FloorplanResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.DELETE("/{id}/object/{oid}").
		To(r.deleteObject).
		Operation("deleteFloorplanObject").
		Doc("removes a canvas object").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Param(ws.PathParameter("oid", "identifier of the canvas object").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(v1.FloorplanResponse{}).
		Returns(http.StatusOK, "OK", v1.FloorplanResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.GET("/{id}/mapped").
		To(r.mappedAssets).
		Operation("mappedFloorplanAssets").
		Doc("get the ids of the racks and devices placed on a floorplan").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(v1.MappedAssetsResponse{}).
		Returns(http.StatusOK, "OK", v1.MappedAssetsResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.GET("/{id}/ruler").
		To(r.ruler).
		Operation("floorplanRuler").
		Doc("get the ruler ticks of a floorplan").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(floorplan.Ruler{}).
		Returns(http.StatusOK, "OK", floorplan.Ruler{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.POST("/{id}/export").
		To(r.export).
		Operation("exportFloorplan").
		Doc("computes the export layout of a floorplan and stores a snapshot of it").
		Param(ws.PathParameter("id", "identifier of the floorplan").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(v1.ExportRequest{}).
		Returns(http.StatusOK, "OK", v1.ExportResponse{}).
		Returns(http.StatusUnprocessableEntity, "Unprocessable Entity", httperrors.HTTPErrorResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	return ws
}

func (r *floorplanResource) listFloorplans(request *restful.Request, response *restful.Response) {
	var (
		fs  floorplan.Floorplans
		err error
	)
	if site := request.QueryParameter("site"); site != "" {
		fs, err = r.registry.SearchFloorplansBySite(request.Request.Context(), site)
	} else {
		fs, err = r.registry.ListFloorplans(request.Request.Context())
	}
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	result := []*v1.FloorplanSummaryResponse{}
	for i := range fs {
		result = append(result, v1.NewFloorplanSummaryResponse(&fs[i]))
	}

	r.send(request, response, http.StatusOK, result)
}

func (r *floorplanResource) createFloorplan(request *restful.Request, response *restful.Response) {
	var requestPayload v1.FloorplanCreateRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	unit := floorplan.UnitMeters
	if requestPayload.Unit != nil {
		unit = *requestPayload.Unit
	}
	if !unit.IsValid() {
		r.sendError(request, response, httperrors.BadRequest(fmt.Errorf("unsupported measurement unit: %q", unit)))
		return
	}
	if (requestPayload.Width == nil) != (requestPayload.Height == nil) {
		r.sendError(request, response, httperrors.BadRequest(errors.New("width and height must be given together")))
		return
	}

	f := &floorplan.Floorplan{
		Base: floorplan.Base{
			ID: requestPayload.ID,
		},
		MeasurementUnit:   unit,
		ScaleFactor:       floorplan.DefaultScaleFactor,
		RackScaleFactor:   floorplan.DefaultScaleFactor,
		DeviceScaleFactor: floorplan.DefaultScaleFactor,
	}
	if requestPayload.Name != nil {
		f.Name = *requestPayload.Name
	}
	if requestPayload.Description != nil {
		f.Description = *requestPayload.Description
	}
	if requestPayload.SiteID != nil {
		f.SiteID = *requestPayload.SiteID
	}
	if requestPayload.LocationID != nil {
		f.LocationID = *requestPayload.LocationID
	}

	editor := canvas.NewEditor(canvas.NewStore())
	if requestPayload.Width != nil {
		w, h := *requestPayload.Width, *requestPayload.Height
		if w <= 0 || h <= 0 {
			r.sendError(request, response, httperrors.BadRequest(errors.New("width and height must be positive")))
			return
		}
		if w > floorplan.MaxDimension || h > floorplan.MaxDimension {
			r.sendError(request, response, httperrors.BadRequest(fmt.Errorf("width and height must not exceed %d", floorplan.MaxDimension)))
			return
		}
		f.Width = &w
		f.Height = &h
		editor.SetFloorplanBoundary(w, h, unit, f.ScaleFactor)
	}

	c := floorplan.NewCanvas(editor.Store().Objects())
	c.Scale = &floorplan.ScaleSettings{
		ScaleFactor:       f.ScaleFactor,
		RackScaleFactor:   f.RackScaleFactor,
		DeviceScaleFactor: f.DeviceScaleFactor,
	}
	f.Canvas, err = floorplan.EncodeCanvas(c)
	if err != nil {
		r.sendError(request, response, httperrors.InternalServerError(err))
		return
	}

	err = r.registry.CreateFloorplan(request.Request.Context(), f)
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	r.logger(request).Infow("floorplan created", "id", f.ID, "site", f.SiteID)
	r.publishEvent(request, floorplan.FloorplanEvent{
		Type:        floorplan.EventCreated,
		FloorplanID: f.ID,
		Objects:     editor.Store().Objects().CountByType(),
		ScaleFactor: f.ScaleFactor,
	})

	r.send(request, response, http.StatusCreated, v1.NewFloorplanSummaryResponse(f))
}

func (r *floorplanResource) deleteFloorplan(request *restful.Request, response *restful.Response) {
	id := request.PathParameter("id")

	f, err := r.backend.FindFloorplan(request.Request.Context(), id)
	if err == nil && f == nil {
		err = floorplan.NotFound("no floorplan with id %v found", id)
	}
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	err = r.registry.DeleteFloorplan(request.Request.Context(), f)
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	metrics.ForgetFloorplan(id)
	r.logger(request).Infow("floorplan deleted", "id", id)
	r.publishEvent(request, floorplan.FloorplanEvent{
		Type:        floorplan.EventDeleted,
		FloorplanID: id,
		Objects:     map[floorplan.ObjectType]int{},
		ScaleFactor: f.ScaleFactor,
	})

	r.send(request, response, http.StatusOK, v1.NewFloorplanSummaryResponse(f))
}

func (r *floorplanResource) findFloorplan(request *restful.Request, response *restful.Response) {
	s, ok := r.load(request, response)
	if !ok {
		return
	}

	r.send(request, response, http.StatusOK, v1.NewFloorplanResponse(s))
}

func (r *floorplanResource) saveFloorplan(request *restful.Request, response *restful.Response) {
	var requestPayload v1.FloorplanSaveRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	s, ok := r.load(request, response)
	if !ok {
		return
	}

	s.Store().ReplaceAll(requestPayload.Objects)

	r.save(request, response, s, http.StatusOK, floorplan.EventSaved)
}

func (r *floorplanResource) updateDimensions(request *restful.Request, response *restful.Response) {
	var requestPayload v1.FloorplanDimensionsRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	if requestPayload.Width <= 0 || requestPayload.Height <= 0 {
		r.sendError(request, response, httperrors.BadRequest(errors.New("width and height must be positive")))
		return
	}
	if requestPayload.Width > floorplan.MaxDimension || requestPayload.Height > floorplan.MaxDimension {
		r.sendError(request, response, httperrors.BadRequest(fmt.Errorf("width and height must not exceed %d", floorplan.MaxDimension)))
		return
	}
	if !requestPayload.Unit.IsValid() {
		r.sendError(request, response, httperrors.BadRequest(fmt.Errorf("unsupported measurement unit: %q", requestPayload.Unit)))
		return
	}

	s, ok := r.load(request, response)
	if !ok {
		return
	}

	err = s.UpdateDimensions(request.Request.Context(), requestPayload.Width, requestPayload.Height, requestPayload.Unit)
	if err != nil {
		r.sendError(request, response, sessionError(s.Err(), err))
		return
	}

	s.Editor().SetFloorplanBoundary(requestPayload.Width, requestPayload.Height, requestPayload.Unit, s.ScaleFactor)

	r.save(request, response, s, http.StatusOK, floorplan.EventDimensions)
}

func (r *floorplanResource) changeScale(request *restful.Request, response *restful.Response) {
	var requestPayload v1.FloorplanScaleRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	if requestPayload.RackScaleFactor != nil && *requestPayload.RackScaleFactor <= 0 {
		r.sendError(request, response, httperrors.BadRequest(errors.New("rack scale factor must be positive")))
		return
	}
	if requestPayload.DeviceScaleFactor != nil && *requestPayload.DeviceScaleFactor <= 0 {
		r.sendError(request, response, httperrors.BadRequest(errors.New("device scale factor must be positive")))
		return
	}

	s, ok := r.load(request, response)
	if !ok {
		return
	}

	err = s.ChangeScale(requestPayload.ScaleFactor)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}
	if requestPayload.RackScaleFactor != nil {
		s.RackScaleFactor = *requestPayload.RackScaleFactor
	}
	if requestPayload.DeviceScaleFactor != nil {
		s.DeviceScaleFactor = *requestPayload.DeviceScaleFactor
	}

	r.save(request, response, s, http.StatusOK, floorplan.EventRescaled)
}

func (r *floorplanResource) updateBackground(request *restful.Request, response *restful.Response) {
	var requestPayload v1.FloorplanBackgroundRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	s, ok := r.load(request, response)
	if !ok {
		return
	}

	err = s.UpdateBackground(request.Request.Context(), requestPayload.ImageID)
	if err != nil {
		r.sendError(request, response, sessionError(s.Err(), err))
		return
	}

	r.publish(request, s, floorplan.EventBackground)

	r.send(request, response, http.StatusOK, v1.NewFloorplanResponse(s))
}

func (r *floorplanResource) addObject(request *restful.Request, response *restful.Response) {
	var requestPayload v1.ObjectCreateRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	switch requestPayload.Type {
	case floorplan.TypeWall, floorplan.TypeArea, floorplan.TypeLabel:
	default:
		r.sendError(request, response, httperrors.BadRequest(fmt.Errorf("objects of type %q can not be added", requestPayload.Type)))
		return
	}

	s, ok := r.load(request, response)
	if !ok {
		return
	}

	switch requestPayload.Type {
	case floorplan.TypeWall:
		s.Editor().AddWall()
	case floorplan.TypeArea:
		s.Editor().AddArea()
	case floorplan.TypeLabel:
		var text, color string
		if requestPayload.Text != nil {
			text = *requestPayload.Text
		}
		if requestPayload.Color != nil {
			color = *requestPayload.Color
		}
		s.Editor().AddLabel(text, color)
	}

	r.save(request, response, s, http.StatusCreated, floorplan.EventSaved)
}

func (r *floorplanResource) placeRacks(request *restful.Request, response *restful.Response) {
	var requestPayload v1.AssetPlaceRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}
	if len(requestPayload.IDs) == 0 {
		r.sendError(request, response, httperrors.BadRequest(errors.New("no rack ids given")))
		return
	}

	s, ok := r.load(request, response)
	if !ok {
		return
	}

	racks := make([]*floorplan.Rack, len(requestPayload.IDs))
	g, ctx := errgroup.WithContext(request.Request.Context())
	for i, id := range requestPayload.IDs {
		g.Go(func() error {
			rack, err := r.assets.FindRack(ctx, id)
			if err != nil {
				return err
			}
			racks[i] = rack
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	var color string
	if requestPayload.Color != nil {
		color = *requestPayload.Color
	}
	for _, rack := range racks {
		if requestPayload.Advanced {
			s.Editor().AddAdvancedRack(*rack, s.RackScaleFactor, color)
		} else {
			s.Editor().AddSimpleRack(*rack, s.RackScaleFactor, color)
		}
	}

	r.save(request, response, s, http.StatusCreated, floorplan.EventSaved)
}

func (r *floorplanResource) placeDevices(request *restful.Request, response *restful.Response) {
	var requestPayload v1.AssetPlaceRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}
	if len(requestPayload.IDs) == 0 {
		r.sendError(request, response, httperrors.BadRequest(errors.New("no device ids given")))
		return
	}

	s, ok := r.load(request, response)
	if !ok {
		return
	}

	devices := make([]*floorplan.Device, len(requestPayload.IDs))
	g, ctx := errgroup.WithContext(request.Request.Context())
	for i, id := range requestPayload.IDs {
		g.Go(func() error {
			device, err := r.assets.FindDevice(ctx, id)
			if err != nil {
				return err
			}
			devices[i] = device
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	var color string
	if requestPayload.Color != nil {
		color = *requestPayload.Color
	}
	for _, device := range devices {
		if requestPayload.Advanced {
			s.Editor().AddAdvancedDevice(*device, s.DeviceScaleFactor, color)
		} else {
			s.Editor().AddSimpleDevice(*device, s.DeviceScaleFactor, color)
		}
	}

	r.save(request, response, s, http.StatusCreated, floorplan.EventSaved)
}

func (r *floorplanResource) updateObject(request *restful.Request, response *restful.Response) {
	oid := request.PathParameter("oid")

	var requestPayload floorplan.Patch
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	s, ok := r.load(request, response)
	if !ok {
		return
	}

	if !s.Store().Update(oid, requestPayload) {
		r.sendError(request, response, httperrors.NotFound(fmt.Errorf("canvas object %q not found", oid)))
		return
	}

	r.save(request, response, s, http.StatusOK, floorplan.EventSaved)
}

func (r *floorplanResource) deleteObject(request *restful.Request, response *restful.Response) {
	oid := request.PathParameter("oid")

	s, ok := r.load(request, response)
	if !ok {
		return
	}

	if _, found := s.Store().Find(oid); !found {
		r.sendError(request, response, httperrors.NotFound(fmt.Errorf("canvas object %q not found", oid)))
		return
	}
	s.Store().Remove(oid)

	r.save(request, response, s, http.StatusOK, floorplan.EventSaved)
}

func (r *floorplanResource) mappedAssets(request *restful.Request, response *restful.Response) {
	s, ok := r.load(request, response)
	if !ok {
		return
	}

	r.send(request, response, http.StatusOK, &v1.MappedAssetsResponse{
		RackIDs:   s.Editor().MappedRackIDs(),
		DeviceIDs: s.Editor().MappedDeviceIDs(),
	})
}

func (r *floorplanResource) ruler(request *restful.Request, response *restful.Response) {
	s, ok := r.load(request, response)
	if !ok {
		return
	}

	r.send(request, response, http.StatusOK, floorplan.RulerTicks(s.Width, s.Height, s.MeasurementUnit, s.ScaleFactor))
}

func (r *floorplanResource) export(request *restful.Request, response *restful.Response) {
	var requestPayload v1.ExportRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	opts, err := requestPayload.ExportOptions.Complete(time.Now())
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	s, ok := r.load(request, response)
	if !ok {
		return
	}

	objects := s.Store().Objects()
	region := floorplan.ExportRegion(objects, floorplan.CanvasDimensions{Width: requestPayload.StageWidth, Height: requestPayload.StageHeight})
	if region.Width <= 0 || region.Height <= 0 {
		r.sendError(request, response, httperrors.UnprocessableEntity(errors.New("floorplan has nothing to export")))
		return
	}

	snapshot := exportSnapshot{
		ID:          uuid.NewString(),
		FloorplanID: s.FloorplanID,
		Options:     opts,
		Region:      region,
		Objects:     objects,
	}
	if opts.Format == floorplan.FormatPDF {
		page := floorplan.FitToPage(region.Width, region.Height, opts.PaperSize, opts.Orientation)
		snapshot.Page = &page
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		r.sendError(request, response, httperrors.InternalServerError(err))
		return
	}
	size := humanize.Bytes(uint64(len(data)))

	result := &v1.ExportResponse{
		SnapshotID:  snapshot.ID,
		Options:     opts,
		Region:      region,
		Page:        snapshot.Page,
		Size:        size,
		ContentType: opts.Format.ContentType(),
	}

	if r.uploader != nil {
		var siteID string
		if s.Floorplan != nil {
			siteID = s.Floorplan.SiteID
		}
		key := floorplan.UploadKey(siteID, opts.Filename) + ".json"

		err = r.uploader.Upload(request.Request.Context(), key, snapshotContentType, data)
		if err != nil {
			r.sendError(request, response, httperrors.InternalServerError(fmt.Errorf("unable to upload export snapshot: %w", err)))
			return
		}
		result.Key = &key
	}

	r.logger(request).Infow("floorplan exported", "id", s.FloorplanID, "format", opts.Format, "snapshot", snapshot.ID, "size", size)

	r.send(request, response, http.StatusOK, result)
}

// load creates a session for the floorplan of the request path and loads it.
// The object gauges follow every change of the session's canvas.
// It sends the error response and returns false if the floorplan could not be loaded.
func (r *floorplanResource) load(request *restful.Request, response *restful.Response) (*session.Session, bool) {
	id := request.PathParameter("id")

	s := session.New(r.logger(request), r.backend)
	s.Store().Subscribe(func(objects floorplan.Objects) {
		metrics.ProvideObjects(id, objects.CountByType())
	})
	err := s.Load(request.Request.Context(), id)
	if err != nil {
		r.sendError(request, response, sessionError(s.Err(), err))
		return nil, false
	}
	return s, true
}

func (r *floorplanResource) save(request *restful.Request, response *restful.Response, s *session.Session, status int, eventType floorplan.EventType) {
	err := s.Save(request.Request.Context())
	if err != nil {
		r.sendError(request, response, sessionError(s.Err(), err))
		return
	}

	r.publish(request, s, eventType)

	r.send(request, response, status, v1.NewFloorplanResponse(s))
}

func (r *floorplanResource) publish(request *restful.Request, s *session.Session, eventType floorplan.EventType) {
	r.publishEvent(request, floorplan.FloorplanEvent{
		Type:        eventType,
		FloorplanID: s.FloorplanID,
		Objects:     s.Store().Objects().CountByType(),
		ScaleFactor: s.ScaleFactor,
	})
}

func (r *floorplanResource) publishEvent(request *restful.Request, event floorplan.FloorplanEvent) {
	if r.publisher == nil {
		return
	}

	event.ID = uuid.NewString()
	event.Time = time.Now()
	err := r.publisher.Publish(string(floorplan.TopicFloorplan), event)
	if err != nil {
		r.logger(request).Errorw("unable to publish floorplan event", "id", event.FloorplanID, "type", event.Type, "error", err)
	}
}
