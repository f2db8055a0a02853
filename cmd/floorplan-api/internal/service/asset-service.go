package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/metal-stack/metal-lib/httperrors"
	"go.uber.org/zap"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

// AssetInventory stores the rack and device records which can be placed on floorplans.
type AssetInventory interface {
	AssetLookup
	ListRacks(ctx context.Context) (floorplan.Racks, error)
	UpsertRack(ctx context.Context, rack *floorplan.Rack) error
	ListDevices(ctx context.Context) (floorplan.Devices, error)
	UpsertDevice(ctx context.Context, device *floorplan.Device) error
}

type assetResource struct {
	webResource
	inventory AssetInventory
}

// NewAsset returns a webservice to maintain the asset inventory.
func NewAsset(log *zap.SugaredLogger, inventory AssetInventory) *restful.WebService {
	r := assetResource{
		webResource: webResource{
			log: log,
		},
		inventory: inventory,
	}

	return r.webService()
}

func (r *assetResource) webService() *restful.WebService {
	ws := new(restful.WebService)
	ws.
		Path(BasePath + "v1/asset").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	tags := []string{"Asset"}

	ws.Route(ws.GET("/rack").
		To(r.listRacks).
		Operation("listRacks").
		Doc("get all racks of the asset inventory").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(floorplan.Racks{}).
		Returns(http.StatusOK, "OK", floorplan.Racks{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.GET("/rack/{id}").
		To(r.findRack).
		Operation("findRack").
		Doc("get rack by id").
		Param(ws.PathParameter("id", "identifier of the rack").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(floorplan.Rack{}).
		Returns(http.StatusOK, "OK", floorplan.Rack{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.PUT("/rack").
		To(r.upsertRack).
		Operation("upsertRack").
		Doc("creates or replaces a rack record").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(floorplan.Rack{}).
		Returns(http.StatusOK, "OK", floorplan.Rack{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.GET("/device").
		To(r.listDevices).
		Operation("listDevices").
		Doc("get all devices of the asset inventory").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(floorplan.Devices{}).
		Returns(http.StatusOK, "OK", floorplan.Devices{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.GET("/device/{id}").
		To(r.findDevice).
		Operation("findDevice").
		Doc("get device by id").
		Param(ws.PathParameter("id", "identifier of the device").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(floorplan.Device{}).
		Returns(http.StatusOK, "OK", floorplan.Device{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.PUT("/device").
		To(r.upsertDevice).
		Operation("upsertDevice").
		Doc("creates or replaces a device record").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(floorplan.Device{}).
		Returns(http.StatusOK, "OK", floorplan.Device{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	return ws
}

func (r *assetResource) listRacks(request *restful.Request, response *restful.Response) {
	racks, err := r.inventory.ListRacks(request.Request.Context())
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	r.send(request, response, http.StatusOK, racks)
}

func (r *assetResource) findRack(request *restful.Request, response *restful.Response) {
	id, err := assetID(request)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	rack, err := r.inventory.FindRack(request.Request.Context(), id)
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	r.send(request, response, http.StatusOK, rack)
}

func (r *assetResource) upsertRack(request *restful.Request, response *restful.Response) {
	var requestPayload floorplan.Rack
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}
	if requestPayload.ID <= 0 {
		r.sendError(request, response, httperrors.BadRequest(errors.New("rack id must be positive")))
		return
	}

	err = r.inventory.UpsertRack(request.Request.Context(), &requestPayload)
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	r.send(request, response, http.StatusOK, requestPayload)
}

func (r *assetResource) listDevices(request *restful.Request, response *restful.Response) {
	devices, err := r.inventory.ListDevices(request.Request.Context())
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	r.send(request, response, http.StatusOK, devices)
}

func (r *assetResource) findDevice(request *restful.Request, response *restful.Response) {
	id, err := assetID(request)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	device, err := r.inventory.FindDevice(request.Request.Context(), id)
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	r.send(request, response, http.StatusOK, device)
}

func (r *assetResource) upsertDevice(request *restful.Request, response *restful.Response) {
	var requestPayload floorplan.Device
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}
	if requestPayload.ID <= 0 {
		r.sendError(request, response, httperrors.BadRequest(errors.New("device id must be positive")))
		return
	}

	err = r.inventory.UpsertDevice(request.Request.Context(), &requestPayload)
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	r.send(request, response, http.StatusOK, requestPayload)
}

func assetID(request *restful.Request) (int, error) {
	id, err := strconv.Atoi(request.PathParameter("id"))
	if err != nil {
		return 0, fmt.Errorf("asset id must be a number: %w", err)
	}
	return id, nil
}
