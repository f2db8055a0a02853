package service

import (
	"errors"
	"fmt"
	"net/http"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/metal-stack/metal-lib/httperrors"
	"github.com/metal-stack/metal-lib/pkg/pointer"
	"go.uber.org/zap"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
	v1 "github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/service/v1"
)

type scaleResource struct {
	webResource
}

// NewScale returns a webservice for scale computations.
func NewScale(log *zap.SugaredLogger) *restful.WebService {
	r := scaleResource{
		webResource: webResource{
			log: log,
		},
	}

	return r.webService()
}

func (r *scaleResource) webService() *restful.WebService {
	ws := new(restful.WebService)
	ws.
		Path(BasePath + "v1/scale").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	tags := []string{"Scale"}

	ws.Route(ws.POST("/optimal").
		To(r.optimalScale).
		Operation("optimalScale").
		Doc("get the standard scale factor which fits a floorplan into the given canvas").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(v1.ScaleOptimalRequest{}).
		Returns(http.StatusOK, "OK", v1.ScaleOptimalResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.POST("/convert").
		To(r.convert).
		Operation("convertScale").
		Doc("converts between physical dimensions and canvas pixels").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(v1.ScaleConvertRequest{}).
		Returns(http.StatusOK, "OK", v1.ScaleConvertResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	return ws
}

func (r *scaleResource) optimalScale(request *restful.Request, response *restful.Response) {
	var requestPayload v1.ScaleOptimalRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	if requestPayload.CanvasWidth <= 0 || requestPayload.CanvasHeight <= 0 {
		r.sendError(request, response, httperrors.BadRequest(errors.New("canvas width and height must be positive")))
		return
	}
	dims := requestPayload.Dimensions
	if dims.Width <= 0 || dims.Height <= 0 {
		r.sendError(request, response, httperrors.BadRequest(errors.New("width and height must be positive")))
		return
	}
	if !dims.Unit.IsValid() {
		r.sendError(request, response, httperrors.BadRequest(fmt.Errorf("unsupported measurement unit: %q", dims.Unit)))
		return
	}

	scaleFactor := floorplan.CalculateOptimalScale(requestPayload.CanvasWidth, requestPayload.CanvasHeight, dims)

	r.send(request, response, http.StatusOK, &v1.ScaleOptimalResponse{
		ScaleFactor:  scaleFactor,
		Label:        floorplan.FormatScale(scaleFactor),
		DisplayScale: floorplan.DisplayScale(scaleFactor),
		Canvas:       floorplan.RealWorldToCanvas(dims, scaleFactor),
	})
}

func (r *scaleResource) convert(request *restful.Request, response *restful.Response) {
	var requestPayload v1.ScaleConvertRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	if requestPayload.Physical == nil && requestPayload.Canvas == nil && requestPayload.GridSize == nil {
		r.sendError(request, response, httperrors.BadRequest(errors.New("nothing to convert, one of physical, canvas or grid_size is required")))
		return
	}
	if requestPayload.ScaleFactor < 0 {
		r.sendError(request, response, httperrors.BadRequest(errors.New("scale factor must be positive")))
		return
	}

	scaleFactor := requestPayload.ScaleFactor
	if scaleFactor == 0 {
		scaleFactor = floorplan.DefaultScaleFactor
	}
	target := requestPayload.Target
	if target == "" {
		target = floorplan.UnitMeters
	}

	result := &v1.ScaleConvertResponse{}

	if requestPayload.Physical != nil {
		c := floorplan.RealWorldToCanvas(*requestPayload.Physical, scaleFactor)
		result.Canvas = &c
	}

	if requestPayload.Canvas != nil {
		p := floorplan.CanvasToRealWorld(*requestPayload.Canvas, target, scaleFactor)
		result.Physical = &p
		result.Formatted = pointer.Pointer(floorplan.FormatDimension(p.Width, p.Unit, 2) + " x " + floorplan.FormatDimension(p.Height, p.Unit, 2))
	}

	if requestPayload.GridSize != nil {
		zoom := 1.0
		if requestPayload.Zoom != nil {
			zoom = *requestPayload.Zoom
		}
		gridSize := floorplan.GridSize(*requestPayload.GridSize, target, scaleFactor)
		result.GridSize = &gridSize
		result.GridVisible = pointer.Pointer(floorplan.GridVisible(gridSize, zoom))
	}

	r.send(request, response, http.StatusOK, result)
}
