package service

import (
	"context"
	"errors"
	"net/http"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/metal-stack/metal-lib/httperrors"
	"go.uber.org/zap"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
	v1 "github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/service/v1"
)

// ImageStore stores the background images of floorplans.
type ImageStore interface {
	FindImage(ctx context.Context, id string) (*floorplan.Image, error)
	ListImages(ctx context.Context) ([]floorplan.Image, error)
	CreateImage(ctx context.Context, i *floorplan.Image) error
	DeleteImage(ctx context.Context, i *floorplan.Image) error
}

type imageResource struct {
	webResource
	images ImageStore
}

// NewImage returns a webservice for background image specific endpoints.
func NewImage(log *zap.SugaredLogger, images ImageStore) *restful.WebService {
	r := imageResource{
		webResource: webResource{
			log: log,
		},
		images: images,
	}

	return r.webService()
}

func (r *imageResource) webService() *restful.WebService {
	ws := new(restful.WebService)
	ws.
		Path(BasePath + "v1/image").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	tags := []string{"Image"}

	ws.Route(ws.GET("/{id}").
		To(r.findImage).
		Operation("findImage").
		Doc("get background image by id").
		Param(ws.PathParameter("id", "identifier of the image").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(v1.ImageResponse{}).
		Returns(http.StatusOK, "OK", v1.ImageResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.GET("/").
		To(r.listImages).
		Operation("listImages").
		Doc("get all background images").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]v1.ImageResponse{}).
		Returns(http.StatusOK, "OK", []v1.ImageResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.DELETE("/{id}").
		To(r.deleteImage).
		Operation("deleteImage").
		Doc("deletes a background image and returns the deleted entity").
		Param(ws.PathParameter("id", "identifier of the image").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(v1.ImageResponse{}).
		Returns(http.StatusOK, "OK", v1.ImageResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	ws.Route(ws.PUT("/").
		To(r.createImage).
		Operation("createImage").
		Doc("create a background image. if the given ID already exists a conflict is returned").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(v1.ImageCreateRequest{}).
		Returns(http.StatusCreated, "Created", v1.ImageResponse{}).
		Returns(http.StatusConflict, "Conflict", httperrors.HTTPErrorResponse{}).
		DefaultReturns("Error", httperrors.HTTPErrorResponse{}))

	return ws
}

func (r *imageResource) findImage(request *restful.Request, response *restful.Response) {
	img, err := r.images.FindImage(request.Request.Context(), request.PathParameter("id"))
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	r.send(request, response, http.StatusOK, v1.NewImageResponse(img))
}

func (r *imageResource) listImages(request *restful.Request, response *restful.Response) {
	imgs, err := r.images.ListImages(request.Request.Context())
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	result := []*v1.ImageResponse{}
	for i := range imgs {
		result = append(result, v1.NewImageResponse(&imgs[i]))
	}

	r.send(request, response, http.StatusOK, result)
}

func (r *imageResource) createImage(request *restful.Request, response *restful.Response) {
	var requestPayload v1.ImageCreateRequest
	err := request.ReadEntity(&requestPayload)
	if err != nil {
		r.sendError(request, response, httperrors.BadRequest(err))
		return
	}

	img := &floorplan.Image{
		Base: floorplan.Base{
			ID: requestPayload.ID,
		},
	}
	if requestPayload.Name != nil {
		img.Name = *requestPayload.Name
	}
	if requestPayload.Description != nil {
		img.Description = *requestPayload.Description
	}
	if requestPayload.File != nil {
		img.File = *requestPayload.File
	}
	if requestPayload.ExternalURL != nil {
		img.ExternalURL = *requestPayload.ExternalURL
	}
	if requestPayload.Filename != nil {
		img.Filename = *requestPayload.Filename
	}
	if requestPayload.Comments != nil {
		img.Comments = *requestPayload.Comments
	}

	if img.File == "" && img.ExternalURL == "" {
		r.sendError(request, response, httperrors.BadRequest(errors.New("one of file or external_url is required")))
		return
	}

	err = r.images.CreateImage(request.Request.Context(), img)
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	r.send(request, response, http.StatusCreated, v1.NewImageResponse(img))
}

func (r *imageResource) deleteImage(request *restful.Request, response *restful.Response) {
	img, err := r.images.FindImage(request.Request.Context(), request.PathParameter("id"))
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	err = r.images.DeleteImage(request.Request.Context(), img)
	if err != nil {
		r.sendError(request, response, defaultError(err))
		return
	}

	r.send(request, response, http.StatusOK, v1.NewImageResponse(img))
}
