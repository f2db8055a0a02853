package service

import (
	"fmt"
	"net/http"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/metal-stack/metal-lib/httperrors"
	"go.uber.org/zap"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

// BasePath is prepended to all web service paths.
var BasePath = "/"

type webResource struct {
	log *zap.SugaredLogger
}

// logger returns the request logger with the request id of the current request.
func (w *webResource) logger(rq *restful.Request) *zap.SugaredLogger {
	requestID := rq.Request.Header.Get("X-Request-Id")
	if requestID == "" {
		return w.log
	}
	return w.log.With("rqid", requestID)
}

func (w *webResource) send(request *restful.Request, response *restful.Response, status int, value any) {
	err := response.WriteHeaderAndEntity(status, value)
	if err != nil {
		w.logger(request).Errorw("failed to send response", "error", err)
	}
}

func (w *webResource) sendError(request *restful.Request, response *restful.Response, httperr *httperrors.HTTPErrorResponse) {
	w.logger(request).Errorw("service error", "status", httperr.StatusCode, "error", httperr.Message, "path", request.Request.URL.Path)
	w.send(request, response, httperr.StatusCode, httperr)
}

func defaultError(err error) *httperrors.HTTPErrorResponse {
	switch {
	case floorplan.IsNotFound(err):
		return httperrors.NotFound(err)
	case floorplan.IsConflict(err):
		return httperrors.NewHTTPError(http.StatusConflict, err)
	default:
		return httperrors.InternalServerError(err)
	}
}

// sessionError prefixes the error with the message of the failed session operation.
func sessionError(msg string, err error) *httperrors.HTTPErrorResponse {
	if msg == "" {
		return defaultError(err)
	}
	httperr := defaultError(err)
	httperr.Message = fmt.Sprintf("%s: %s", msg, httperr.Message)
	return httperr
}
