package health

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// HealthCheck reports an error if the checked service is not usable.
type HealthCheck func(ctx context.Context) error

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"

	checkTimeout = 10 * time.Second
)

type HealthResponse struct {
	Status   HealthStatus             `json:"status" description:"the overall health of the floorplan-api"`
	Message  string                   `json:"message" description:"a summary of the health checks"`
	Services map[string]ServiceStatus `json:"services" description:"the health of the individual services"`
}

type ServiceStatus struct {
	Status  HealthStatus `json:"status" description:"the health of the service"`
	Message string       `json:"message,omitempty" description:"the error of an unhealthy service" optional:"true"`
}

// New returns a webservice which runs the given health checks on every request.
func New(log *zap.SugaredLogger, basePath string, checks map[string]HealthCheck) *restful.WebService {
	ws := new(restful.WebService)
	ws.
		Path(basePath + "health").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	tags := []string{"health"}

	ws.Route(ws.GET("/").To(check(log, checks)).
		Operation("health").
		Doc("perform a healthcheck").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(HealthResponse{}).
		Returns(http.StatusOK, "OK", HealthResponse{}).
		Returns(http.StatusInternalServerError, "Unhealthy", HealthResponse{}))
	return ws
}

func check(log *zap.SugaredLogger, checks map[string]HealthCheck) func(request *restful.Request, response *restful.Response) {
	return func(request *restful.Request, response *restful.Response) {
		ctx, cancel := context.WithTimeout(request.Request.Context(), checkTimeout)
		defer cancel()

		res := run(ctx, checks)

		code := http.StatusOK
		if res.Status != HealthStatusHealthy {
			log.Errorw("unhealthy", "message", res.Message)
			code = http.StatusInternalServerError
		}

		err := response.WriteHeaderAndEntity(code, res)
		if err != nil {
			log.Errorw("unable to send health response", "error", err)
		}
	}
}

func run(ctx context.Context, checks map[string]HealthCheck) HealthResponse {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		res = HealthResponse{
			Status:   HealthStatusHealthy,
			Services: map[string]ServiceStatus{},
		}
	)

	for name, h := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := ServiceStatus{Status: HealthStatusHealthy}
			if err := h(ctx); err != nil {
				s = ServiceStatus{Status: HealthStatusUnhealthy, Message: err.Error()}
			}
			mu.Lock()
			res.Services[name] = s
			mu.Unlock()
		}()
	}
	wg.Wait()

	var unhealthy []string
	for name, s := range res.Services {
		if s.Status != HealthStatusHealthy {
			unhealthy = append(unhealthy, name)
		}
	}
	sort.Strings(unhealthy)

	if len(unhealthy) == 0 {
		res.Message = "OK"
		return res
	}

	res.Status = HealthStatusUnhealthy
	res.Message = "unhealthy services: " + strings.Join(unhealthy, ", ")
	return res
}
