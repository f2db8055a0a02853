package metrics

import (
	"strconv"
	"time"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

var (
	floorplanObjects = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "floorplan",
			Subsystem: "canvas",
			Name:      "objects",
			Help:      "The amount of canvas objects per floorplan and object type",
		},
		[]string{"floorplan", "type"})

	counter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "floorplan",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "A counter for requests to the whole floorplan api.",
		},
		[]string{"code", "method"},
	)

	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "floorplan",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "A histogram of latencies for requests.",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method"},
	)
)

func init() {
	prometheus.MustRegister(floorplanObjects, counter, duration)
}

// ProvideObjects provides the amount of objects per type of a floorplan as gauges so a scraper can collect them.
// Types without objects are reported as zero.
func ProvideObjects(floorplanID string, counts map[floorplan.ObjectType]int) {
	for _, t := range floorplan.ObjectTypes {
		floorplanObjects.WithLabelValues(floorplanID, string(t)).Set(float64(counts[t]))
	}
}

// ForgetFloorplan removes the object gauges of a deleted floorplan.
func ForgetFloorplan(floorplanID string) {
	floorplanObjects.DeletePartialMatch(prometheus.Labels{"floorplan": floorplanID})
}

func RestfulMetrics(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	n := time.Now()
	chain.ProcessFilter(req, resp)
	counter.WithLabelValues(strconv.Itoa(resp.StatusCode()), req.Request.Method).Inc()
	duration.WithLabelValues(req.SelectedRoutePath(), req.Request.Method).Observe(time.Since(n).Seconds())
}
