package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers on its own registry so multiple instances (tests,
// the API binary) never collide.
type Collector struct {
	registry    *prometheus.Registry
	requests    prometheus.Counter
	errors      prometheus.Counter
	submissions prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ceoacademy_http_requests_total",
			Help: "Total number of HTTP requests.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ceoacademy_http_errors_total",
			Help: "Total number of 5xx HTTP responses.",
		}),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ceoacademy_applications_submitted_total",
			Help: "Total number of accepted application submissions.",
		}),
	}
	c.registry.MustRegister(c.requests, c.errors, c.submissions)
	return c
}

func (c *Collector) IncRequests() {
	c.requests.Inc()
}

func (c *Collector) IncErrors() {
	c.errors.Inc()
}

func (c *Collector) IncSubmissions() {
	c.submissions.Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
