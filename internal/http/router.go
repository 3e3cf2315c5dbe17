package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ceoacademy/internal/http/handlers"
	"ceoacademy/internal/http/metrics"
	httpmw "ceoacademy/internal/http/middleware"
)

type RouterDependencies struct {
	ApplicationHandler *handlers.ApplicationHandler
	StatsHandler       *handlers.StatsHandler
	AuthMiddleware     *httpmw.AuthMiddleware
	Metrics            *metrics.Collector
	Limiter            httpmw.Limiter
	Logger             httpmw.Logger
	RequestTimeout     time.Duration
	SubmitRateLimit    int
	SubmitRateWindow   time.Duration
	AllowedOrigin      string
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()

	submit := httpmw.RateLimit(deps.Limiter, httpmw.ClientIP, deps.SubmitRateLimit, deps.SubmitRateWindow)(
		http.HandlerFunc(deps.ApplicationHandler.Submit))
	api.Handle("/applications", submit).Methods(http.MethodPost)

	admin := api.NewRoute().Subrouter()
	admin.Use(deps.AuthMiddleware.Authenticate)
	// Register /applications/stats ahead of /applications/{id} so "stats"
	// never matches as an id.
	admin.HandleFunc("/applications/stats", deps.StatsHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/applications", deps.ApplicationHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/applications/{id}", deps.ApplicationHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/applications/{id}", deps.ApplicationHandler.UpdateStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/applications/{id}", deps.ApplicationHandler.Delete).Methods(http.MethodDelete)

	return httpmw.Chain(router,
		httpmw.RequestID,
		httpmw.Logging(deps.Logger),
		httpmw.CORS(deps.AllowedOrigin),
		httpmw.BodyLimit(maxBodyBytes),
		httpmw.Recover(deps.Logger),
		httpmw.Metrics(deps.Metrics),
		httpmw.Timeout(deps.RequestTimeout),
	)
}
