// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/edsonsantana1/agrosilo/api/resources"
	"github.com/edsonsantana1/agrosilo/internal/analytics"
	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/hubservice"
	"github.com/edsonsantana1/agrosilo/internal/ingest"
	"github.com/gorilla/mux"
)

type Router struct {
	router    *mux.Router
	resources *resources.Resources
}

// NewRouter assembles the HTTP surface. The health and metrics handlers
// come from the server so route setup never captures a nil handler.
func NewRouter(
	svc *hubservice.HubService,
	pipeline *ingest.Pipeline,
	analysis *analytics.Service,
	analyticsCfg config.AnalyticsConfig,
	health, metrics http.HandlerFunc,
) *Router {
	res := resources.NewResources(svc, pipeline, analysis, analyticsCfg)
	res.SetHealthCheck(health)
	res.SetMetrics(metrics)

	r := &Router{
		router:    mux.NewRouter(),
		resources: res,
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/metrics", r.resources.Metrics).Methods(http.MethodGet)

	// Ingestion
	api.HandleFunc("/trigger-sync", r.resources.Ingest.TriggerSync).Methods(http.MethodPost)

	// Silos
	silos := api.PathPrefix("/silos").Subrouter()
	silos.HandleFunc("", r.resources.Silos.ListSilos).Methods(http.MethodGet)
	silos.HandleFunc("", r.resources.Silos.CreateSilo).Methods(http.MethodPost)
	silos.HandleFunc("/{id}", r.resources.Silos.GetSilo).Methods(http.MethodGet)
	silos.HandleFunc("/{id}", r.resources.Silos.UpdateSilo).Methods(http.MethodPut)
	silos.HandleFunc("/{id}", r.resources.Silos.DeleteSilo).Methods(http.MethodDelete)
	silos.HandleFunc("/{id}/status", r.resources.Silos.GetSiloStatus).Methods(http.MethodGet)
	silos.HandleFunc("/{id}/sensors", r.resources.Silos.ListSiloSensors).Methods(http.MethodGet)
	silos.HandleFunc("/{id}/assessments", r.resources.Silos.ListAssessments).Methods(http.MethodGet)
	silos.HandleFunc("/{id}/assessments/latest", r.resources.Silos.GetLatestAssessment).Methods(http.MethodGet)

	// Sensors
	sensors := api.PathPrefix("/sensors").Subrouter()
	sensors.HandleFunc("", r.resources.Sensors.ListSensors).Methods(http.MethodGet)
	sensors.HandleFunc("/{id}", r.resources.Sensors.GetSensor).Methods(http.MethodGet)
	sensors.HandleFunc("/{id}", r.resources.Sensors.DeleteSensor).Methods(http.MethodDelete)

	// Analysis
	analysis := silos.PathPrefix("/{id}/analysis").Subrouter()
	analysis.HandleFunc("/scatter", r.resources.Analysis.GetScatter).Methods(http.MethodGet)
	analysis.HandleFunc("/{type}/history", r.resources.Analysis.GetHistory).Methods(http.MethodGet)
	analysis.HandleFunc("/{type}/summary", r.resources.Analysis.GetSummary).Methods(http.MethodGet)
	analysis.HandleFunc("/{type}/aggregate", r.resources.Analysis.GetAggregate).Methods(http.MethodGet)
	analysis.HandleFunc("/{type}/monthly", r.resources.Analysis.GetMonthly).Methods(http.MethodGet)
	analysis.HandleFunc("/{type}/compare-dates", r.resources.Analysis.CompareDates).Methods(http.MethodGet)
	analysis.HandleFunc("/{type}/seasonal-profile", r.resources.Analysis.GetSeasonalProfile).Methods(http.MethodGet)
	analysis.HandleFunc("/{type}/export.csv", r.resources.Analysis.ExportCSV).Methods(http.MethodGet)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
