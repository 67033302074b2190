// FilePath: api/resources/resources.go
package resources

import (
	"net/http"

	"github.com/edsonsantana1/agrosilo/internal/analytics"
	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/hubservice"
	"github.com/edsonsantana1/agrosilo/internal/ingest"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Silos       *SiloHandlers
	Sensors     *SensorHandlers
	Ingest      *IngestHandlers
	Analysis    *AnalysisHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
	Metrics     func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService, pipeline *ingest.Pipeline, analysis *analytics.Service, analyticsCfg config.AnalyticsConfig) *Resources {
	return &Resources{
		Silos:    &SiloHandlers{hubservice: svc},
		Sensors:  &SensorHandlers{hubservice: svc},
		Ingest:   &IngestHandlers{pipeline: pipeline},
		Analysis: &AnalysisHandlers{analysis: analysis, cfg: analyticsCfg},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// SetMetrics sets the metrics handler
func (r *Resources) SetMetrics(h func(w http.ResponseWriter, r *http.Request)) {
	r.Metrics = h
}
