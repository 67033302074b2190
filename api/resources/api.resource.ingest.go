// FilePath: api/resources/api.resource.ingest.go
package resources

import (
	"net/http"

	"github.com/edsonsantana1/agrosilo/internal/ingest"
	nuts "github.com/vaudience/go-nuts"
)

// IngestHandlers encapsulates the ingestion-related HTTP handlers
type IngestHandlers struct {
	pipeline *ingest.Pipeline
}

// @Summary Trigger an ingestion cycle
// @Description Run one ingestion cycle against the upstream channel and return the sync report
// @Tags ingest
// @Produce json
// @Success 200 {object} models.SyncReport
// @Failure 502 {object} errors.APIError
// @Router /trigger-sync [post]
func (h *IngestHandlers) TriggerSync(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	report, err := h.pipeline.SyncAll(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "ingestion cycle failed", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
