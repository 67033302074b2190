// FilePath: api/resources/api.resource.silos.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/hubservice"
	"github.com/edsonsantana1/agrosilo/internal/models"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// SiloHandlers encapsulates the silo-related HTTP handlers
type SiloHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Create a new silo
// @Description Register a new storage silo with the provided details
// @Tags silos
// @Accept json
// @Produce json
// @Param silo body models.Silo true "Silo details"
// @Success 201 {object} models.Silo
// @Failure 400 {object} errors.APIError
// @Router /silos [post]
func (h *SiloHandlers) CreateSilo(w http.ResponseWriter, r *http.Request) {
	var silo models.Silo
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&silo); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.CreateSilo(r.Context(), &silo); err != nil {
		respondWithServiceError(w, err, "failed to create silo", requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, silo)
}

// @Summary Get a silo by ID
// @Description Get detailed information about a specific silo
// @Tags silos
// @Produce json
// @Param id path string true "Silo ID"
// @Success 200 {object} models.Silo
// @Failure 404 {object} errors.APIError
// @Router /silos/{id} [get]
func (h *SiloHandlers) GetSilo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	silo, err := h.hubservice.GetSilo(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "failed to get silo", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, silo)
}

// @Summary List silos
// @Description Get a paginated list of silos
// @Tags silos
// @Produce json
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {array} models.Silo
// @Router /silos [get]
func (h *SiloHandlers) ListSilos(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	offset, limit := getPaginationParams(r)

	silos, err := h.hubservice.ListSilos(r.Context(), offset, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to list silos", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, silos)
}

// @Summary Update a silo
// @Description Update an existing silo's details
// @Tags silos
// @Accept json
// @Produce json
// @Param id path string true "Silo ID"
// @Param silo body models.Silo true "Updated silo details"
// @Success 200 {object} models.Silo
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /silos/{id} [put]
func (h *SiloHandlers) UpdateSilo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	var silo models.Silo
	if err := json.NewDecoder(r.Body).Decode(&silo); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	silo.ID = id
	if err := h.hubservice.UpdateSilo(r.Context(), &silo); err != nil {
		respondWithServiceError(w, err, "failed to update silo", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, silo)
}

// @Summary Delete a silo
// @Description Delete a silo together with its sensors, readings and assessments
// @Tags silos
// @Produce json
// @Param id path string true "Silo ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /silos/{id} [delete]
func (h *SiloHandlers) DeleteSilo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	if err := h.hubservice.DeleteSilo(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "failed to delete silo", requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Get silo status
// @Description Get the current status of a silo including last readings and the latest assessment
// @Tags silos
// @Produce json
// @Param id path string true "Silo ID"
// @Success 200 {object} hubservice.SiloStatus
// @Failure 404 {object} errors.APIError
// @Router /silos/{id}/status [get]
func (h *SiloHandlers) GetSiloStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	status, err := h.hubservice.GetSiloStatus(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "failed to get silo status", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// @Summary List silo sensors
// @Description Get the sensors registered for a specific silo
// @Tags silos
// @Produce json
// @Param id path string true "Silo ID"
// @Success 200 {array} models.Sensor
// @Failure 404 {object} errors.APIError
// @Router /silos/{id}/sensors [get]
func (h *SiloHandlers) ListSiloSensors(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	sensors, err := h.hubservice.ListSiloSensors(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "failed to list silo sensors", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, sensors)
}

// @Summary Get latest assessment
// @Description Get the most recent storage-condition assessment of a silo
// @Tags silos
// @Produce json
// @Param id path string true "Silo ID"
// @Success 200 {object} models.Assessment
// @Failure 404 {object} errors.APIError
// @Router /silos/{id}/assessments/latest [get]
func (h *SiloHandlers) GetLatestAssessment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	assessment, err := h.hubservice.LatestAssessment(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "failed to get latest assessment", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, assessment)
}

// @Summary List assessments
// @Description Get the assessment history of a silo within an optional time window
// @Tags silos
// @Produce json
// @Param id path string true "Silo ID"
// @Param start query string false "Start time (RFC3339)"
// @Param end query string false "End time (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {array} models.Assessment
// @Failure 404 {object} errors.APIError
// @Router /silos/{id}/assessments [get]
func (h *SiloHandlers) ListAssessments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)
	offset, limit := getPaginationParams(r)
	start, end := parseTimeWindow(r)

	assessments, err := h.hubservice.ListAssessments(r.Context(), id, start, end, offset, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to list assessments", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, assessments)
}

// Helper functions

func getPaginationParams(r *http.Request) (offset, limit int) {
	query := r.URL.Query()
	offset, _ = strconv.Atoi(query.Get("offset"))
	limit, _ = strconv.Atoi(query.Get("limit"))

	if limit <= 0 || limit > 100 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	return offset, limit
}

// parseTimeWindow reads the optional start/end query parameters. Absent or
// unparsable values stay zero; the service layer widens zero bounds.
func parseTimeWindow(r *http.Request) (start, end time.Time) {
	query := r.URL.Query()

	if startStr := query.Get("start"); startStr != "" {
		if parsed, err := time.Parse(time.RFC3339, startStr); err == nil {
			start = parsed
		}
	}
	if endStr := query.Get("end"); endStr != "" {
		if parsed, err := time.Parse(time.RFC3339, endStr); err == nil {
			end = parsed
		}
	}

	return start, end
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

// respondWithServiceError forwards a service-layer error, keeping the
// status code when the service already classified it.
func respondWithServiceError(w http.ResponseWriter, err error, fallback, requestID string) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError(fallback, err).WithRequestID(requestID))
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
