// FilePath: api/resources/api.resource.sensors.go
package resources

import (
	"net/http"
	"strconv"

	"github.com/edsonsantana1/agrosilo/internal/hubservice"
	"github.com/edsonsantana1/agrosilo/internal/models"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// SensorHandlers encapsulates the sensor-related HTTP handlers
type SensorHandlers struct {
	hubservice *hubservice.HubService
}

// sensorListResponse carries one page of the sensor registry.
type sensorListResponse struct {
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
	Sensors []*models.Sensor `json:"sensors"`
}

// @Summary List sensors
// @Description Get a paginated list of sensors across all silos, with optional filters
// @Tags sensors
// @Produce json
// @Param silo_id query string false "Filter by silo ID"
// @Param type query string false "Filter by sensor type"
// @Param status query string false "Filter by sensor status"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} sensorListResponse
// @Router /sensors [get]
func (h *SensorHandlers) ListSensors(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	query := r.URL.Query()

	filters := models.SensorFilters{
		SiloID: query.Get("silo_id"),
		Type:   models.SensorType(query.Get("type")),
		Status: query.Get("status"),
	}
	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	total, sensors, err := h.hubservice.ListSensors(r.Context(), filters, page, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to list sensors", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, sensorListResponse{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Sensors: sensors,
	})
}

// @Summary Get a sensor by ID
// @Description Get detailed information about a specific sensor
// @Tags sensors
// @Produce json
// @Param id path string true "Sensor ID"
// @Success 200 {object} models.Sensor
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id} [get]
func (h *SensorHandlers) GetSensor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	sensor, err := h.hubservice.GetSensor(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "failed to get sensor", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, sensor)
}

// @Summary Delete a sensor
// @Description Delete a sensor together with its readings
// @Tags sensors
// @Produce json
// @Param id path string true "Sensor ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id} [delete]
func (h *SensorHandlers) DeleteSensor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	requestID := nuts.NID("req", 12)

	if err := h.hubservice.DeleteSensor(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "failed to delete sensor", requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
