// FilePath: api/resources/api.resource.analysis.go
package resources

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/analytics"
	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/export"
	"github.com/edsonsantana1/agrosilo/internal/models"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/relvacode/iso8601"
	nuts "github.com/vaudience/go-nuts"
)

// Alignment half-window bounds in hours
const (
	defaultWindowHours = 12
	maxWindowHours     = 72
)

// AnalysisHandlers encapsulates the analysis-related HTTP handlers
type AnalysisHandlers struct {
	analysis *analytics.Service
	cfg      config.AnalyticsConfig
}

// queryDecoder parses analysis query strings into typed parameter structs.
// Time parameters accept any ISO 8601 form the dashboards send.
var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, func(value string) reflect.Value {
		ts, err := iso8601.ParseString(value)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(ts.UTC())
	})
	return d
}

type historyParams struct {
	Start time.Time `schema:"start"`
	End   time.Time `schema:"end"`
	Limit int       `schema:"limit"`
}

type aggregateParams struct {
	Start time.Time `schema:"start"`
	End   time.Time `schema:"end"`
	Limit int       `schema:"limit"`
	Gran  string    `schema:"gran"`
	MA    int       `schema:"ma"`
}

type monthlyParams struct {
	Years     string    `schema:"years"`
	Start     time.Time `schema:"start"`
	End       time.Time `schema:"end"`
	LastYears int       `schema:"last_years"`
	Limit     int       `schema:"limit"`
}

type compareParams struct {
	Dates   string `schema:"dates"`
	Gran    string `schema:"gran"`
	WindowH int    `schema:"window_h"`
	Weekday *int   `schema:"weekday"`
	Limit   int    `schema:"limit"`
}

type seasonalQueryParams struct {
	Month    int    `schema:"month"`
	Day      int    `schema:"day"`
	FromYear int    `schema:"from_year"`
	ToYear   int    `schema:"to_year"`
	Gran     string `schema:"gran"`
	WindowH  int    `schema:"window_h"`
	Smooth   int    `schema:"smooth"`
	Band     *bool  `schema:"band"`
	Limit    int    `schema:"limit"`
}

// @Summary Get reading history
// @Description Get the ordered reading series of one sensor type within an optional time window
// @Tags analysis
// @Produce json
// @Param id path string true "Silo ID"
// @Param type path string true "Sensor type (temperature, humidity, pressure, co2)"
// @Param start query string false "Start time (ISO 8601)"
// @Param end query string false "End time (ISO 8601)"
// @Param limit query int false "Maximum points to return"
// @Success 200 {object} models.Series
// @Failure 400 {object} errors.APIError
// @Router /silos/{id}/analysis/{type}/history [get]
func (h *AnalysisHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	siloID := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	sensorType, apiErr := pathSensorType(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var params historyParams
	if apiErr := decodeQuery(r, &params); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	limit := boundedLimit(params.Limit, h.cfg.HistoryLimit, h.cfg.HistoryLimitMax)

	series, err := h.analysis.History(r.Context(), siloID, sensorType, params.Start, params.End, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to load history", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, series)
}

// @Summary Summarize readings
// @Description Get descriptive statistics, band exposure and the 24h delta of one sensor type
// @Tags analysis
// @Produce json
// @Param id path string true "Silo ID"
// @Param type path string true "Sensor type (temperature, humidity, pressure, co2)"
// @Param start query string false "Start time (ISO 8601)"
// @Param end query string false "End time (ISO 8601)"
// @Param limit query int false "Maximum points to analyze"
// @Success 200 {object} models.AnalysisSummary
// @Failure 404 {object} errors.APIError
// @Router /silos/{id}/analysis/{type}/summary [get]
func (h *AnalysisHandlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	siloID := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	sensorType, apiErr := pathSensorType(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var params historyParams
	if apiErr := decodeQuery(r, &params); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	limit := boundedLimit(params.Limit, h.cfg.HistoryLimit, h.cfg.HistoryLimitMax)

	series, err := h.analysis.History(r.Context(), siloID, sensorType, params.Start, params.End, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to load history", requestID)
		return
	}

	summary := h.analysis.Summarize(series)
	if summary == nil {
		respondWithError(w, errors.NewNotFoundError("no data in the requested window", nil).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// @Summary Get aggregated readings
// @Description Get the series resampled into minute, hour or day buckets with an optional trailing moving average
// @Tags analysis
// @Produce json
// @Param id path string true "Silo ID"
// @Param type path string true "Sensor type (temperature, humidity, pressure, co2)"
// @Param start query string false "Start time (ISO 8601)"
// @Param end query string false "End time (ISO 8601)"
// @Param limit query int false "Maximum points to aggregate"
// @Param gran query string false "Bucket width (minute, hour, day); defaults to hour"
// @Param ma query int false "Trailing moving-average window in buckets (minimum 2)"
// @Success 200 {object} models.AggregateSeries
// @Failure 400 {object} errors.APIError
// @Router /silos/{id}/analysis/{type}/aggregate [get]
func (h *AnalysisHandlers) GetAggregate(w http.ResponseWriter, r *http.Request) {
	siloID := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	sensorType, apiErr := pathSensorType(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var params aggregateParams
	if apiErr := decodeQuery(r, &params); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	gran := models.Granularity(params.Gran)
	if params.Gran == "" {
		gran = models.GranHour
	}
	if !models.ValidGranularity(gran) {
		respondWithError(w, errors.NewValidationError(fmt.Sprintf("unknown granularity %q", params.Gran), nil).WithRequestID(requestID))
		return
	}
	limit := boundedLimit(params.Limit, h.cfg.AggregateLimit, h.cfg.AggregateMax)

	series, err := h.analysis.History(r.Context(), siloID, sensorType, params.Start, params.End, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to load history", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, h.analysis.Aggregate(series, gran, params.MA))
}

// @Summary Get temperature/humidity scatter pairs
// @Description Get simultaneous temperature and humidity means joined on a shared 5-minute grid
// @Tags analysis
// @Produce json
// @Param id path string true "Silo ID"
// @Param start query string false "Start time (ISO 8601)"
// @Param end query string false "End time (ISO 8601)"
// @Param limit query int false "Maximum points per side"
// @Success 200 {object} models.ScatterSeries
// @Failure 400 {object} errors.APIError
// @Router /silos/{id}/analysis/scatter [get]
func (h *AnalysisHandlers) GetScatter(w http.ResponseWriter, r *http.Request) {
	siloID := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	var params historyParams
	if apiErr := decodeQuery(r, &params); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	limit := boundedLimit(params.Limit, h.cfg.ScatterLimit, h.cfg.ScatterLimitMax)
	if limit < h.cfg.ScatterLimitMin {
		limit = h.cfg.ScatterLimitMin
	}

	scatter, err := h.analysis.Scatter(r.Context(), siloID, params.Start, params.End, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to build scatter series", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, scatter)
}

// @Summary Get monthly comparison matrix
// @Description Get the 12-row month × year matrix of monthly means for one sensor type
// @Tags analysis
// @Produce json
// @Param id path string true "Silo ID"
// @Param type path string true "Sensor type (temperature, humidity, pressure, co2)"
// @Param years query string false "Comma-separated year list; overrides start/end"
// @Param start query string false "Start time (ISO 8601)"
// @Param end query string false "End time (ISO 8601)"
// @Param last_years query int false "Trailing year count when no explicit window is given (default 3)"
// @Param limit query int false "Maximum points to scan"
// @Success 200 {object} models.MonthlyMatrix
// @Failure 400 {object} errors.APIError
// @Router /silos/{id}/analysis/{type}/monthly [get]
func (h *AnalysisHandlers) GetMonthly(w http.ResponseWriter, r *http.Request) {
	siloID := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	sensorType, apiErr := pathSensorType(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var params monthlyParams
	if apiErr := decodeQuery(r, &params); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var years []int
	if params.Years != "" {
		years = parseYearsCSV(params.Years)
		if len(years) == 0 {
			respondWithJSON(w, http.StatusOK, models.MonthlyMatrix{Years: []int{}, Rows: []models.MonthlyRow{}})
			return
		}
	}
	limit := boundedLimit(params.Limit, h.cfg.MonthlyLimit, h.cfg.MonthlyLimitMax)

	matrix, err := h.analysis.MonthlySeries(r.Context(), siloID, sensorType, years, params.Start, params.End, params.LastYears, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to build monthly series", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, matrix)
}

// @Summary Compare specific dates
// @Description Overlay ±window_h hours around each requested date on one shared relative-hour axis
// @Tags analysis
// @Produce json
// @Param id path string true "Silo ID"
// @Param type path string true "Sensor type (temperature, humidity, pressure, co2)"
// @Param dates query string true "Comma-separated ISO dates to compare"
// @Param gran query string false "Bin width (5min or hour); defaults to hour"
// @Param window_h query int false "Half-window in hours (default 12, maximum 72)"
// @Param weekday query int false "Keep only samples on this weekday (0 = Sunday .. 6 = Saturday)"
// @Param limit query int false "Maximum points per date window"
// @Success 200 {object} models.AlignedSeries
// @Failure 400 {object} errors.APIError
// @Router /silos/{id}/analysis/{type}/compare-dates [get]
func (h *AnalysisHandlers) CompareDates(w http.ResponseWriter, r *http.Request) {
	siloID := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	sensorType, apiErr := pathSensorType(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var params compareParams
	if apiErr := decodeQuery(r, &params); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	dates := splitCSV(params.Dates)
	if len(dates) == 0 {
		respondWithError(w, errors.NewValidationError("dates is required", nil).WithRequestID(requestID))
		return
	}
	gran, apiErr := alignGranOrDefault(params.Gran)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	if params.Weekday != nil && (*params.Weekday < 0 || *params.Weekday > 6) {
		respondWithError(w, errors.NewValidationError("weekday must be between 0 and 6", nil).WithRequestID(requestID))
		return
	}
	windowH := clampWindow(params.WindowH)
	limit := boundedLimit(params.Limit, h.cfg.CompareLimit, h.cfg.CompareLimitMax)

	aligned, err := h.analysis.CompareDates(r.Context(), siloID, sensorType, dates, gran, windowH, params.Weekday, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to align dates", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, aligned)
}

// @Summary Get seasonal profile
// @Description Overlay the same (month, day) anchor across a year range with a cross-year mean and optional variability band
// @Tags analysis
// @Produce json
// @Param id path string true "Silo ID"
// @Param type path string true "Sensor type (temperature, humidity, pressure, co2)"
// @Param month query int true "Anchor month (1-12)"
// @Param day query int true "Anchor day (1-31)"
// @Param from_year query int false "First year of the range; defaults to to_year-2"
// @Param to_year query int false "Last year of the range; defaults to the current year"
// @Param gran query string false "Bin width (5min or hour); defaults to hour"
// @Param window_h query int false "Half-window in hours (default 12, maximum 72)"
// @Param smooth query int false "Trailing smoothing window in bins (minimum 2)"
// @Param band query bool false "Compute the ±1 standard deviation band (default true)"
// @Param limit query int false "Maximum points per year window"
// @Success 200 {object} models.SeasonalProfile
// @Failure 400 {object} errors.APIError
// @Router /silos/{id}/analysis/{type}/seasonal-profile [get]
func (h *AnalysisHandlers) GetSeasonalProfile(w http.ResponseWriter, r *http.Request) {
	siloID := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	sensorType, apiErr := pathSensorType(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var params seasonalQueryParams
	if apiErr := decodeQuery(r, &params); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	gran, apiErr := alignGranOrDefault(params.Gran)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	toYear := params.ToYear
	if toYear <= 0 {
		toYear = time.Now().UTC().Year()
	}
	fromYear := params.FromYear
	if fromYear <= 0 {
		fromYear = toYear - 2
	}
	band := true
	if params.Band != nil {
		band = *params.Band
	}
	smooth := params.Smooth
	if smooth > h.cfg.MAWindowMax {
		smooth = h.cfg.MAWindowMax
	}

	profile, err := h.analysis.SeasonalProfile(r.Context(), siloID, sensorType, analytics.SeasonalParams{
		Month:        params.Month,
		Day:          params.Day,
		FromYear:     fromYear,
		ToYear:       toYear,
		Gran:         gran,
		WindowH:      clampWindow(params.WindowH),
		SmoothWindow: smooth,
		WithBand:     band,
		Limit:        boundedLimit(params.Limit, h.cfg.CompareLimit, h.cfg.CompareLimitMax),
	})
	if err != nil {
		respondWithServiceError(w, err, "failed to build seasonal profile", requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// @Summary Export readings as CSV
// @Description Download the reading history of one sensor type as a CSV attachment
// @Tags analysis
// @Produce text/csv
// @Param id path string true "Silo ID"
// @Param type path string true "Sensor type (temperature, humidity, pressure, co2)"
// @Param start query string false "Start time (ISO 8601)"
// @Param end query string false "End time (ISO 8601)"
// @Param limit query int false "Maximum points to export"
// @Success 200 {file} file
// @Failure 404 {object} errors.APIError
// @Router /silos/{id}/analysis/{type}/export.csv [get]
func (h *AnalysisHandlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	siloID := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	sensorType, apiErr := pathSensorType(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var params historyParams
	if apiErr := decodeQuery(r, &params); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	limit := boundedLimit(params.Limit, h.cfg.ExportLimit, h.cfg.ExportLimitMax)

	series, err := h.analysis.History(r.Context(), siloID, sensorType, params.Start, params.End, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to load history", requestID)
		return
	}
	if len(series.Points) == 0 {
		respondWithError(w, errors.NewNotFoundError("no data in the requested window", nil).WithRequestID(requestID))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("agrosilo_%s_history.csv", sensorType)))
	if err := export.WriteSeriesCSV(w, series); err != nil {
		nuts.L.Errorf("[API] Failed to stream CSV export for silo %s: %v", siloID, err)
	}
}

// Helper functions

// pathSensorType validates the {type} path segment.
func pathSensorType(r *http.Request) (models.SensorType, *errors.APIError) {
	t := models.SensorType(mux.Vars(r)["type"])
	if !models.ValidSensorType(t) {
		return "", errors.NewValidationError(fmt.Sprintf("unknown sensor type %q", t), nil)
	}
	return t, nil
}

func decodeQuery(r *http.Request, params interface{}) *errors.APIError {
	if err := queryDecoder.Decode(params, r.URL.Query()); err != nil {
		return errors.NewValidationError("invalid query parameters", err)
	}
	return nil
}

// boundedLimit resolves a requested result limit against the configured
// default and ceiling.
func boundedLimit(requested, def, max int) int {
	if requested <= 0 {
		return def
	}
	if requested > max {
		return max
	}
	return requested
}

// clampWindow resolves the alignment half-window in hours.
func clampWindow(hours int) int {
	if hours <= 0 {
		return defaultWindowHours
	}
	if hours > maxWindowHours {
		return maxWindowHours
	}
	return hours
}

func alignGranOrDefault(raw string) (models.AlignGran, *errors.APIError) {
	if raw == "" {
		return models.AlignHour, nil
	}
	gran := models.AlignGran(raw)
	if !models.ValidAlignGran(gran) {
		return "", errors.NewValidationError(fmt.Sprintf("unknown alignment granularity %q", raw), nil)
	}
	return gran, nil
}

// parseYearsCSV keeps the parsable tokens of a comma-separated year list;
// anything else is dashboard noise and dropped.
func parseYearsCSV(raw string) []int {
	parts := strings.Split(raw, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil || y < 0 {
			continue
		}
		years = append(years, y)
	}
	return years
}

// splitCSV splits a comma-separated parameter, dropping empty tokens.
func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
