package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edsonsantana1/agrosilo/api"
	"github.com/edsonsantana1/agrosilo/internal/analytics"
	"github.com/edsonsantana1/agrosilo/internal/assessment"
	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/hubservice"
	"github.com/edsonsantana1/agrosilo/internal/ingest"
	"github.com/edsonsantana1/agrosilo/internal/models"
	"github.com/edsonsantana1/agrosilo/internal/monitoring"
	"github.com/edsonsantana1/agrosilo/internal/policy"
	"github.com/edsonsantana1/agrosilo/internal/repository"
	"github.com/edsonsantana1/agrosilo/internal/repository/memory"
	"github.com/edsonsantana1/agrosilo/internal/telemetry"
)

const testSilo = "silo_router01"

// fakeClient serves canned feeds per channel field.
type fakeClient struct {
	feeds map[int][]telemetry.Feed
	errs  map[int]error
}

func (f *fakeClient) FetchField(ctx context.Context, field, results int) ([]telemetry.Feed, error) {
	if err := f.errs[field]; err != nil {
		return nil, err
	}
	return f.feeds[field], nil
}

func testPolicyConfig() config.PolicyConfig {
	return config.PolicyConfig{
		HumOkMax:     13.0,
		HumAdmMax:    14.0,
		HumCritMin:   16.0,
		TempOkMax:    15.0,
		TempAlertMin: 20.0,
		TempCritMin:  30.0,
		TempVHighMin: 40.0,

		BandHumidity:    config.BandRule{IdealMax: 13.0, ModerateMax: 16.0},
		BandTemperature: config.BandRule{ModerateMin: 20.0, ModerateMax: 30.0, CriticalMin: 40.0},
		BandCO2:         config.BandRule{IdealMin: 400.0, IdealMax: 600.0, ModerateMin: 600.0, ModerateMax: 1100.0, CriticalMin: 5000.0},

		AirHumLowMax: 13.0,
		AirHumMedMax: 15.0,
		AirLow:       config.AerationTier{Min: 0.10, Max: 0.25},
		AirMed:       config.AerationTier{Min: 0.25, Max: 0.50},
		AirHigh:      config.AerationTier{Min: 0.50, Max: 1.00},
	}
}

func testAnalyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		HistoryLimit:    20000,
		HistoryLimitMax: 100000,
		AggregateLimit:  100000,
		AggregateMax:    150000,
		ScatterLimit:    50000,
		ScatterLimitMin: 100,
		ScatterLimitMax: 150000,
		MonthlyLimit:    300000,
		MonthlyLimitMax: 500000,
		CompareLimit:    50000,
		CompareLimitMax: 150000,
		ExportLimit:     100000,
		ExportLimitMax:  150000,
		MAWindowMax:     2000,
	}
}

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		SiloID:       testSilo,
		PollInterval: 15 * time.Second,
		Temperature:  config.SensorRule{Field: 1, RangeMin: -40, RangeMax: 85, Spike: 10},
		Humidity:     config.SensorRule{Field: 2, RangeMin: 0, RangeMax: 100, Spike: 30},
	}
}

type routerEnv struct {
	router      *api.Router
	silos       repository.SiloRepository
	sensors     repository.SensorRepository
	readings    repository.ReadingRepository
	assessments repository.AssessmentRepository
}

func newTestRouter(t *testing.T, client telemetry.Client) routerEnv {
	t.Helper()

	store := memory.NewStore()
	silos := memory.NewSiloRepository(store)
	sensors := memory.NewSensorRepository(store)
	readings := memory.NewReadingRepository(store)
	assessments := memory.NewAssessmentRepository(store)

	hub := hubservice.New(silos, sensors, readings, assessments, nil)
	require.NoError(t, hub.Validate())

	pol := policy.New(testPolicyConfig())
	builder := assessment.NewBuilder(pol, assessments, nil)
	pipeline := ingest.New(client, sensors, readings, silos, builder, monitoring.NewService(), testIngestConfig(), 100)
	analysisCfg := testAnalyticsConfig()
	analysis := analytics.New(sensors, readings, pol, analysisCfg)

	health := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok"}`)
	}
	metrics := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"cycles":0}`)
	}

	return routerEnv{
		router:      api.NewRouter(hub, pipeline, analysis, analysisCfg, health, metrics),
		silos:       silos,
		sensors:     sensors,
		readings:    readings,
		assessments: assessments,
	}
}

func do(t *testing.T, env routerEnv, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) errors.APIError {
	t.Helper()
	var apiErr errors.APIError
	decodeJSON(t, rec, &apiErr)
	return apiErr
}

func seedSilo(t *testing.T, env routerEnv, id string) {
	t.Helper()
	require.NoError(t, env.silos.Create(context.Background(), &models.Silo{ID: id, Name: "Router test silo"}))
}

func seedReadings(t *testing.T, env routerEnv, siloID string, sensorType models.SensorType, points []models.Point) {
	t.Helper()
	ctx := context.Background()

	sensor, err := env.sensors.GetOrCreate(ctx, siloID, sensorType)
	require.NoError(t, err)

	batch := make([]models.Reading, len(points))
	for i, p := range points {
		batch[i] = models.Reading{SensorID: sensor.ID, Value: p.V, Timestamp: p.T}
	}
	_, err = env.readings.InsertBatch(ctx, batch)
	require.NoError(t, err)
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestSiloLifecycle(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})

	rec := do(t, env, http.MethodPost, "/api/v1/silos", models.Silo{Name: "Armazém Norte", GrainType: "soy"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Silo
	decodeJSON(t, rec, &created)
	require.NotEmpty(t, created.ID, "the service assigns an id when none is given")
	require.Equal(t, "UTC", created.Timezone)

	rec = do(t, env, http.MethodGet, "/api/v1/silos/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched models.Silo
	decodeJSON(t, rec, &fetched)
	require.Equal(t, "Armazém Norte", fetched.Name)
	require.Equal(t, "soy", fetched.GrainType)

	fetched.Name = "Armazém Sul"
	rec = do(t, env, http.MethodPut, "/api/v1/silos/"+created.ID, fetched)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, env, http.MethodGet, "/api/v1/silos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Silo
	decodeJSON(t, rec, &listed)
	require.Len(t, listed, 1)
	require.Equal(t, "Armazém Sul", listed[0].Name)

	rec = do(t, env, http.MethodDelete, "/api/v1/silos/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, env, http.MethodGet, "/api/v1/silos/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSiloNotFoundKeepsErrorShape(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})

	rec := do(t, env, http.MethodGet, "/api/v1/silos/silo_missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	apiErr := decodeAPIError(t, rec)
	require.Equal(t, errors.ErrorTypeNotFound, apiErr.Type)
	require.Equal(t, http.StatusNotFound, apiErr.Code)
	require.NotEmpty(t, apiErr.RequestID)
}

func TestCreateSiloValidation(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})

	rec := do(t, env, http.MethodPost, "/api/v1/silos", models.Silo{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, errors.ErrorTypeValidation, decodeAPIError(t, rec).Type)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/silos", bytes.NewBufferString("{not json"))
	raw := httptest.NewRecorder()
	env.router.ServeHTTP(raw, req)
	require.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestHistoryReturnsAscendingSeries(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)
	base := at(t, "2026-03-10T00:00:00Z")

	// seeded out of order on purpose
	seedReadings(t, env, testSilo, models.Temperature, []models.Point{
		{T: base.Add(2 * time.Hour), V: 30},
		{T: base, V: 10},
		{T: base.Add(time.Hour), V: 20},
	})

	rec := do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/temperature/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var series models.Series
	decodeJSON(t, rec, &series)
	require.Equal(t, models.Temperature, series.SensorType)
	require.Len(t, series.Points, 3)
	require.Equal(t, []float64{10, 20, 30}, []float64{series.Points[0].V, series.Points[1].V, series.Points[2].V})

	// an explicit limit keeps the oldest points of the window
	rec = do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/temperature/history?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &series)
	require.Len(t, series.Points, 2)
	require.Equal(t, 10.0, series.Points[0].V)

	// a window bound in ISO 8601 short form narrows the series
	rec = do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/temperature/history?start=2026-03-10T01:00:00Z", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &series)
	require.Len(t, series.Points, 2)
	require.Equal(t, 20.0, series.Points[0].V)
}

func TestHistoryRejectsUnknownSensorType(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)

	rec := do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/vibration/history", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	apiErr := decodeAPIError(t, rec)
	require.Equal(t, errors.ErrorTypeValidation, apiErr.Type)
	require.Contains(t, apiErr.Message, "unknown sensor type")
}

func TestHistoryRejectsMalformedQuery(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)

	for _, query := range []string{"limit=abc", "start=whenever"} {
		rec := do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/temperature/history?"+query, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, "query %q", query)
		require.Equal(t, errors.ErrorTypeValidation, decodeAPIError(t, rec).Type)
	}
}

func TestSummaryWithoutDataIs404(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)

	rec := do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/humidity/summary", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, errors.ErrorTypeNotFound, decodeAPIError(t, rec).Type)
}

func TestAggregateOverHTTP(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)
	base := at(t, "2026-03-10T00:00:00Z")

	seedReadings(t, env, testSilo, models.Temperature, []models.Point{
		{T: base.Add(10 * time.Minute), V: 10},
		{T: base.Add(50 * time.Minute), V: 20},
	})

	rec := do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/temperature/aggregate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var agg models.AggregateSeries
	decodeJSON(t, rec, &agg)
	require.Equal(t, models.GranHour, agg.Gran, "granularity defaults to hour")
	require.Len(t, agg.Buckets, 1)
	require.Equal(t, 15.0, agg.Buckets[0].Avg)
	require.Equal(t, 2, agg.Buckets[0].Count)

	rec = do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/temperature/aggregate?gran=weekly", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeAPIError(t, rec).Message, "unknown granularity")
}

func TestMonthlyYearNoiseYieldsEmptyMatrix(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)

	rec := do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/temperature/monthly?years=abc,,refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var matrix models.MonthlyMatrix
	decodeJSON(t, rec, &matrix)
	require.Empty(t, matrix.Years)
	require.Empty(t, matrix.Rows, "unusable year tokens short-circuit to an empty matrix")
}

func TestCompareDatesValidation(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)
	prefix := "/api/v1/silos/" + testSilo + "/analysis/temperature/compare-dates"

	tests := []struct {
		name  string
		query string
	}{
		{"missing dates", ""},
		{"weekday out of range", "?dates=2026-03-10&weekday=9"},
		{"unknown alignment granularity", "?dates=2026-03-10&gran=weekly"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, env, http.MethodGet, prefix+tt.query, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, errors.ErrorTypeValidation, decodeAPIError(t, rec).Type)
		})
	}
}

func TestCompareDatesOverHTTP(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)
	center := at(t, "2026-03-10T00:00:00Z")

	seedReadings(t, env, testSilo, models.Temperature, []models.Point{
		{T: center.Add(10 * time.Minute), V: 20},
	})

	rec := do(t, env, http.MethodGet,
		"/api/v1/silos/"+testSilo+"/analysis/temperature/compare-dates?dates=2026-03-10,bogus&window_h=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var aligned models.AlignedSeries
	decodeJSON(t, rec, &aligned)
	require.Equal(t, []float64{-2, -1, 0, 1, 2}, aligned.RelHours)
	require.Len(t, aligned.Series, 1, "unparsable dates are skipped")
	require.Equal(t, "2026-03-10", aligned.Series[0].Label)
	require.NotNil(t, aligned.Series[0].Values[2])
	require.InDelta(t, 20.0, *aligned.Series[0].Values[2], 1e-9)
}

func TestScatterOverHTTP(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)
	base := at(t, "2026-03-10T00:00:00Z")

	seedReadings(t, env, testSilo, models.Temperature, []models.Point{{T: base.Add(time.Minute), V: 20}})
	seedReadings(t, env, testSilo, models.Humidity, []models.Point{{T: base.Add(2 * time.Minute), V: 12}})

	rec := do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/scatter", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var scatter models.ScatterSeries
	decodeJSON(t, rec, &scatter)
	require.Len(t, scatter.Pairs, 1)
	require.InDelta(t, 20.0, scatter.Pairs[0].X, 1e-9)
	require.InDelta(t, 12.0, scatter.Pairs[0].Y, 1e-9)
}

func TestExportCSVDownload(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)
	base := at(t, "2026-03-10T00:00:00Z")

	seedReadings(t, env, testSilo, models.Temperature, []models.Point{
		{T: base, V: 19.5},
		{T: base.Add(time.Hour), V: 20},
	})

	rec := do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/temperature/export.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="agrosilo_temperature_history.csv"`, rec.Header().Get("Content-Disposition"))
	require.Equal(t, "t,v\n2026-03-10T00:00:00Z,19.5\n2026-03-10T01:00:00Z,20\n", rec.Body.String())

	rec = do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/analysis/humidity/export.csv", nil)
	require.Equal(t, http.StatusNotFound, rec.Code, "no rows means no attachment")
}

func TestTriggerSyncRunsPipeline(t *testing.T) {
	client := &fakeClient{feeds: map[int][]telemetry.Feed{
		1: {
			{CreatedAt: "2026-03-10T00:00:00Z", Fields: map[int]string{1: "20"}},
			{CreatedAt: "2026-03-10T00:15:00Z", Fields: map[int]string{1: "21"}},
		},
		2: {
			{CreatedAt: "2026-03-10T00:15:00Z", Fields: map[int]string{2: "12.5"}},
		},
	}}
	env := newTestRouter(t, client)
	seedSilo(t, env, testSilo)

	rec := do(t, env, http.MethodPost, "/api/v1/trigger-sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.SyncReport
	decodeJSON(t, rec, &report)
	require.Equal(t, 2, report.Temperature.Stored)
	require.Equal(t, 1, report.Humidity.Stored)
	require.NotNil(t, report.Assessment)
	require.Equal(t, models.StatusAlert, report.Assessment.Status.Temperature)

	// the cycle leaves a queryable snapshot behind
	rec = do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/assessments/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var latest models.Assessment
	decodeJSON(t, rec, &latest)
	require.Equal(t, report.Assessment.Timestamp.UTC(), latest.Timestamp.UTC())

	rec = do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status hubservice.SiloStatus
	decodeJSON(t, rec, &status)
	require.Equal(t, "online", status.OnlineStatus)
	require.NotNil(t, status.LatestSnapshot)

	// last readings are keyed by sensor id
	tempSensor, err := env.sensors.GetOrCreate(context.Background(), testSilo, models.Temperature)
	require.NoError(t, err)
	require.Contains(t, status.LastReadings, tempSensor.ID)
	require.Equal(t, 21.0, status.LastReadings[tempSensor.ID].Value)
}

func TestTriggerSyncSurfacesUpstreamFailure(t *testing.T) {
	client := &fakeClient{errs: map[int]error{1: errors.NewUpstreamError("channel down", nil)}}
	env := newTestRouter(t, client)
	seedSilo(t, env, testSilo)

	rec := do(t, env, http.MethodPost, "/api/v1/trigger-sync", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, errors.ErrorTypeUpstream, decodeAPIError(t, rec).Type)
}

func TestAssessmentHistoryWindow(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)
	ctx := context.Background()

	for i, ts := range []string{"2026-03-09T00:00:00Z", "2026-03-10T00:00:00Z", "2026-03-11T00:00:00Z"} {
		require.NoError(t, env.assessments.Upsert(ctx, &models.Assessment{
			ID:        fmt.Sprintf("asmt_%d", i),
			SiloID:    testSilo,
			Timestamp: at(t, ts),
		}))
	}

	rec := do(t, env, http.MethodGet,
		"/api/v1/silos/"+testSilo+"/assessments?start=2026-03-09T12:00:00Z&end=2026-03-10T12:00:00Z", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []models.Assessment
	decodeJSON(t, rec, &listed)
	require.Len(t, listed, 1)
	require.Equal(t, at(t, "2026-03-10T00:00:00Z"), listed[0].Timestamp.UTC())
}

func TestSiloSensorsListing(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	seedSilo(t, env, testSilo)
	seedReadings(t, env, testSilo, models.CO2, []models.Point{{T: at(t, "2026-03-10T00:00:00Z"), V: 550}})

	rec := do(t, env, http.MethodGet, "/api/v1/silos/"+testSilo+"/sensors", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sensors []models.Sensor
	decodeJSON(t, rec, &sensors)
	require.Len(t, sensors, 1)
	require.Equal(t, models.CO2, sensors[0].Type)

	rec = do(t, env, http.MethodGet, "/api/v1/silos/silo_missing/sensors", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSensorRegistryEndpoints(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})
	ctx := context.Background()

	seedSilo(t, env, "silo_a")
	seedSilo(t, env, "silo_b")
	ts := at(t, "2026-03-10T00:00:00Z")
	seedReadings(t, env, "silo_a", models.Temperature, []models.Point{{T: ts, V: 20}})
	seedReadings(t, env, "silo_a", models.Humidity, []models.Point{{T: ts, V: 12}})
	seedReadings(t, env, "silo_b", models.Temperature, []models.Point{{T: ts, V: 22}})

	var list struct {
		Total   int64           `json:"total"`
		Page    int             `json:"page"`
		Limit   int             `json:"limit"`
		Sensors []models.Sensor `json:"sensors"`
	}

	rec := do(t, env, http.MethodGet, "/api/v1/sensors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &list)
	require.EqualValues(t, 3, list.Total)
	require.Len(t, list.Sensors, 3)
	require.Equal(t, 1, list.Page)

	rec = do(t, env, http.MethodGet, "/api/v1/sensors?silo_id=silo_a&type=temperature", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &list)
	require.EqualValues(t, 1, list.Total)
	require.Len(t, list.Sensors, 1)
	sensorID := list.Sensors[0].ID

	rec = do(t, env, http.MethodGet, "/api/v1/sensors/"+sensorID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sensor models.Sensor
	decodeJSON(t, rec, &sensor)
	require.Equal(t, models.Temperature, sensor.Type)
	require.Equal(t, "silo_a", sensor.SiloID)

	rec = do(t, env, http.MethodDelete, "/api/v1/sensors/"+sensorID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, env, http.MethodGet, "/api/v1/sensors/"+sensorID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	points, err := env.readings.FetchPoints(ctx, []string{sensorID}, time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Empty(t, points, "deleting a sensor must drop its readings")
}

func TestHealthAndMetricsRouting(t *testing.T) {
	env := newTestRouter(t, &fakeClient{})

	rec := do(t, env, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, env, http.MethodGet, "/api/v1/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"cycles":0}`, rec.Body.String())
}
