// FilePath: internal/ingest/ingest.go
package ingest

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/assessment"
	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/models"
	"github.com/edsonsantana1/agrosilo/internal/monitoring"
	"github.com/edsonsantana1/agrosilo/internal/repository"
	"github.com/edsonsantana1/agrosilo/internal/telemetry"
	"github.com/relvacode/iso8601"
	nuts "github.com/vaudience/go-nuts"
)

// Pipeline pulls raw channel feeds, cleans them and lands accepted
// readings in the measurement store. One Pipeline serves one silo.
type Pipeline struct {
	client   telemetry.Client
	sensors  repository.SensorRepository
	readings repository.ReadingRepository
	silos    repository.SiloRepository
	builder  *assessment.Builder
	monitor  *monitoring.Service
	cfg      config.IngestConfig
	results  int
}

// New wires the ingestion pipeline for the configured silo.
func New(
	client telemetry.Client,
	sensors repository.SensorRepository,
	readings repository.ReadingRepository,
	silos repository.SiloRepository,
	builder *assessment.Builder,
	monitor *monitoring.Service,
	cfg config.IngestConfig,
	results int,
) *Pipeline {
	return &Pipeline{
		client:   client,
		sensors:  sensors,
		readings: readings,
		silos:    silos,
		builder:  builder,
		monitor:  monitor,
		cfg:      cfg,
		results:  results,
	}
}

// observation is one parsed, in-range sample awaiting the spike filter
type observation struct {
	ts  time.Time
	val float64
}

// SyncAll runs one full ingestion cycle: temperature and humidity always,
// pressure and CO2 only when their channel fields are mapped. A failure on
// the optional quantities degrades to an empty result instead of aborting
// the cycle; the primary quantities propagate their error.
func (p *Pipeline) SyncAll(ctx context.Context) (*models.SyncReport, error) {
	p.monitor.Add("ingest.cycles", 1)

	tempRes, err := p.syncType(ctx, models.Temperature, p.cfg.Temperature)
	if err != nil {
		return nil, err
	}
	humRes, err := p.syncType(ctx, models.Humidity, p.cfg.Humidity)
	if err != nil {
		return nil, err
	}

	pressRes := models.SyncTypeResult{Type: string(models.Pressure)}
	if p.cfg.Pressure.Field > 0 {
		pressRes, err = p.syncType(ctx, models.Pressure, p.cfg.Pressure)
		if err != nil {
			nuts.L.Warnf("[Ingest] Pressure sync disabled for this cycle: %v", err)
			pressRes = models.SyncTypeResult{Type: string(models.Pressure)}
		}
	}

	var co2Res *models.SyncTypeResult
	if p.cfg.CO2.Field > 0 {
		res, err := p.syncType(ctx, models.CO2, p.cfg.CO2)
		if err != nil {
			nuts.L.Warnf("[Ingest] CO2 sync disabled for this cycle: %v", err)
			res = models.SyncTypeResult{Type: string(models.CO2)}
		}
		co2Res = &res
	}

	snapshot := p.builder.BuildAndStore(ctx, p.cfg.SiloID, tempRes.Last, humRes.Last, pressRes.Last)

	p.touchSilo(ctx, tempRes, humRes, pressRes, co2Res)

	return &models.SyncReport{
		Temperature: tempRes,
		Humidity:    humRes,
		Pressure:    pressRes,
		CO2:         co2Res,
		Assessment:  snapshot,
	}, nil
}

// Cycle adapts SyncAll to the scheduler's signature.
func (p *Pipeline) Cycle(ctx context.Context) error {
	report, err := p.SyncAll(ctx)
	if err != nil {
		return err
	}
	nuts.L.Infof("[Ingest] Cycle done: temp %d/%d stored, hum %d/%d stored",
		report.Temperature.Stored, report.Temperature.Received,
		report.Humidity.Stored, report.Humidity.Received)
	return nil
}

// syncType runs the cleaning pipeline of one sensor type: fetch, parse,
// physical-range filter, ascending sort, spike filter, insert.
func (p *Pipeline) syncType(ctx context.Context, sensorType models.SensorType, rule config.SensorRule) (models.SyncTypeResult, error) {
	result := models.SyncTypeResult{Type: string(sensorType)}

	feeds, err := p.client.FetchField(ctx, rule.Field, p.results)
	if err != nil {
		return result, err
	}
	if len(feeds) == 0 {
		return result, nil
	}
	result.Received = len(feeds)
	p.monitor.Add("ingest.received", int64(len(feeds)))

	parsed := make([]observation, 0, len(feeds))
	for _, feed := range feeds {
		obs, ok := parseFeed(feed, rule.Field)
		if !ok {
			continue
		}
		if obs.val < rule.RangeMin || obs.val > rule.RangeMax {
			continue
		}
		parsed = append(parsed, obs)
	}
	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].ts.Before(parsed[j].ts) })

	sensor, err := p.sensors.GetOrCreate(ctx, p.cfg.SiloID, sensorType)
	if err != nil {
		return result, err
	}
	p.syncFieldIndex(ctx, sensor, rule.Field)

	// Anti-spike pass. The reference is seeded by the first in-range
	// sample and only moves on accept, so an outlier first sample can
	// shadow legitimate readings until a value of similar magnitude
	// re-seeds it.
	// TODO: seed the reference from the previous cycle's last stored
	// reading so a noisy first sample cannot shadow a whole batch.
	cleaned := make([]models.Reading, 0, len(parsed))
	var prev *float64
	var last *models.LastPoint

	for _, obs := range parsed {
		if prev != nil && math.Abs(obs.val-*prev) > rule.Spike {
			result.Dropped++
			continue
		}
		v := obs.val
		prev = &v
		last = &models.LastPoint{TS: obs.ts, Value: obs.val}
		cleaned = append(cleaned, models.Reading{
			SensorID:  sensor.ID,
			Value:     obs.val,
			Timestamp: obs.ts,
		})
	}

	stored, err := p.readings.InsertBatch(ctx, cleaned)
	if err != nil {
		return result, err
	}
	result.Stored = stored
	result.Last = last

	p.monitor.Add("ingest.stored", int64(stored))
	p.monitor.Add("ingest.spike_dropped", int64(result.Dropped))

	if last != nil {
		if err := p.sensors.UpdateLastValue(ctx, sensor.ID, last.Value, last.TS); err != nil {
			nuts.L.Warnf("[Ingest] Failed to update last value of sensor %s: %v", sensor.ID, err)
		}
	}

	return result, nil
}

// parseFeed extracts one (ts, value) observation from a raw feed.
// Missing fields, non-numeric values and unparsable timestamps drop the
// sample silently; upstream noise is expected, not exceptional.
func parseFeed(feed telemetry.Feed, field int) (observation, bool) {
	raw, ok := feed.Value(field)
	if !ok || raw == "" {
		return observation{}, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return observation{}, false
	}
	ts, err := iso8601.ParseString(feed.CreatedAt)
	if err != nil {
		return observation{}, false
	}
	return observation{ts: ts.UTC(), val: val}, true
}

// syncFieldIndex records the channel field a sensor is mapped to. The
// mapping only changes on reconfiguration, so the update is a one-off.
func (p *Pipeline) syncFieldIndex(ctx context.Context, sensor *models.Sensor, field int) {
	if sensor.FieldIndex == field {
		return
	}
	sensor.FieldIndex = field
	sensor.UpdatedAt = time.Now().UTC()
	if err := p.sensors.Update(ctx, sensor); err != nil {
		nuts.L.Warnf("[Ingest] Failed to update field index of sensor %s: %v", sensor.ID, err)
	}
}

// touchSilo refreshes the silo bookkeeping columns after a cycle. The
// silo row is optional (ingestion may outpace registration), so a
// not-found outcome only warns.
func (p *Pipeline) touchSilo(ctx context.Context, temp, hum, press models.SyncTypeResult, co2 *models.SyncTypeResult) {
	now := time.Now().UTC()

	var lastReading time.Time
	for _, res := range []*models.LastPoint{temp.Last, hum.Last, press.Last} {
		if res != nil && res.TS.After(lastReading) {
			lastReading = res.TS
		}
	}
	if co2 != nil && co2.Last != nil && co2.Last.TS.After(lastReading) {
		lastReading = co2.Last.TS
	}

	if err := p.silos.UpdateLastSync(ctx, p.cfg.SiloID, now); err != nil {
		nuts.L.Warnf("[Ingest] Failed to update last sync of silo %s: %v", p.cfg.SiloID, err)
	}
	if !lastReading.IsZero() {
		if err := p.silos.UpdateLastReading(ctx, p.cfg.SiloID, lastReading); err != nil {
			nuts.L.Warnf("[Ingest] Failed to update last reading of silo %s: %v", p.cfg.SiloID, err)
		}
	}
}
