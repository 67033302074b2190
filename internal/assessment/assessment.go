// FilePath: internal/assessment/assessment.go
package assessment

import (
	"context"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/cache"
	"github.com/edsonsantana1/agrosilo/internal/models"
	"github.com/edsonsantana1/agrosilo/internal/policy"
	"github.com/edsonsantana1/agrosilo/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Operational notes attached to a snapshot when thresholds are crossed.
// The wording is fixed; dashboards and alert texts key on these strings.
const (
	noteHumidityCritical = "Umidade crítica: iniciar aeração intensiva e/ou secagem."
	noteHumidityHigh     = "Umidade acima do ideal: aeração moderada a intensiva."
	noteTempVeryHigh     = "Temperatura muito alta (>40°C): risco severo de fungos."
	noteTempHigh         = "Temperatura alta (>30°C): risco de fungos/insetos."
)

// Builder derives the consolidated condition snapshot of a silo from the
// latest accepted observation of each quantity and persists it.
type Builder struct {
	policy      *policy.Policy
	assessments repository.AssessmentRepository
	cache       *cache.Cache
	now         func() time.Time
}

// NewBuilder wires the builder. cache may be nil when caching is disabled.
func NewBuilder(p *policy.Policy, assessments repository.AssessmentRepository, c *cache.Cache) *Builder {
	return &Builder{
		policy:      p,
		assessments: assessments,
		cache:       c,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Build derives a snapshot from the latest accepted observations. Any of
// temp, hum, press may be nil when that quantity produced no accepted
// sample; the snapshot then carries a nil value and an N/A status for it.
// The snapshot reference time is the most recent of the temperature and
// humidity observation times, falling back to wall clock when neither
// quantity delivered.
func (b *Builder) Build(siloID string, temp, hum, press *models.LastPoint) *models.Assessment {
	assessment := &models.Assessment{
		SiloID:    siloID,
		Timestamp: b.referenceTime(temp, hum),
		Status: models.StatusSet{
			Temperature: models.StatusNA,
			Humidity:    models.StatusNA,
			Pressure:    models.StatusNA,
			CO2:         models.StatusNA,
		},
		Notes: models.Notes{},
	}

	if temp != nil {
		v := temp.Value
		assessment.Temperature = &v
		assessment.Status.Temperature = b.policy.TemperatureStatus(v)
	}
	if hum != nil {
		v := hum.Value
		assessment.Humidity = &v
		assessment.Status.Humidity = b.policy.HumidityStatus(v)
	}
	if press != nil {
		v := press.Value
		assessment.Pressure = &v
		assessment.Status.Pressure = models.StatusOK
	}

	assessment.Aeration = b.policy.AerationAdvice(assessment.Humidity)
	assessment.Notes = b.buildNotes(assessment.Temperature, assessment.Humidity)

	return assessment
}

// BuildAndStore derives the snapshot and persists it. Persistence problems
// are logged and swallowed: the snapshot is advisory and must never fail
// the ingestion cycle that produced it.
func (b *Builder) BuildAndStore(ctx context.Context, siloID string, temp, hum, press *models.LastPoint) *models.Assessment {
	assessment := b.Build(siloID, temp, hum, press)

	if err := b.assessments.Upsert(ctx, assessment); err != nil {
		nuts.L.Errorf("[Assessment] Failed to persist snapshot for silo %s: %v", siloID, err)
		return assessment
	}

	if err := b.cache.SetLatestAssessment(ctx, assessment); err != nil {
		nuts.L.Warnf("[Assessment] Failed to cache snapshot for silo %s: %v", siloID, err)
	}

	return assessment
}

// referenceTime picks the snapshot instant: the most recent of the two
// primary quantities, temperature and humidity.
func (b *Builder) referenceTime(temp, hum *models.LastPoint) time.Time {
	var ref time.Time
	if temp != nil {
		ref = temp.TS
	}
	if hum != nil && hum.TS.After(ref) {
		ref = hum.TS
	}
	if ref.IsZero() {
		ref = b.now()
	}
	return ref.UTC()
}

// buildNotes collects the deviation notes, humidity first, then
// temperature, without duplicates.
func (b *Builder) buildNotes(temp, hum *float64) models.Notes {
	notes := models.Notes{}

	add := func(note string) {
		for _, existing := range notes {
			if existing == note {
				return
			}
		}
		notes = append(notes, note)
	}

	if hum != nil {
		switch {
		case *hum >= b.policy.Status.HumCritMin:
			add(noteHumidityCritical)
		case *hum > b.policy.Status.HumAdmMax:
			add(noteHumidityHigh)
		}
	}
	if temp != nil {
		switch {
		case *temp > b.policy.Status.TempVHighMin:
			add(noteTempVeryHigh)
		case *temp > b.policy.Status.TempCritMin:
			add(noteTempHigh)
		}
	}

	return notes
}
