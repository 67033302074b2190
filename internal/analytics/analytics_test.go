package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/models"
	"github.com/edsonsantana1/agrosilo/internal/policy"
	"github.com/edsonsantana1/agrosilo/internal/repository"
	"github.com/edsonsantana1/agrosilo/internal/repository/memory"
)

const testSilo = "silo_analytics01"

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
		MAWindowMax:     2000,
	}
}

func newTestService() (*Service, repository.SensorRepository, repository.ReadingRepository) {
	store := memory.NewStore()
	sensors := memory.NewSensorRepository(store)
	readings := memory.NewReadingRepository(store)
	svc := New(sensors, readings, policy.New(testPolicyConfig()), testAnalyticsConfig())
	return svc, sensors, readings
}

func seedPoints(t *testing.T, sensors repository.SensorRepository, readings repository.ReadingRepository, sensorType models.SensorType, points []models.Point) {
	t.Helper()
	ctx := context.Background()

	sensor, err := sensors.GetOrCreate(ctx, testSilo, sensorType)
	require.NoError(t, err)

	batch := make([]models.Reading, len(points))
	for i, p := range points {
		batch[i] = models.Reading{SensorID: sensor.ID, Value: p.V, Timestamp: p.T}
	}
	_, err = readings.InsertBatch(ctx, batch)
	require.NoError(t, err)
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestPercentileLinearInterpolation(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}
	// rank = 0.95 * 99 = 94.05, interpolated between 95 and 96
	require.InDelta(t, 95.05, percentile(values, 95), 1e-9)

	require.Equal(t, 42.0, percentile([]float64{42}, 95))
	require.InDelta(t, 19.0, percentile([]float64{10, 20}, 90), 1e-9)
}

func TestBasicStats(t *testing.T) {
	stats := basicStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.Equal(t, 8, stats.N)
	require.Equal(t, 2.0, stats.Min)
	require.Equal(t, 9.0, stats.Max)
	require.Equal(t, 5.0, stats.Mean)
	require.Equal(t, 4.5, stats.Median)
	// sample variance: sum of squares 32 over n-1 = 7
	require.InDelta(t, 2.13809, stats.StdDev, 1e-4)

	odd := basicStats([]float64{3, 1, 2})
	require.Equal(t, 2.0, odd.Median)

	empty := basicStats(nil)
	require.Equal(t, 0, empty.N)
	require.Equal(t, 0.0, empty.StdDev)

	single := basicStats([]float64{7})
	require.Equal(t, 0.0, single.StdDev)
	require.Equal(t, 7.0, single.P95)
}

func TestDelta24(t *testing.T) {
	base := at(t, "2026-03-10T00:00:00Z")

	short := []models.Point{
		{T: base, V: 10},
		{T: base.Add(23 * time.Hour), V: 14},
	}
	require.Nil(t, delta24(short))

	full := []models.Point{
		{T: base, V: 10},
		{T: base.Add(12 * time.Hour), V: 11},
		{T: base.Add(25 * time.Hour), V: 16},
	}
	// reference instant is last.t - 24h = base + 1h; first point at or
	// after it is the one at base + 12h
	d := delta24(full)
	require.NotNil(t, d)
	require.InDelta(t, 5.0, *d, 1e-9)

	exact := []models.Point{
		{T: base, V: 10},
		{T: base.Add(24 * time.Hour), V: 13},
	}
	d = delta24(exact)
	require.NotNil(t, d)
	require.InDelta(t, 3.0, *d, 1e-9)
}

func TestSummarizeEmptySeries(t *testing.T) {
	svc, _, _ := newTestService()
	require.Nil(t, svc.Summarize(models.Series{SensorType: models.Humidity, Points: []models.Point{}}))
}

func TestBandExposureStepHold(t *testing.T) {
	svc, _, _ := newTestService()
	base := at(t, "2026-03-10T00:00:00Z")

	// 15% humidity is in the moderate band, 12% is ideal, 20% critical.
	// Each interval is attributed to the band of the value at its start.
	series := models.Series{SensorType: models.Humidity, Points: []models.Point{
		{T: base, V: 15.0},
		{T: base.Add(1 * time.Hour), V: 12.0},
		{T: base.Add(90 * time.Minute), V: 20.0},
	}}

	summary := svc.Summarize(series)
	require.NotNil(t, summary)
	require.Equal(t, int64(3600000), summary.Bands.WarningMS)
	require.Equal(t, int64(1800000), summary.Bands.NormalMS)
	require.Equal(t, int64(0), summary.Bands.CriticalMS)
	require.Equal(t, int64(0), summary.Bands.CautionMS)

	// single point carries no duration
	one := svc.Summarize(models.Series{SensorType: models.Humidity, Points: series.Points[:1]})
	require.Equal(t, models.BandBreakdown{}, one.Bands)
}

func TestAggregateHourlyBuckets(t *testing.T) {
	svc, _, _ := newTestService()
	base := at(t, "2026-03-10T00:00:00Z")

	series := models.Series{SensorType: models.Temperature, Points: []models.Point{
		{T: base.Add(10 * time.Minute), V: 10},
		{T: base.Add(50 * time.Minute), V: 20},
		{T: base.Add(80 * time.Minute), V: 30},
		{T: base.Add(185 * time.Minute), V: 40},
	}}

	agg := svc.Aggregate(series, models.GranHour, 0)
	require.Len(t, agg.Buckets, 3, "hours without samples must be omitted")

	require.Equal(t, base, agg.Buckets[0].T)
	require.Equal(t, 15.0, agg.Buckets[0].Avg)
	require.Equal(t, 10.0, agg.Buckets[0].Min)
	require.Equal(t, 20.0, agg.Buckets[0].Max)
	require.Equal(t, 2, agg.Buckets[0].Count)
	require.Nil(t, agg.Buckets[0].MA)

	require.Equal(t, base.Add(time.Hour), agg.Buckets[1].T)
	require.Equal(t, 30.0, agg.Buckets[1].Avg)
	require.Equal(t, 1, agg.Buckets[1].Count)

	require.Equal(t, base.Add(3*time.Hour), agg.Buckets[2].T)
}

func TestAggregateMovingAverage(t *testing.T) {
	svc, _, _ := newTestService()
	base := at(t, "2026-03-10T00:00:00Z")

	series := models.Series{SensorType: models.Temperature, Points: []models.Point{
		{T: base, V: 10},
		{T: base.Add(time.Hour), V: 20},
		{T: base.Add(2 * time.Hour), V: 60},
	}}

	agg := svc.Aggregate(series, models.GranHour, 2)
	require.Len(t, agg.Buckets, 3)
	// partial window at the head
	require.InDelta(t, 10.0, *agg.Buckets[0].MA, 1e-9)
	require.InDelta(t, 15.0, *agg.Buckets[1].MA, 1e-9)
	require.InDelta(t, 40.0, *agg.Buckets[2].MA, 1e-9)

	plain := svc.Aggregate(series, models.GranHour, 1)
	for _, b := range plain.Buckets {
		require.Nil(t, b.MA)
	}
}

func TestHistoryWithoutSensorsIsEmpty(t *testing.T) {
	svc, _, _ := newTestService()

	series, err := svc.History(context.Background(), testSilo, models.CO2, time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Equal(t, models.CO2, series.SensorType)
	require.Empty(t, series.Points)
}

func TestScatterInnerJoin(t *testing.T) {
	svc, sensors, readings := newTestService()
	base := at(t, "2026-03-10T00:00:00Z")

	seedPoints(t, sensors, readings, models.Temperature, []models.Point{
		{T: base.Add(1 * time.Minute), V: 20},
		{T: base.Add(3 * time.Minute), V: 30},
		{T: base.Add(6 * time.Minute), V: 40}, // second bucket, no humidity partner
	})
	seedPoints(t, sensors, readings, models.Humidity, []models.Point{
		{T: base.Add(2 * time.Minute), V: 12},
		{T: base.Add(11 * time.Minute), V: 13}, // third bucket, no temperature partner
	})

	scatter, err := svc.Scatter(context.Background(), testSilo, time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, scatter.Pairs, 1, "only instants where both types reported survive")
	require.Equal(t, base, scatter.Pairs[0].T)
	require.InDelta(t, 25.0, scatter.Pairs[0].X, 1e-9)
	require.InDelta(t, 12.0, scatter.Pairs[0].Y, 1e-9)
}

func TestScatterEmptySideYieldsNoPairs(t *testing.T) {
	svc, sensors, readings := newTestService()
	base := at(t, "2026-03-10T00:00:00Z")

	seedPoints(t, sensors, readings, models.Temperature, []models.Point{{T: base, V: 20}})

	scatter, err := svc.Scatter(context.Background(), testSilo, time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Empty(t, scatter.Pairs)
}

func TestMonthlySeriesMatrix(t *testing.T) {
	svc, sensors, readings := newTestService()

	// Feb 1st has two samples (daily mean 15), Feb 2nd one sample (30):
	// the month mean averages daily means, not raw samples.
	seedPoints(t, sensors, readings, models.Humidity, []models.Point{
		{T: at(t, "2024-02-01T06:00:00Z"), V: 10},
		{T: at(t, "2024-02-01T18:00:00Z"), V: 20},
		{T: at(t, "2024-02-02T06:00:00Z"), V: 30},
	})

	matrix, err := svc.MonthlySeries(context.Background(), testSilo, models.Humidity, []int{2024}, time.Time{}, time.Time{}, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []int{2024}, matrix.Years)
	require.Len(t, matrix.Rows, 12)

	jan := matrix.Rows[0]
	require.Equal(t, "Jan", jan.Label)
	require.Nil(t, jan.Cells[2024], "months without data carry nil cells")

	feb := matrix.Rows[1]
	require.Equal(t, "Fev", feb.Label)
	require.NotNil(t, feb.Cells[2024])
	require.InDelta(t, 22.5, *feb.Cells[2024], 1e-9)
}

func TestMonthlySeriesDefaultsToTrailingYears(t *testing.T) {
	svc, _, _ := newTestService()
	svc.now = func() time.Time { return at(t, "2026-08-25T12:00:00Z") }

	matrix, err := svc.MonthlySeries(context.Background(), testSilo, models.Humidity, nil, time.Time{}, time.Time{}, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []int{2024, 2025, 2026}, matrix.Years)
	require.Len(t, matrix.Rows, 12)
}

func TestCompareDatesAlignment(t *testing.T) {
	svc, sensors, readings := newTestService()
	center := at(t, "2026-03-10T00:00:00Z")

	seedPoints(t, sensors, readings, models.Temperature, []models.Point{
		{T: center.Add(-10 * time.Minute), V: 10}, // floors into the -1h bin
		{T: center.Add(10 * time.Minute), V: 20},
		{T: center.Add(20 * time.Minute), V: 30},
	})

	aligned, err := svc.CompareDates(context.Background(), testSilo, models.Temperature,
		[]string{"2026-03-10", "bogus-date"}, models.AlignHour, 2, nil, 0)
	require.NoError(t, err)

	require.Equal(t, []float64{-2, -1, 0, 1, 2}, aligned.RelHours)
	require.Len(t, aligned.Series, 1, "unparsable dates are skipped")
	require.Equal(t, "2026-03-10", aligned.Series[0].Label)

	values := aligned.Series[0].Values
	require.Len(t, values, len(aligned.RelHours))
	require.Nil(t, values[0])
	require.NotNil(t, values[1])
	require.InDelta(t, 10.0, *values[1], 1e-9)
	require.NotNil(t, values[2])
	require.InDelta(t, 25.0, *values[2], 1e-9)
	require.Nil(t, values[3])
	require.Nil(t, values[4])
}

func TestCompareDatesWeekdayFilter(t *testing.T) {
	svc, sensors, readings := newTestService()
	center := at(t, "2026-03-10T00:00:00Z") // a Tuesday

	seedPoints(t, sensors, readings, models.Temperature, []models.Point{
		{T: center.Add(30 * time.Minute), V: 20},           // Tuesday
		{T: center.Add(-30 * time.Minute), V: 99},          // Monday 23:30
		{T: center.Add(-2*time.Hour + time.Minute), V: 98}, // Monday 22:01
	})

	tuesday := int(time.Tuesday)
	aligned, err := svc.CompareDates(context.Background(), testSilo, models.Temperature,
		[]string{"2026-03-10"}, models.AlignHour, 2, &tuesday, 0)
	require.NoError(t, err)
	require.Len(t, aligned.Series, 1)

	values := aligned.Series[0].Values
	require.Nil(t, values[0], "Monday samples are filtered out")
	require.Nil(t, values[1])
	require.NotNil(t, values[2])
	require.InDelta(t, 20.0, *values[2], 1e-9)
}

func TestFloorBin(t *testing.T) {
	tests := []struct {
		rel  time.Duration
		want time.Duration
	}{
		{0, 0},
		{10 * time.Minute, 0},
		{time.Hour, time.Hour},
		{-10 * time.Minute, -time.Hour},
		{-time.Hour, -time.Hour},
		{-61 * time.Minute, -2 * time.Hour},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, floorBin(tt.rel, time.Hour), "floorBin(%v)", tt.rel)
	}
}

func TestSeasonalProfileMeanAndBand(t *testing.T) {
	svc, sensors, readings := newTestService()

	// same calendar anchor across two years, one sample each at +0h
	seedPoints(t, sensors, readings, models.Temperature, []models.Point{
		{T: at(t, "2024-07-01T00:10:00Z"), V: 10},
		{T: at(t, "2025-07-01T00:10:00Z"), V: 20},
	})

	profile, err := svc.SeasonalProfile(context.Background(), testSilo, models.Temperature, SeasonalParams{
		Month: 7, Day: 1, FromYear: 2024, ToYear: 2025,
		Gran: models.AlignHour, WindowH: 1, WithBand: true,
	})
	require.NoError(t, err)
	require.Len(t, profile.Series, 2)
	require.Equal(t, "2024-07-01", profile.Series[0].Label)
	require.Equal(t, "2025-07-01", profile.Series[1].Label)

	require.Equal(t, []float64{-1, 0, 1}, profile.RelHours)
	require.NotNil(t, profile.Mean[1])
	require.InDelta(t, 15.0, *profile.Mean[1], 1e-9)
	require.Nil(t, profile.Mean[0])

	require.NotNil(t, profile.Band)
	require.NotNil(t, profile.Band.Lower[1])
	require.NotNil(t, profile.Band.Upper[1])
	require.InDelta(t, 7.93, *profile.Band.Lower[1], 1e-9)
	require.InDelta(t, 22.07, *profile.Band.Upper[1], 1e-9)
}

func TestSeasonalProfileSkipsMissingCalendarDays(t *testing.T) {
	svc, _, _ := newTestService()

	profile, err := svc.SeasonalProfile(context.Background(), testSilo, models.Temperature, SeasonalParams{
		Month: 2, Day: 29, FromYear: 2023, ToYear: 2024,
		Gran: models.AlignHour, WindowH: 1,
	})
	require.NoError(t, err)
	require.Len(t, profile.Series, 1, "2023 has no Feb 29")
	require.Equal(t, "2024-02-29", profile.Series[0].Label)
}

func TestSeasonalProfileRejectsBadAnchor(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.SeasonalProfile(context.Background(), testSilo, models.Temperature, SeasonalParams{
		Month: 13, Day: 1, FromYear: 2024, ToYear: 2025, Gran: models.AlignHour, WindowH: 1,
	})
	require.Error(t, err)
}

func TestSmoothTrailingKeepsGaps(t *testing.T) {
	v1, v2 := 10.0, 20.0
	in := []*float64{&v1, nil, &v2}

	out := smoothTrailing(in, 2)
	require.NotNil(t, out[0])
	require.InDelta(t, 10.0, *out[0], 1e-9)
	require.Nil(t, out[1], "smoothing never invents data")
	require.NotNil(t, out[2])
	require.InDelta(t, 20.0, *out[2], 1e-9)
}
