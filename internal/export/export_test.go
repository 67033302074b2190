package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edsonsantana1/agrosilo/internal/export"
	"github.com/edsonsantana1/agrosilo/internal/models"
)

func TestWriteSeriesCSV(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	series := models.Series{
		SensorType: models.Temperature,
		Points: []models.Point{
			{T: t0, V: 21.5},
			{T: t0.Add(15 * time.Minute), V: 22},
			{T: t0.Add(30 * time.Minute).In(time.FixedZone("BRT", -3*3600)), V: 22.25},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteSeriesCSV(&buf, series))

	want := "t,v\n" +
		"2026-03-10T08:00:00Z,21.5\n" +
		"2026-03-10T08:15:00Z,22\n" +
		"2026-03-10T08:30:00Z,22.25\n"
	require.Equal(t, want, buf.String())
}

func TestWriteSeriesCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteSeriesCSV(&buf, models.Series{SensorType: models.Humidity}))
	require.Equal(t, "t,v\n", buf.String())
}
