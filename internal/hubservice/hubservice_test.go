package hubservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/hubservice"
	"github.com/edsonsantana1/agrosilo/internal/models"
	"github.com/edsonsantana1/agrosilo/internal/repository/memory"
)

func newHub() (*hubservice.HubService, *memory.Store) {
	store := memory.NewStore()
	hub := hubservice.New(
		memory.NewSiloRepository(store),
		memory.NewSensorRepository(store),
		memory.NewReadingRepository(store),
		memory.NewAssessmentRepository(store),
		nil,
	)
	return hub, store
}

func TestHubValidate(t *testing.T) {
	hub, _ := newHub()
	require.NoError(t, hub.Validate())

	incomplete := &hubservice.HubService{}
	require.Error(t, incomplete.Validate())
}

func TestCreateSilo(t *testing.T) {
	hub, _ := newHub()
	ctx := context.Background()

	err := hub.CreateSilo(ctx, &models.Silo{})
	require.Error(t, err, "name is required")
	require.True(t, errors.IsValidation(err))

	silo := &models.Silo{Name: "Silo Norte", GrainType: "soja"}
	require.NoError(t, hub.CreateSilo(ctx, silo))
	require.NotEmpty(t, silo.ID)
	require.Equal(t, "UTC", silo.Timezone)
	require.False(t, silo.CreatedAt.IsZero())

	stored, err := hub.GetSilo(ctx, silo.ID)
	require.NoError(t, err)
	require.Equal(t, "Silo Norte", stored.Name)
}

func TestUpdateSiloPreservesBookkeeping(t *testing.T) {
	hub, _ := newHub()
	ctx := context.Background()

	silo := &models.Silo{Name: "Silo Norte"}
	require.NoError(t, hub.CreateSilo(ctx, silo))

	lastSync := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, hub.Silos.UpdateLastSync(ctx, silo.ID, lastSync))

	update := &models.Silo{ID: silo.ID, Name: "Silo Norte II", GrainType: "milho"}
	require.NoError(t, hub.UpdateSilo(ctx, update))

	stored, err := hub.GetSilo(ctx, silo.ID)
	require.NoError(t, err)
	require.Equal(t, "Silo Norte II", stored.Name)
	require.Equal(t, silo.CreatedAt.UTC(), stored.CreatedAt.UTC())
	require.Equal(t, lastSync, stored.LastSyncAt.UTC(), "update must not clobber sync bookkeeping")
}

func TestDeleteSiloCascades(t *testing.T) {
	hub, _ := newHub()
	ctx := context.Background()

	silo := &models.Silo{Name: "Silo Norte"}
	require.NoError(t, hub.CreateSilo(ctx, silo))

	sensor, err := hub.Sensors.GetOrCreate(ctx, silo.ID, models.Temperature)
	require.NoError(t, err)

	_, err = hub.Readings.InsertBatch(ctx, []models.Reading{
		{SensorID: sensor.ID, Value: 20, Timestamp: time.Now().UTC()},
	})
	require.NoError(t, err)

	require.NoError(t, hub.Assessments.Upsert(ctx, &models.Assessment{
		SiloID:    silo.ID,
		Timestamp: time.Now().UTC(),
		Status:    models.StatusSet{Temperature: models.StatusOK},
	}))

	deleted := make(chan string, 4)
	hub.Cleanup.OnCleanup("sensor.deleted", func(id string) {
		deleted <- id
	})

	require.NoError(t, hub.DeleteSilo(ctx, silo.ID))

	_, err = hub.GetSilo(ctx, silo.ID)
	require.True(t, errors.IsNotFound(err))

	sensors, err := hub.Sensors.ListBySilo(ctx, silo.ID)
	require.NoError(t, err)
	require.Empty(t, sensors)

	points, err := hub.Readings.FetchPoints(ctx, []string{sensor.ID}, time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Empty(t, points)

	_, err = hub.Assessments.GetLatestBySilo(ctx, silo.ID)
	require.True(t, errors.IsNotFound(err))

	select {
	case id := <-deleted:
		require.Equal(t, sensor.ID, id, "cleanup must announce the deleted sensor")
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup never announced the deleted sensor")
	}
}

func TestDeleteSiloUnknownID(t *testing.T) {
	hub, _ := newHub()
	err := hub.DeleteSilo(context.Background(), "silo_missing")
	require.True(t, errors.IsNotFound(err))
}

func TestDeleteSensorRemovesOnlyItsData(t *testing.T) {
	hub, _ := newHub()
	ctx := context.Background()

	silo := &models.Silo{Name: "Silo Norte"}
	require.NoError(t, hub.CreateSilo(ctx, silo))

	temp, err := hub.Sensors.GetOrCreate(ctx, silo.ID, models.Temperature)
	require.NoError(t, err)
	hum, err := hub.Sensors.GetOrCreate(ctx, silo.ID, models.Humidity)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = hub.Readings.InsertBatch(ctx, []models.Reading{
		{SensorID: temp.ID, Value: 20, Timestamp: now},
		{SensorID: hum.ID, Value: 12, Timestamp: now},
	})
	require.NoError(t, err)

	require.NoError(t, hub.Cleanup.DeleteSensor(ctx, temp.ID))

	sensors, err := hub.Sensors.ListBySilo(ctx, silo.ID)
	require.NoError(t, err)
	require.Len(t, sensors, 1)
	require.Equal(t, models.Humidity, sensors[0].Type)

	points, err := hub.Readings.FetchPoints(ctx, []string{temp.ID}, time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Empty(t, points)

	points, err = hub.Readings.FetchPoints(ctx, []string{hum.ID}, time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, points, 1, "sibling sensor data must survive")
}

func TestGetSiloStatus(t *testing.T) {
	hub, _ := newHub()
	ctx := context.Background()

	silo := &models.Silo{Name: "Silo Norte"}
	require.NoError(t, hub.CreateSilo(ctx, silo))

	sensor, err := hub.Sensors.GetOrCreate(ctx, silo.ID, models.Humidity)
	require.NoError(t, err)

	readingTime := time.Now().UTC().Add(-time.Minute)
	_, err = hub.Readings.InsertBatch(ctx, []models.Reading{
		{SensorID: sensor.ID, Value: 12.5, Timestamp: readingTime},
	})
	require.NoError(t, err)

	require.NoError(t, hub.Silos.UpdateLastSync(ctx, silo.ID, time.Now().UTC()))
	require.NoError(t, hub.Silos.UpdateLastReading(ctx, silo.ID, readingTime))

	status, err := hub.GetSiloStatus(ctx, silo.ID)
	require.NoError(t, err)
	require.Equal(t, "online", status.OnlineStatus)
	require.Len(t, status.LastReadings, 1)
	require.Equal(t, 12.5, status.LastReadings[sensor.ID].Value)
	require.Nil(t, status.LatestSnapshot, "no assessment recorded yet")
	require.False(t, status.LastActivity.IsZero())
}

func TestSiloOnlineStates(t *testing.T) {
	hub, _ := newHub()
	ctx := context.Background()

	tests := []struct {
		name     string
		lastSync time.Duration
		want     string
	}{
		{"fresh sync", -time.Minute, "online"},
		{"aging sync", -10 * time.Minute, "stale"},
		{"dead sync", -time.Hour, "offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			silo := &models.Silo{Name: "Silo " + tt.name}
			require.NoError(t, hub.CreateSilo(ctx, silo))
			require.NoError(t, hub.Silos.UpdateLastSync(ctx, silo.ID, time.Now().UTC().Add(tt.lastSync)))

			status, err := hub.GetSiloStatus(ctx, silo.ID)
			require.NoError(t, err)
			require.Equal(t, tt.want, status.OnlineStatus)
		})
	}
}

func TestLatestAssessmentFallsBackToStore(t *testing.T) {
	hub, _ := newHub()
	ctx := context.Background()

	silo := &models.Silo{Name: "Silo Norte"}
	require.NoError(t, hub.CreateSilo(ctx, silo))

	require.NoError(t, hub.Assessments.Upsert(ctx, &models.Assessment{
		SiloID:    silo.ID,
		Timestamp: time.Now().UTC(),
		Status:    models.StatusSet{Humidity: models.StatusOK},
	}))

	snapshot, err := hub.LatestAssessment(ctx, silo.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusOK, snapshot.Status.Humidity)
}

func TestListAssessmentsWidensZeroBounds(t *testing.T) {
	hub, _ := newHub()
	ctx := context.Background()

	silo := &models.Silo{Name: "Silo Norte"}
	require.NoError(t, hub.CreateSilo(ctx, silo))

	old := time.Now().UTC().Add(-90 * 24 * time.Hour)
	require.NoError(t, hub.Assessments.Upsert(ctx, &models.Assessment{
		SiloID: silo.ID, Timestamp: old,
	}))
	require.NoError(t, hub.Assessments.Upsert(ctx, &models.Assessment{
		SiloID: silo.ID, Timestamp: time.Now().UTC(),
	}))

	list, err := hub.ListAssessments(ctx, silo.ID, time.Time{}, time.Time{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2, "zero bounds cover all recorded history")
	require.True(t, list[0].Timestamp.After(list[1].Timestamp), "newest first")
}
