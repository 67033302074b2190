// FilePath: internal/models/models.reading.go
package models

import "time"

// Reading represents a single cleaned, accepted measurement.
// Readings are insert-only and unique per (sensor_id, timestamp).
type Reading struct {
	ID        string    `json:"id" db:"id"`
	SensorID  string    `json:"sensor_id" db:"sensor_id"`
	Value     float64   `json:"value" db:"value"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// Point is the compact (t, v) pair used by the analysis endpoints
type Point struct {
	T time.Time `json:"t" db:"timestamp"`
	V float64   `json:"v" db:"value"`
}

// LastPoint is the most recent accepted observation of a sync pass
type LastPoint struct {
	TS    time.Time `json:"ts"`
	Value float64   `json:"value"`
}

// SyncTypeResult summarizes one ingestion pass for a single sensor type
type SyncTypeResult struct {
	Type     string     `json:"type"`
	Received int        `json:"received"`
	Stored   int        `json:"stored"`
	Dropped  int        `json:"dropped"`
	Last     *LastPoint `json:"last"`
}
