// FilePath: internal/models/models.sensor.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSON is a wrapper around map[string]interface{} for database storage
type JSON map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &j)
}

type SensorType string

const (
	Temperature SensorType = "temperature"
	Humidity    SensorType = "humidity"
	Pressure    SensorType = "pressure"
	CO2         SensorType = "co2"
)

// ValidSensorType reports whether t names a known measurement channel.
func ValidSensorType(t SensorType) bool {
	switch t {
	case Temperature, Humidity, Pressure, CO2:
		return true
	}
	return false
}

// DefaultUnit returns the display unit for a sensor type.
func DefaultUnit(t SensorType) string {
	switch t {
	case Temperature:
		return "°C"
	case Humidity:
		return "%"
	case Pressure:
		return "hPa"
	case CO2:
		return "ppm"
	}
	return ""
}

type Sensor struct {
	ID            string     `json:"id" db:"id"`
	SiloID        string     `json:"silo_id" db:"silo_id"`
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description" db:"description"`
	Type          SensorType `json:"type" db:"type"`
	Unit          string     `json:"unit" db:"unit"`
	FieldIndex    int        `json:"field_index" db:"field_index"`
	LastValue     float64    `json:"last_value" db:"last_value"`
	LastValueTime time.Time  `json:"last_value_time" db:"last_value_time"`
	Status        string     `json:"status" db:"status"`
	Metadata      JSON       `json:"metadata" db:"metadata"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}
