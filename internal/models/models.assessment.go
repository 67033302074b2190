// FilePath: internal/models/models.assessment.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Status levels used by the point-in-time assessment snapshot.
const (
	StatusOK       = "OK"
	StatusWatch    = "ATENÇÃO"
	StatusAlert    = "ALERTA"
	StatusCritical = "CRÍTICO"
	StatusNA       = "N/A"
)

// StatusSet holds the per-quantity status classification of one assessment
type StatusSet struct {
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	Pressure    string `json:"pressure"`
	CO2         string `json:"co2"`
}

// Value implements the driver.Valuer interface
func (s StatusSet) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface
func (s *StatusSet) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Aeration is the operational airflow recommendation of one assessment.
// RecommendedFlow is the [low, high] range in m³/min per ton of grain.
type Aeration struct {
	RecommendedFlow [2]float64 `json:"recommendedFlow_m3_min_ton"`
	Label           string     `json:"label"`
}

// Value implements the driver.Valuer interface
func (a Aeration) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *Aeration) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Notes is the ordered list of operational deviation notes
type Notes []string

// Value implements the driver.Valuer interface
func (n Notes) Value() (driver.Value, error) {
	if n == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(n)
}

// Scan implements the sql.Scanner interface
func (n *Notes) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, n)
}

// Assessment is the consolidated condition snapshot of a silo at one instant.
// Snapshots are upserted per (silo_id, ts): a re-run for the same reference
// timestamp overwrites the previous snapshot.
type Assessment struct {
	ID          string    `json:"id" db:"id"`
	SiloID      string    `json:"silo" db:"silo_id"`
	Timestamp   time.Time `json:"ts" db:"ts"`
	Temperature *float64  `json:"temp" db:"temperature"`
	Humidity    *float64  `json:"hum" db:"humidity"`
	Pressure    *float64  `json:"pressure" db:"pressure"`
	Status      StatusSet `json:"status" db:"status"`
	Aeration    Aeration  `json:"aeration" db:"aeration"`
	Notes       Notes     `json:"notes" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
