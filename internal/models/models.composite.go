// FilePath: internal/models/models.composite.go
package models

// SyncReport is the consolidated outcome of one full ingestion cycle.
// Pressure is always present and zero-valued when no field is mapped;
// CO2 only appears once a field mapping is configured.
type SyncReport struct {
	Temperature SyncTypeResult  `json:"temperature"`
	Humidity    SyncTypeResult  `json:"humidity"`
	Pressure    SyncTypeResult  `json:"pressure"`
	CO2         *SyncTypeResult `json:"co2,omitempty"`
	Assessment  *Assessment     `json:"assessment"`
}
