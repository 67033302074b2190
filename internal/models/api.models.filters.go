package models

// SensorFilters defines the available filter options for sensors
type SensorFilters struct {
	SiloID string     `json:"silo_id"`
	Type   SensorType `json:"type"`
	Status string     `json:"status"`
}
