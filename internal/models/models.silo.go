// FilePath: internal/models/models.silo.go
package models

import "time"

type Silo struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Location      string    `json:"location" db:"location"`
	Latitude      float64   `json:"latitude" db:"latitude"`
	Longitude     float64   `json:"longitude" db:"longitude"`
	GrainType     string    `json:"grain_type" db:"grain_type"`
	CapacityTons  float64   `json:"capacity_tons" db:"capacity_tons"`
	ChannelID     string    `json:"channel_id" db:"channel_id"`
	ReadAPIKey    string    `json:"-" db:"read_api_key"`
	Timezone      string    `json:"timezone" db:"timezone"`
	LastSyncAt    time.Time `json:"last_sync_at" db:"last_sync_at"`
	LastReadingAt time.Time `json:"last_reading_at" db:"last_reading_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
