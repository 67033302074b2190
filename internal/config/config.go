package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Telemetry  TelemetryConfig
	Ingest     IngestConfig
	Policy     PolicyConfig
	Analytics  AnalyticsConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	TimescaleDB PostgresConfig `mapstructure:"timescaledb"`
	AppDB       PostgresConfig `mapstructure:"postgres_app"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TelemetryConfig configures the upstream channel reader
type TelemetryConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	ChannelID  string        `mapstructure:"channel_id"`
	ReadAPIKey string        `mapstructure:"read_api_key"`
	Results    int           `mapstructure:"results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// SensorRule carries the per-type cleaning parameters of the ingestion
// pipeline. Field is the upstream channel field index, 0 disables the type.
type SensorRule struct {
	Field    int     `mapstructure:"field"`
	RangeMin float64 `mapstructure:"range_min"`
	RangeMax float64 `mapstructure:"range_max"`
	Spike    float64 `mapstructure:"spike"`
}

// IngestConfig configures the ingestion pipeline and its scheduler
type IngestConfig struct {
	SiloID        string        `mapstructure:"silo_id"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetentionDays int           `mapstructure:"retention_days"`
	Temperature   SensorRule    `mapstructure:"temperature"`
	Humidity      SensorRule    `mapstructure:"humidity"`
	Pressure      SensorRule    `mapstructure:"pressure"`
	CO2           SensorRule    `mapstructure:"co2"`
}

// BandRule carries the band-classifier thresholds of one sensor type.
// Each type reads only the fields its classification rule needs.
type BandRule struct {
	IdealMin    float64 `mapstructure:"ideal_min"`
	IdealMax    float64 `mapstructure:"ideal_max"`
	ModerateMin float64 `mapstructure:"moderate_min"`
	ModerateMax float64 `mapstructure:"moderate_max"`
	CriticalMin float64 `mapstructure:"critical_min"`
}

// AerationTier is one recommended airflow range in m³/min per ton
type AerationTier struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// PolicyConfig carries the two classification tables and the aeration
// tiers. Status thresholds drive the assessment snapshot; band thresholds
// drive the time-weighted exposure reporting. The two stay independent.
type PolicyConfig struct {
	HumOkMax     float64 `mapstructure:"hum_ok_max"`
	HumAdmMax    float64 `mapstructure:"hum_adm_max"`
	HumCritMin   float64 `mapstructure:"hum_crit_min"`
	TempOkMax    float64 `mapstructure:"temp_ok_max"`
	TempAlertMin float64 `mapstructure:"temp_alert_min"`
	TempCritMin  float64 `mapstructure:"temp_crit_min"`
	TempVHighMin float64 `mapstructure:"temp_vhigh_min"`

	BandHumidity    BandRule `mapstructure:"band_humidity"`
	BandTemperature BandRule `mapstructure:"band_temperature"`
	BandCO2         BandRule `mapstructure:"band_co2"`

	// Tier boundaries on grain humidity (%): low below AirHumLowMax,
	// medium up to AirHumMedMax, high above.
	AirHumLowMax float64 `mapstructure:"air_hum_low_max"`
	AirHumMedMax float64 `mapstructure:"air_hum_med_max"`

	AirLow  AerationTier `mapstructure:"air_low"`
	AirMed  AerationTier `mapstructure:"air_med"`
	AirHigh AerationTier `mapstructure:"air_high"`
}

// AnalyticsConfig carries the default and maximum result limits per query
type AnalyticsConfig struct {
	HistoryLimit    int           `mapstructure:"history_limit"`
	HistoryLimitMax int           `mapstructure:"history_limit_max"`
	AggregateLimit  int           `mapstructure:"aggregate_limit"`
	AggregateMax    int           `mapstructure:"aggregate_limit_max"`
	ScatterLimit    int           `mapstructure:"scatter_limit"`
	ScatterLimitMin int           `mapstructure:"scatter_limit_min"`
	ScatterLimitMax int           `mapstructure:"scatter_limit_max"`
	MonthlyLimit    int           `mapstructure:"monthly_limit"`
	MonthlyLimitMax int           `mapstructure:"monthly_limit_max"`
	CompareLimit    int           `mapstructure:"compare_limit"`
	CompareLimitMax int           `mapstructure:"compare_limit_max"`
	ExportLimit     int           `mapstructure:"export_limit"`
	ExportLimitMax  int           `mapstructure:"export_limit_max"`
	MAWindowMax     int           `mapstructure:"ma_window_max"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

type MonitoringConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("AGROSILO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.timescaledb.sslmode", "disable")
	viper.SetDefault("database.postgres_app.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.db", 0)

	// Telemetry defaults
	viper.SetDefault("telemetry.base_url", "https://api.thingspeak.com")
	viper.SetDefault("telemetry.results", 100)
	viper.SetDefault("telemetry.timeout", "15s")

	// Ingest defaults. Physical ranges match the DHT11/barometer envelopes,
	// field indices follow the standard channel layout.
	viper.SetDefault("ingest.poll_interval", "15s")
	viper.SetDefault("ingest.retention_days", 0)
	viper.SetDefault("ingest.temperature.field", 1)
	viper.SetDefault("ingest.temperature.range_min", -40.0)
	viper.SetDefault("ingest.temperature.range_max", 85.0)
	viper.SetDefault("ingest.temperature.spike", 10.0)
	viper.SetDefault("ingest.humidity.field", 2)
	viper.SetDefault("ingest.humidity.range_min", 0.0)
	viper.SetDefault("ingest.humidity.range_max", 100.0)
	viper.SetDefault("ingest.humidity.spike", 30.0)
	viper.SetDefault("ingest.pressure.field", 0)
	viper.SetDefault("ingest.pressure.range_min", 800.0)
	viper.SetDefault("ingest.pressure.range_max", 1100.0)
	viper.SetDefault("ingest.pressure.spike", 8.0)
	viper.SetDefault("ingest.co2.field", 0)
	viper.SetDefault("ingest.co2.range_min", 0.0)
	viper.SetDefault("ingest.co2.range_max", 10000.0)
	viper.SetDefault("ingest.co2.spike", 1000.0)

	// Policy defaults (soy storage thresholds)
	viper.SetDefault("policy.hum_ok_max", 13.0)
	viper.SetDefault("policy.hum_adm_max", 14.0)
	viper.SetDefault("policy.hum_crit_min", 16.0)
	viper.SetDefault("policy.temp_ok_max", 15.0)
	viper.SetDefault("policy.temp_alert_min", 20.0)
	viper.SetDefault("policy.temp_crit_min", 30.0)
	viper.SetDefault("policy.temp_vhigh_min", 40.0)

	viper.SetDefault("policy.band_humidity.ideal_max", 13.0)
	viper.SetDefault("policy.band_humidity.moderate_max", 16.0)
	viper.SetDefault("policy.band_temperature.moderate_min", 20.0)
	viper.SetDefault("policy.band_temperature.moderate_max", 30.0)
	viper.SetDefault("policy.band_temperature.critical_min", 40.0)
	viper.SetDefault("policy.band_co2.ideal_min", 400.0)
	viper.SetDefault("policy.band_co2.ideal_max", 600.0)
	viper.SetDefault("policy.band_co2.moderate_min", 600.0)
	viper.SetDefault("policy.band_co2.moderate_max", 1100.0)
	viper.SetDefault("policy.band_co2.critical_min", 5000.0)

	viper.SetDefault("policy.air_hum_low_max", 13.0)
	viper.SetDefault("policy.air_hum_med_max", 15.0)
	viper.SetDefault("policy.air_low.min", 0.10)
	viper.SetDefault("policy.air_low.max", 0.25)
	viper.SetDefault("policy.air_med.min", 0.25)
	viper.SetDefault("policy.air_med.max", 0.50)
	viper.SetDefault("policy.air_high.min", 0.50)
	viper.SetDefault("policy.air_high.max", 1.00)

	// Analytics defaults
	viper.SetDefault("analytics.history_limit", 20000)
	viper.SetDefault("analytics.history_limit_max", 100000)
	viper.SetDefault("analytics.aggregate_limit", 100000)
	viper.SetDefault("analytics.aggregate_limit_max", 150000)
	viper.SetDefault("analytics.scatter_limit", 50000)
	viper.SetDefault("analytics.scatter_limit_min", 100)
	viper.SetDefault("analytics.scatter_limit_max", 150000)
	viper.SetDefault("analytics.monthly_limit", 300000)
	viper.SetDefault("analytics.monthly_limit_max", 500000)
	viper.SetDefault("analytics.compare_limit", 50000)
	viper.SetDefault("analytics.compare_limit_max", 150000)
	viper.SetDefault("analytics.export_limit", 100000)
	viper.SetDefault("analytics.export_limit_max", 150000)
	viper.SetDefault("analytics.ma_window_max", 2000)
	viper.SetDefault("analytics.cache_ttl", "30s")

	// Monitoring defaults
	viper.SetDefault("monitoring.log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Database.TimescaleDB.Host == "" {
		return fmt.Errorf("timescaledb host is required")
	}
	if config.Database.AppDB.Host == "" {
		return fmt.Errorf("postgres app host is required")
	}
	if config.Ingest.SiloID == "" {
		return fmt.Errorf("ingest silo_id is required")
	}
	if config.Telemetry.ChannelID == "" || config.Telemetry.ReadAPIKey == "" {
		return fmt.Errorf("telemetry channel_id and read_api_key are required")
	}
	if config.Ingest.PollInterval <= 0 {
		return fmt.Errorf("ingest poll_interval must be positive")
	}
	return nil
}
