package policy

import (
	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/models"
)

// Policy evaluates grain-storage rules: per-quantity status levels for
// assessment snapshots, risk bands for time-weighted exposure reporting,
// and the aeration recommendation. Status and band thresholds are
// independent tables; changing one never shifts the other.
type Policy struct {
	Status StatusThresholds

	bandHumidity    config.BandRule
	bandTemperature config.BandRule
	bandCO2         config.BandRule

	airHumLowMax float64
	airHumMedMax float64
	airLow       config.AerationTier
	airMed       config.AerationTier
	airHigh      config.AerationTier
}

// StatusThresholds are the cut-offs of the four-level status scale.
// Humidity and temperature use separate boundary semantics, matching
// the agronomic tables they were lifted from.
type StatusThresholds struct {
	HumOkMax     float64
	HumAdmMax    float64
	HumCritMin   float64
	TempOkMax    float64
	TempAlertMin float64
	TempCritMin  float64
	TempVHighMin float64
}

// New builds a Policy from the configured threshold tables.
func New(cfg config.PolicyConfig) *Policy {
	return &Policy{
		Status: StatusThresholds{
			HumOkMax:     cfg.HumOkMax,
			HumAdmMax:    cfg.HumAdmMax,
			HumCritMin:   cfg.HumCritMin,
			TempOkMax:    cfg.TempOkMax,
			TempAlertMin: cfg.TempAlertMin,
			TempCritMin:  cfg.TempCritMin,
			TempVHighMin: cfg.TempVHighMin,
		},
		bandHumidity:    cfg.BandHumidity,
		bandTemperature: cfg.BandTemperature,
		bandCO2:         cfg.BandCO2,
		airHumLowMax:    cfg.AirHumLowMax,
		airHumMedMax:    cfg.AirHumMedMax,
		airLow:          cfg.AirLow,
		airMed:          cfg.AirMed,
		airHigh:         cfg.AirHigh,
	}
}

// HumidityStatus classifies grain humidity (%) on the four-level scale.
func (p *Policy) HumidityStatus(v float64) string {
	switch {
	case v < p.Status.HumOkMax:
		return models.StatusOK
	case v <= p.Status.HumAdmMax:
		return models.StatusWatch
	case v <= p.Status.HumCritMin:
		return models.StatusAlert
	default:
		return models.StatusCritical
	}
}

// TemperatureStatus classifies grain-mass temperature (°C) on the
// four-level scale.
func (p *Policy) TemperatureStatus(v float64) string {
	switch {
	case v < p.Status.TempOkMax:
		return models.StatusOK
	case v < p.Status.TempAlertMin:
		return models.StatusWatch
	case v <= p.Status.TempCritMin:
		return models.StatusAlert
	default:
		return models.StatusCritical
	}
}

// ClassifyBand maps a single value of the given sensor type into its risk
// band. Pressure has no risk bands and always classifies as normal; the
// caution band is a reporting category only and is never produced here.
func (p *Policy) ClassifyBand(sensorType models.SensorType, v float64) models.Band {
	switch sensorType {
	case models.Humidity:
		switch {
		case v <= p.bandHumidity.IdealMax:
			return models.BandNormal
		case v <= p.bandHumidity.ModerateMax:
			return models.BandWarning
		default:
			return models.BandCritical
		}
	case models.Temperature:
		switch {
		case v < p.bandTemperature.ModerateMin:
			return models.BandNormal
		case v <= p.bandTemperature.ModerateMax:
			return models.BandWarning
		case v >= p.bandTemperature.CriticalMin:
			return models.BandCritical
		default:
			return models.BandNormal
		}
	case models.CO2:
		switch {
		case v >= p.bandCO2.IdealMin && v <= p.bandCO2.IdealMax:
			return models.BandNormal
		case v >= p.bandCO2.ModerateMin && v <= p.bandCO2.ModerateMax:
			return models.BandWarning
		case v >= p.bandCO2.CriticalMin:
			return models.BandCritical
		default:
			return models.BandNormal
		}
	default:
		return models.BandNormal
	}
}

// AerationAdvice maps grain humidity into one of three airflow tiers.
// A nil humidity yields the zero range and an explicit no-recommendation
// label so downstream consumers never confuse "none" with "off".
func (p *Policy) AerationAdvice(hum *float64) models.Aeration {
	if hum == nil {
		return models.Aeration{
			RecommendedFlow: [2]float64{0, 0},
			Label:           "Sem recomendação (umidade indisponível)",
		}
	}

	switch {
	case *hum < p.airHumLowMax:
		return models.Aeration{
			RecommendedFlow: [2]float64{p.airLow.Min, p.airLow.Max},
			Label:           "Aeração leve",
		}
	case *hum <= p.airHumMedMax:
		return models.Aeration{
			RecommendedFlow: [2]float64{p.airMed.Min, p.airMed.Max},
			Label:           "Aeração moderada",
		}
	default:
		return models.Aeration{
			RecommendedFlow: [2]float64{p.airHigh.Min, p.airHigh.Max},
			Label:           "Aeração intensiva",
		}
	}
}
