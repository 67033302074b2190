// FilePath: internal/models/models.analysis.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Band is the risk category used for time-weighted exposure reporting
type Band string

const (
	BandNormal   Band = "normal"
	BandCaution  Band = "caution"
	BandWarning  Band = "warning"
	BandCritical Band = "critical"
)

// Granularity selects the bucket width of a resampled aggregation
type Granularity string

const (
	GranMinute Granularity = "minute"
	GranHour   Granularity = "hour"
	GranDay    Granularity = "day"
)

// ValidGranularity reports whether g names a known bucket width.
func ValidGranularity(g Granularity) bool {
	switch g {
	case GranMinute, GranHour, GranDay:
		return true
	}
	return false
}

// Duration returns the bucket width of the granularity.
func (g Granularity) Duration() time.Duration {
	switch g {
	case GranMinute:
		return time.Minute
	case GranDay:
		return 24 * time.Hour
	}
	return time.Hour
}

// AlignGran selects the resampling step of relative-time alignment
type AlignGran string

const (
	Align5Min AlignGran = "5min"
	AlignHour AlignGran = "hour"
)

// ValidAlignGran reports whether g names a known alignment step.
func ValidAlignGran(g AlignGran) bool {
	return g == Align5Min || g == AlignHour
}

// Step returns the bin width of the alignment granularity.
func (g AlignGran) Step() time.Duration {
	if g == Align5Min {
		return 5 * time.Minute
	}
	return time.Hour
}

// Series is the ordered reading sequence of one sensor type
type Series struct {
	SensorType SensorType `json:"sensorType"`
	Points     []Point    `json:"points"`
}

// SummaryStats holds descriptive statistics over one series
type SummaryStats struct {
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stddev"`
}

// BandBreakdown accumulates time-weighted exposure per risk band, in ms
type BandBreakdown struct {
	NormalMS   int64 `json:"normal_ms"`
	CautionMS  int64 `json:"caution_ms"`
	WarningMS  int64 `json:"warning_ms"`
	CriticalMS int64 `json:"critical_ms"`
}

// AnalysisSummary combines statistics, band exposure and the latest point.
// Delta24 is the value change over the trailing 24 hours, nil when the
// series spans less than 24 hours.
type AnalysisSummary struct {
	Stats   SummaryStats  `json:"stats"`
	Bands   BandBreakdown `json:"bands"`
	Last    Point         `json:"last"`
	Delta24 *float64      `json:"delta24"`
}

// AggregateBucket is one resampled bucket. MA is the trailing moving
// average of bucket means, nil when no moving average was requested.
type AggregateBucket struct {
	T     time.Time `json:"t"`
	Avg   float64   `json:"avg"`
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Count int       `json:"count"`
	MA    *float64  `json:"ma"`
}

// AggregateSeries is the bucketed form of one series
type AggregateSeries struct {
	SensorType SensorType        `json:"sensorType"`
	Gran       Granularity       `json:"gran"`
	Buckets    []AggregateBucket `json:"buckets"`
}

// ScatterPoint pairs simultaneous temperature (x) and humidity (y) means
type ScatterPoint struct {
	X float64   `json:"x"`
	Y float64   `json:"y"`
	T time.Time `json:"t"`
}

// ScatterSeries holds the inner-joined temperature/humidity pairs
type ScatterSeries struct {
	Pairs []ScatterPoint `json:"pairs"`
}

// MonthlyRow is one month row of the multi-year matrix. Cells maps year
// to the monthly mean; a nil cell marks a month without data.
type MonthlyRow struct {
	Month int
	Label string
	Cells map[int]*float64
}

// MarshalJSON flattens the year cells beside month and label so each row
// serializes as {"month":1,"label":"Jan","2023":12.3,"2024":null}.
func (r MonthlyRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"month":%d,"label":%q`, r.Month, r.Label)
	years := make([]int, 0, len(r.Cells))
	for y := range r.Cells {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		cell, err := json.Marshal(r.Cells[y])
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, `,"%d":%s`, y, cell)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MonthlyMatrix is the fixed 12-row × N-year comparison table
type MonthlyMatrix struct {
	Years []int        `json:"years"`
	Rows  []MonthlyRow `json:"rows"`
}

// AlignedValues is one date's series re-expressed on the shared relative axis
type AlignedValues struct {
	Label  string     `json:"label"`
	Values []*float64 `json:"values"`
}

// AlignedSeries overlays several dates on one shared relative-hour axis
type AlignedSeries struct {
	SensorType SensorType      `json:"sensorType"`
	RelHours   []float64       `json:"relHours"`
	Series     []AlignedValues `json:"series"`
}

// SeasonalBand bounds the cross-year variability of a seasonal profile
type SeasonalBand struct {
	Lower []*float64 `json:"lower"`
	Upper []*float64 `json:"upper"`
}

// SeasonalProfile overlays the same (month, day) anchor across years
type SeasonalProfile struct {
	SensorType SensorType      `json:"sensorType"`
	Month      int             `json:"month"`
	Day        int             `json:"day"`
	RelHours   []float64       `json:"relHours"`
	Series     []AlignedValues `json:"series"`
	Mean       []*float64      `json:"mean"`
	Band       *SeasonalBand   `json:"band,omitempty"`
}
