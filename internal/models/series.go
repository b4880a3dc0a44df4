package models

import "sort"

// YearMonth identifies a single calendar month of observation.
type YearMonth struct {
	Year  int
	Month int // 1..12
}

// Before reports whether ym is chronologically earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// TimeSeries maps observation months to temperature values. A month that
// carries no observation is simply absent from the map; missing data is
// never encoded as zero or NaN.
type TimeSeries map[YearMonth]float64

// Get returns the value at ym and whether an observation exists there.
func (ts TimeSeries) Get(ym YearMonth) (float64, bool) {
	v, ok := ts[ym]
	return v, ok
}

// Len returns the number of observed months.
func (ts TimeSeries) Len() int {
	return len(ts)
}

// Months returns the observed months in chronological order.
func (ts TimeSeries) Months() []YearMonth {
	months := make([]YearMonth, 0, len(ts))
	for ym := range ts {
		months = append(months, ym)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Before(months[j])
	})
	return months
}

// Clone returns an independent copy of the series.
func (ts TimeSeries) Clone() TimeSeries {
	out := make(TimeSeries, len(ts))
	for ym, v := range ts {
		out[ym] = v
	}
	return out
}

// StationRecord is a single station's monthly temperature series together
// with the metadata the pipeline needs to place it on the globe.
type StationRecord struct {
	ID        string
	Name      string
	Latitude  float64 // degrees, [-90, 90]
	Longitude float64 // degrees
	Elevation float64 // metres
	Series    TimeSeries
}

// Zone is one equal-area latitude band of the globe.
type Zone struct {
	Index      int
	LowerLat   float64
	UpperLat   float64
	StationIDs []string
}

// Empty reports whether no station fell into the zone.
func (z Zone) Empty() bool {
	return len(z.StationIDs) == 0
}

// CombinedRecord is the output of a reference-station combine: merged
// values plus, for diagnostics, the number of source series contributing
// to each month.
type CombinedRecord struct {
	Values  TimeSeries
	Support map[YearMonth]int
}

// NewCombinedRecord returns an empty combined record.
func NewCombinedRecord() CombinedRecord {
	return CombinedRecord{
		Values:  make(TimeSeries),
		Support: make(map[YearMonth]int),
	}
}

// Empty reports whether the record has no observed months at all.
func (c CombinedRecord) Empty() bool {
	return len(c.Values) == 0
}

// AnnualAnomaly is one year's global temperature anomaly.
type AnnualAnomaly struct {
	Year    int
	Anomaly float64
}

// AnnualAnomalySeries is the terminal artifact of a run: one entry per
// year for which all twelve monthly anomalies were defined, in strictly
// ascending year order.
type AnnualAnomalySeries []AnnualAnomaly
