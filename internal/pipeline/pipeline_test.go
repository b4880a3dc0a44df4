package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/ClimateCodeFoundation/zontem/internal/models"
	"github.com/ClimateCodeFoundation/zontem/internal/zones"
)

func coverYears(value float64, years ...int) models.TimeSeries {
	ts := make(models.TimeSeries)
	for _, y := range years {
		for m := 1; m <= 12; m++ {
			ts[models.YearMonth{Year: y, Month: m}] = value
		}
	}
	return ts
}

func TestRunTwoStationScenario(t *testing.T) {
	// Station A covers years 1-2 at 10, station B covers years 2-3 at
	// 12. The year-2 overlap gives bias -2, B is corrected to 10, and
	// the combined record is 10 across years 1-3. With a baseline over
	// those years every annual anomaly is exactly 0.
	stations := []models.StationRecord{
		{ID: "A", Latitude: 10, Series: coverYears(10, 1, 2)},
		{ID: "B", Latitude: 12, Series: coverYears(12, 2, 3)},
	}

	result, err := Run(stations, Config{ZoneCount: 1, BaselineStart: 1, BaselineEnd: 3})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Dropped) != 0 {
		t.Errorf("unexpected dropped series: %v", result.Dropped)
	}
	if got := result.GlobalRecord.Values.Len(); got != 36 {
		t.Errorf("global record covers %d months, want 36", got)
	}
	for ym, v := range result.GlobalRecord.Values {
		if math.Abs(v-10) > 1e-12 {
			t.Errorf("global value at %v = %v, want 10", ym, v)
		}
	}

	if len(result.Annual) != 3 {
		t.Fatalf("expected 3 annual anomalies, got %d", len(result.Annual))
	}
	for i, ann := range result.Annual {
		if ann.Year != i+1 {
			t.Errorf("annual[%d].Year = %d, want %d", i, ann.Year, i+1)
		}
		if math.Abs(ann.Anomaly) > 1e-12 {
			t.Errorf("annual[%d].Anomaly = %v, want 0", i, ann.Anomaly)
		}
	}
}

func TestRunToleratesEmptyZones(t *testing.T) {
	// One populated band out of 20; every other zone is empty and must
	// be silently omitted from the global combine.
	stations := []models.StationRecord{
		{ID: "EQ", Latitude: 1, Series: coverYears(15, 1950, 1951)},
	}

	result, err := Run(stations, Config{ZoneCount: 20, BaselineStart: 1950, BaselineEnd: 1951})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Zones) != 20 {
		t.Fatalf("expected 20 zones, got %d", len(result.Zones))
	}
	if result.GlobalRecord.Values.Len() != 24 {
		t.Errorf("global record covers %d months, want 24", result.GlobalRecord.Values.Len())
	}
}

func TestRunAllZonesEmptyFatal(t *testing.T) {
	_, err := Run(nil, Config{ZoneCount: 20, BaselineStart: 1951, BaselineEnd: 1980})
	if err == nil {
		t.Fatal("expected an error with no stations")
	}
	var emptyErr *EmptyZoneSetError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("got %T, want *EmptyZoneSetError", err)
	}
}

func TestRunInvalidZoneCount(t *testing.T) {
	_, err := Run(nil, Config{ZoneCount: 0, BaselineStart: 1951, BaselineEnd: 1980})
	var cfgErr *zones.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want *zones.ConfigurationError", err)
	}
}

func TestRunRecordsDroppedSeries(t *testing.T) {
	// C shares the zone with A and B but no observation months, so it
	// cannot be bias-corrected and must be reported, not silently lost.
	stations := []models.StationRecord{
		{ID: "A", Latitude: 0, Series: coverYears(10, 1950, 1951)},
		{ID: "B", Latitude: 1, Series: coverYears(11, 1951)},
		{ID: "C", Latitude: 2, Series: coverYears(9, 1990)},
	}

	result, err := Run(stations, Config{ZoneCount: 1, BaselineStart: 1950, BaselineEnd: 1951})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Dropped) != 1 {
		t.Fatalf("expected 1 dropped series, got %v", result.Dropped)
	}
	if result.Dropped[0].Label != "C" || result.Dropped[0].ZoneIndex != 0 {
		t.Errorf("dropped = %+v, want station C in zone 0", result.Dropped[0])
	}
}

func TestRunDeterministicAcrossRuns(t *testing.T) {
	stations := []models.StationRecord{
		{ID: "A", Latitude: -40, Series: coverYears(8, 1950, 1951, 1952)},
		{ID: "B", Latitude: -42, Series: coverYears(12, 1951, 1952)},
		{ID: "C", Latitude: -41, Series: coverYears(10, 1952, 1953)},
		{ID: "D", Latitude: 35, Series: coverYears(20, 1950, 1951, 1952, 1953)},
	}
	cfg := Config{ZoneCount: 4, BaselineStart: 1950, BaselineEnd: 1953}

	first, err := Run(stations, cfg)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := Run(stations, cfg)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if len(first.Annual) != len(second.Annual) {
		t.Fatalf("annual lengths differ: %d vs %d", len(first.Annual), len(second.Annual))
	}
	for i := range first.Annual {
		if first.Annual[i] != second.Annual[i] {
			t.Errorf("annual[%d] differs across runs: %+v vs %+v",
				i, first.Annual[i], second.Annual[i])
		}
	}
}
