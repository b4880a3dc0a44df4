// Package pipeline wires the zonal-temperature stages together: equal
// area partition, per-zone reference-station combines, the global
// combine, and the annual-anomaly conversion.
package pipeline

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ClimateCodeFoundation/zontem/internal/anomaly"
	"github.com/ClimateCodeFoundation/zontem/internal/combine"
	"github.com/ClimateCodeFoundation/zontem/internal/models"
	"github.com/ClimateCodeFoundation/zontem/internal/zones"
)

// Config is the complete tunable surface of the computation.
type Config struct {
	ZoneCount     int
	BaselineStart int
	BaselineEnd   int
}

// EmptyZoneSetError reports a run in which no zone received any station,
// leaving nothing to combine globally.
type EmptyZoneSetError struct {
	ZoneCount int
}

func (e *EmptyZoneSetError) Error() string {
	return fmt.Sprintf("all %d zones are empty, nothing to combine", e.ZoneCount)
}

// DroppedSeries records a series skipped during a combine because it had
// no overlap with the running combination.
type DroppedSeries struct {
	ZoneIndex int    `json:"zone_index"` // -1 for the global combine
	Label     string `json:"label"`
}

// Result carries the terminal annual series along with the intermediate
// records a caller may want for reporting or diagnostics.
type Result struct {
	Zones        []models.Zone
	ZoneRecords  []models.CombinedRecord
	GlobalRecord models.CombinedRecord
	Annual       models.AnnualAnomalySeries
	Dropped      []DroppedSeries
}

// Run executes the whole computation over the given stations. It is a
// pure function of (stations, cfg); inputs are read-only and every
// intermediate record is freshly allocated.
func Run(stations []models.StationRecord, cfg Config) (*Result, error) {
	zoneSet, err := zones.Partition(cfg.ZoneCount, stations)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.StationRecord, len(stations))
	for _, st := range stations {
		byID[st.ID] = st
	}

	result := &Result{
		Zones:       zoneSet,
		ZoneRecords: make([]models.CombinedRecord, len(zoneSet)),
	}

	// Zone combines only read their own station subset, so they run in
	// parallel and join before the global combine.
	type zoneOutcome struct {
		record  models.CombinedRecord
		dropped []*combine.NoOverlapError
	}
	outcomes := make([]zoneOutcome, len(zoneSet))

	var wg sync.WaitGroup
	for i, zone := range zoneSet {
		if zone.Empty() {
			continue
		}
		wg.Add(1)
		go func(i int, zone models.Zone) {
			defer wg.Done()
			rec, dropped, err := combine.Combine(zoneInputs(zone, byID))
			if err != nil {
				// Unreachable for a non-empty zone; Combine only fails
				// on an empty input list.
				logrus.WithError(err).WithField("zone", i).Error("zone combine failed")
				return
			}
			outcomes[i] = zoneOutcome{record: rec, dropped: dropped}
		}(i, zone)
	}
	wg.Wait()

	var globalInputs []combine.Input
	for i, zone := range zoneSet {
		result.ZoneRecords[i] = outcomes[i].record
		for _, d := range outcomes[i].dropped {
			logrus.WithFields(logrus.Fields{
				"zone":   i,
				"series": d.Label,
			}).Warn("series dropped: no overlap with zone combination")
			result.Dropped = append(result.Dropped, DroppedSeries{ZoneIndex: i, Label: d.Label})
		}
		if zone.Empty() {
			continue
		}
		globalInputs = append(globalInputs, combine.Input{
			Label:  fmt.Sprintf("zone-%02d", i),
			Series: outcomes[i].record.Values,
		})
	}

	if len(globalInputs) == 0 {
		return nil, &EmptyZoneSetError{ZoneCount: cfg.ZoneCount}
	}

	global, droppedZones, err := combine.Combine(globalInputs)
	if err != nil {
		return nil, fmt.Errorf("global combine: %w", err)
	}
	for _, d := range droppedZones {
		logrus.WithField("series", d.Label).Warn("zone dropped: no overlap with global combination")
		result.Dropped = append(result.Dropped, DroppedSeries{ZoneIndex: -1, Label: d.Label})
	}
	result.GlobalRecord = global

	annual, err := anomaly.ToAnnualAnomalies(global.Values, cfg.BaselineStart, cfg.BaselineEnd)
	if err != nil {
		return nil, fmt.Errorf("annual anomalies: %w", err)
	}
	result.Annual = annual

	return result, nil
}

// zoneInputs assembles a zone's member series in the canonical combine
// order: descending count of observed months, ties broken by ascending
// station id. The ordering is part of the contract; the merge is not
// order-invariant and results must reproduce across runs.
func zoneInputs(zone models.Zone, byID map[string]models.StationRecord) []combine.Input {
	members := make([]models.StationRecord, 0, len(zone.StationIDs))
	for _, id := range zone.StationIDs {
		members = append(members, byID[id])
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Series.Len() != members[j].Series.Len() {
			return members[i].Series.Len() > members[j].Series.Len()
		}
		return members[i].ID < members[j].ID
	})

	inputs := make([]combine.Input, len(members))
	for i, st := range members {
		inputs[i] = combine.Input{Label: st.ID, Series: st.Series}
	}
	return inputs
}
