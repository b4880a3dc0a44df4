// Package ghcn locates, downloads and parses GHCN-M v3 datasets. It is
// the input adapter for the pipeline: everything it produces is an
// ordered collection of station records with monthly series.
package ghcn

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ClimateCodeFoundation/zontem/internal/models"
)

// elementScale maps a GHCN element code to the multiplier that converts
// the file's integer values to degrees Celsius.
var elementScale = map[string]float64{
	"TAVG": 0.01,
	"TMIN": 0.01,
	"TMAX": 0.01,
}

// rejectFlags are the quality-control flags whose presence discards a
// value. The QCA dataset should not contain any of these, but the
// unadjusted files do.
const rejectFlags = "DKOSTW"

const missingValue = -9999

// stationMeta is the slice of the .inv metadata the pipeline needs.
type stationMeta struct {
	Name      string
	Latitude  float64
	Longitude float64
	Elevation float64
}

// ReadStations parses a GHCN-M v3 .dat file together with its .inv
// metadata companion (same path with the extension swapped) and returns
// one StationRecord per station, in file order. Years before baseYear
// are discarded. Stations with no surviving observations, or without
// metadata, are skipped.
func ReadStations(datPath string, baseYear int) ([]models.StationRecord, error) {
	invPath := strings.TrimSuffix(datPath, ".dat") + ".inv"
	meta, err := readInventory(invPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(datPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", datPath, err)
	}
	defer f.Close()

	stations, err := parseData(f, meta, baseYear)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", datPath, err)
	}

	logrus.WithFields(logrus.Fields{
		"dataset":  datPath,
		"stations": len(stations),
	}).Info("GHCN-M dataset loaded")
	return stations, nil
}

// parseData reads .dat lines grouped by the 11-character station id.
// Each line holds one station-year: id, year, element code, then twelve
// 8-character value+flag groups.
func parseData(r io.Reader, meta map[string]stationMeta, baseYear int) ([]models.StationRecord, error) {
	var stations []models.StationRecord
	var current *models.StationRecord
	var skipID string

	flush := func() {
		if current != nil && current.Series.Len() > 0 {
			stations = append(stations, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) < 115 {
			return nil, fmt.Errorf("line %d: truncated record (%d chars)", lineNo, len(line))
		}

		id := line[0:11]
		if id == skipID {
			continue
		}
		if current == nil || current.ID != id {
			flush()
			m, ok := meta[id]
			if !ok {
				logrus.WithField("station", id).Warn("station has no inventory metadata, skipping")
				skipID = id
				continue
			}
			current = &models.StationRecord{
				ID:        id,
				Name:      m.Name,
				Latitude:  m.Latitude,
				Longitude: m.Longitude,
				Elevation: m.Elevation,
				Series:    make(models.TimeSeries),
			}
		}

		year, err := strconv.Atoi(strings.TrimSpace(line[11:15]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad year field %q: %w", lineNo, line[11:15], err)
		}
		if year < baseYear {
			continue
		}

		element := line[15:19]
		scale, ok := elementScale[element]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown element %q", lineNo, element)
		}

		for m := 0; m < 12; m++ {
			group := line[19+m*8 : 27+m*8]
			v, ok, err := parseValue(group, scale)
			if err != nil {
				return nil, fmt.Errorf("line %d month %d: %w", lineNo, m+1, err)
			}
			if ok {
				current.Series[models.YearMonth{Year: year, Month: m + 1}] = v
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return stations, nil
}

// parseValue converts one 8-character group: a 5-character integer value
// followed by measurement, quality and source flags. Values flagged by
// quality control, or equal to the -9999 sentinel, count as missing.
func parseValue(group string, scale float64) (float64, bool, error) {
	raw, err := strconv.Atoi(strings.TrimSpace(group[0:5]))
	if err != nil {
		return 0, false, fmt.Errorf("bad value field %q: %w", group[0:5], err)
	}
	qflag := group[6]
	if raw == missingValue || strings.ContainsRune(rejectFlags, rune(qflag)) {
		return 0, false, nil
	}
	return float64(raw) * scale, true, nil
}

// readInventory parses a GHCN-M v3 .inv file into a metadata map keyed
// by station id. Field positions follow the v3 README layout.
func readInventory(path string) (map[string]stationMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory %s: %w", path, err)
	}
	defer f.Close()

	meta := make(map[string]stationMeta)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) < 68 {
			return nil, fmt.Errorf("inventory line %d: truncated record (%d chars)", lineNo, len(line))
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(line[12:20]), 64)
		if err != nil {
			return nil, fmt.Errorf("inventory line %d: bad latitude %q: %w", lineNo, line[12:20], err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(line[21:30]), 64)
		if err != nil {
			return nil, fmt.Errorf("inventory line %d: bad longitude %q: %w", lineNo, line[21:30], err)
		}
		elev, err := strconv.ParseFloat(strings.TrimSpace(line[31:37]), 64)
		if err != nil {
			return nil, fmt.Errorf("inventory line %d: bad elevation %q: %w", lineNo, line[31:37], err)
		}

		meta[line[0:11]] = stationMeta{
			Name:      strings.TrimSpace(line[38:68]),
			Latitude:  lat,
			Longitude: lon,
			Elevation: elev,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return meta, nil
}
