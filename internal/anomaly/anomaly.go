// Package anomaly converts an absolute monthly temperature record into
// annual anomalies against a fixed baseline climatology.
package anomaly

import (
	"fmt"
	"sort"

	"github.com/ClimateCodeFoundation/zontem/internal/models"
)

// InsufficientBaselineError reports a calendar month with no
// observations anywhere in the baseline window, which leaves its
// climatological mean undefined.
type InsufficientBaselineError struct {
	Month         int
	BaselineStart int
	BaselineEnd   int
}

func (e *InsufficientBaselineError) Error() string {
	return fmt.Sprintf("no observations for month %d in baseline %d-%d",
		e.Month, e.BaselineStart, e.BaselineEnd)
}

// Climatology computes the per-calendar-month mean of record over the
// baseline years [start, end]. Every month must be observed at least
// once inside the window.
func Climatology(record models.TimeSeries, start, end int) ([12]float64, error) {
	var sums [12]float64
	var counts [12]int
	for _, ym := range record.Months() {
		if ym.Year < start || ym.Year > end {
			continue
		}
		sums[ym.Month-1] += record[ym]
		counts[ym.Month-1]++
	}

	var clim [12]float64
	for m := 0; m < 12; m++ {
		if counts[m] == 0 {
			return clim, &InsufficientBaselineError{
				Month:         m + 1,
				BaselineStart: start,
				BaselineEnd:   end,
			}
		}
		clim[m] = sums[m] / float64(counts[m])
	}
	return clim, nil
}

// ToAnnualAnomalies turns a monthly record into annual anomalies. A year
// appears in the output only when all twelve monthly anomalies exist;
// partial years are excluded outright, never interpolated. Output is
// sorted ascending by year.
func ToAnnualAnomalies(record models.TimeSeries, baselineStart, baselineEnd int) (models.AnnualAnomalySeries, error) {
	clim, err := Climatology(record, baselineStart, baselineEnd)
	if err != nil {
		return nil, err
	}

	// Chronological iteration keeps the per-year sums bit-identical
	// between runs.
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, ym := range record.Months() {
		sums[ym.Year] += record[ym] - clim[ym.Month-1]
		counts[ym.Year]++
	}

	var out models.AnnualAnomalySeries
	for year, n := range counts {
		if n != 12 {
			continue
		}
		out = append(out, models.AnnualAnomaly{Year: year, Anomaly: sums[year] / 12})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}
