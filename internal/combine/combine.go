// Package combine implements the reference station method: it merges
// several overlapping, differently-biased monthly series into a single
// representative record, anchoring each new series to the running
// combination.
package combine

import (
	"errors"
	"fmt"

	"github.com/ClimateCodeFoundation/zontem/internal/models"
)

// ErrNoInput is returned when Combine is called with nothing to merge.
var ErrNoInput = errors.New("combine: no input series")

// NoOverlapError reports a series that shares no observed month with the
// running combination and therefore cannot be bias-corrected against it.
type NoOverlapError struct {
	Label string
}

func (e *NoOverlapError) Error() string {
	return fmt.Sprintf("series %q has no overlap with the running combination", e.Label)
}

// Input is one labelled series to merge. The label carries through to
// drop reports so a skipped series can be traced back to its station or
// zone.
type Input struct {
	Label  string
	Series models.TimeSeries
}

// Combine merges the inputs in order into one combined record. The first
// series seeds the combination; each subsequent series has its mean
// offset over the shared months subtracted before being folded in, so a
// constant inter-series bias cancels exactly. Input order is significant:
// the merge is not order-invariant, and callers are expected to pass a
// deterministic ordering.
//
// A series with no months in common with the running combination is
// skipped rather than merged uncorrected; every skip is reported in the
// returned NoOverlapError slice. Inputs are never mutated.
func Combine(inputs []Input) (models.CombinedRecord, []*NoOverlapError, error) {
	if len(inputs) == 0 {
		return models.CombinedRecord{}, nil, ErrNoInput
	}

	combined := models.NewCombinedRecord()
	for ym, v := range inputs[0].Series {
		combined.Values[ym] = v
		combined.Support[ym] = 1
	}

	var dropped []*NoOverlapError
	for _, in := range inputs[1:] {
		bias, overlap := biasOverlap(combined.Values, in.Series)
		if overlap == 0 {
			dropped = append(dropped, &NoOverlapError{Label: in.Label})
			continue
		}

		for ym, v := range in.Series {
			corrected := v + bias
			if count, ok := combined.Support[ym]; ok {
				// Running mean over every series contributing so far.
				combined.Values[ym] = (combined.Values[ym]*float64(count) + corrected) / float64(count+1)
				combined.Support[ym] = count + 1
			} else {
				combined.Values[ym] = corrected
				combined.Support[ym] = 1
			}
		}
	}

	return combined, dropped, nil
}

// biasOverlap computes the mean difference composite-minus-new over the
// months observed in both, along with the overlap size. Positive bias
// means the composite runs warmer than the new series. The overlap is
// summed in chronological order so the float accumulation is the same
// on every run.
func biasOverlap(composite, next models.TimeSeries) (float64, int) {
	var sum float64
	overlap := 0
	for _, ym := range next.Months() {
		cv, ok := composite[ym]
		if !ok {
			continue
		}
		sum += cv - next[ym]
		overlap++
	}
	if overlap == 0 {
		return 0, 0
	}
	return sum / float64(overlap), overlap
}
