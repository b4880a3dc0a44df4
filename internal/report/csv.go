package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/ClimateCodeFoundation/zontem/internal/models"
)

// RenderCSV serializes the annual anomaly series as year,anomaly rows in
// ascending year order.
func RenderCSV(series models.AnnualAnomalySeries) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	for _, ann := range series {
		row := []string{
			strconv.Itoa(ann.Year),
			strconv.FormatFloat(ann.Anomaly, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row for %d: %w", ann.Year, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
