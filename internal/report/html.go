package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ClimateCodeFoundation/zontem/internal/models"
)

// RenderHTML builds a self-contained interactive report page for the
// annual anomaly series, with the run parameters in the subtitle.
func RenderHTML(series models.AnnualAnomalySeries, summary RunSummary) ([]byte, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no annual anomalies to report")
	}

	years := make([]string, len(series))
	points := make([]opts.LineData, len(series))
	for i, ann := range series {
		years[i] = strconv.Itoa(ann.Year)
		points[i] = opts.LineData{Value: ann.Anomaly}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Zontem global temperature anomaly",
			Width:     "960px",
			Height:    "480px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Global annual temperature anomaly",
			Subtitle: fmt.Sprintf("%d stations in %d zones, baseline %d-%d, %d series dropped",
				summary.StationCount, summary.ZoneCount,
				summary.BaselineStart, summary.BaselineEnd, len(summary.Dropped)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "°C"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)

	line.SetXAxis(years).AddSeries("Annual anomaly", points,
		charts.WithLineChartOpts(opts.LineChart{Smooth: false, ShowSymbol: true}),
	)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render HTML report: %w", err)
	}
	return buf.Bytes(), nil
}
