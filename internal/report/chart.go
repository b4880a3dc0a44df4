package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ClimateCodeFoundation/zontem/internal/models"
)

// RenderPNG draws the annual anomaly series as a PNG line chart.
func RenderPNG(series models.AnnualAnomalySeries) ([]byte, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no annual anomalies to chart")
	}

	xValues := make([]float64, len(series))
	yValues := make([]float64, len(series))
	for i, ann := range series {
		xValues[i] = float64(ann.Year)
		yValues[i] = ann.Anomaly
	}

	mainSeries := chart.ContinuousSeries{
		Name: "Annual anomaly",
		Style: chart.Style{
			StrokeColor: drawing.Color{R: 204, G: 51, B: 51, A: 255},
			StrokeWidth: 2,
		},
		XValues: xValues,
		YValues: yValues,
	}

	zeroLine := chart.ContinuousSeries{
		Name: "Baseline",
		Style: chart.Style{
			StrokeColor:     drawing.Color{R: 120, G: 120, B: 120, A: 255},
			StrokeWidth:     1,
			StrokeDashArray: []float64{4, 4},
		},
		XValues: []float64{xValues[0], xValues[len(xValues)-1]},
		YValues: []float64{0, 0},
	}

	graph := chart.Chart{
		Title: "Global annual temperature anomaly",
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   70,
				Right:  20,
				Bottom: 40,
			},
		},
		Height: 400,
		Width:  900,
		XAxis: chart.XAxis{
			Name: "Year",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name: "Anomaly (°C)",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{zeroLine, mainSeries},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render anomaly chart: %w", err)
	}
	return buf.Bytes(), nil
}
