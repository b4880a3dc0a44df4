// Package report turns a pipeline result into published artifacts: the
// CSV series, a PNG chart, an interactive HTML page and a machine
// readable run summary.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ClimateCodeFoundation/zontem/internal/pipeline"
	"github.com/ClimateCodeFoundation/zontem/internal/storage"
)

// RunSummary captures the shape of a finished run for auditing.
type RunSummary struct {
	Dataset        string                   `json:"dataset"`
	Timestamp      time.Time                `json:"timestamp"`
	StationCount   int                      `json:"station_count"`
	ZoneCount      int                      `json:"zone_count"`
	PopulatedZones int                      `json:"populated_zones"`
	BaselineStart  int                      `json:"baseline_start"`
	BaselineEnd    int                      `json:"baseline_end"`
	FirstYear      int                      `json:"first_year"`
	LastYear       int                      `json:"last_year"`
	Dropped        []pipeline.DroppedSeries `json:"dropped_series"`
}

// Publisher writes run artifacts through a storage client.
type Publisher struct {
	store storage.Client
}

// NewPublisher creates a publisher backed by the given storage client.
func NewPublisher(store storage.Client) *Publisher {
	return &Publisher{store: store}
}

// Publish writes all artifacts for a run and returns the run folder.
// Every artifact is rendered before anything is stored, so a render
// failure never leaves a half-written run folder behind. The CSV keeps
// the original dataset name in its file name, so results from
// different GHCN releases stay distinguishable.
func (p *Publisher) Publish(ctx context.Context, result *pipeline.Result, summary RunSummary) (string, error) {
	csvName := "Zontem-" + datasetBase(summary.Dataset) + ".csv"

	csvData, err := RenderCSV(result.Annual)
	if err != nil {
		return "", fmt.Errorf("failed to render CSV: %w", err)
	}
	pngData, err := RenderPNG(result.Annual)
	if err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	htmlData, err := RenderHTML(result.Annual, summary)
	if err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run summary: %w", err)
	}

	artifacts := []struct {
		name string
		data []byte
	}{
		{csvName, csvData},
		{"anomaly_chart.png", pngData},
		{"report.html", htmlData},
		{"run_summary.json", summaryJSON},
	}
	for _, a := range artifacts {
		if err := p.store.StoreFile(ctx, a.data, a.name, summary.Timestamp); err != nil {
			return "", fmt.Errorf("failed to store %s: %w", a.name, err)
		}
	}

	folder := storage.RunFolderPath(summary.Timestamp)
	logrus.WithFields(logrus.Fields{
		"folder": folder,
		"years":  len(result.Annual),
	}).Info("run artifacts published")
	return folder, nil
}

// BuildSummary assembles a RunSummary from a finished pipeline result.
func BuildSummary(result *pipeline.Result, dataset string, stationCount, baselineStart, baselineEnd int, ts time.Time) RunSummary {
	populated := 0
	for _, z := range result.Zones {
		if !z.Empty() {
			populated++
		}
	}

	summary := RunSummary{
		Dataset:        dataset,
		Timestamp:      ts,
		StationCount:   stationCount,
		ZoneCount:      len(result.Zones),
		PopulatedZones: populated,
		BaselineStart:  baselineStart,
		BaselineEnd:    baselineEnd,
		Dropped:        result.Dropped,
	}
	if len(result.Annual) > 0 {
		summary.FirstYear = result.Annual[0].Year
		summary.LastYear = result.Annual[len(result.Annual)-1].Year
	}
	return summary
}

// datasetBase strips the directory and .dat extension from a dataset
// path, mirroring how the original file is named in GHCN releases.
func datasetBase(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, ".dat")
}
