// Package runner executes one complete zontem computation: acquire the
// dataset, parse it, run the pipeline and publish the artifacts.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ClimateCodeFoundation/zontem/internal/config"
	"github.com/ClimateCodeFoundation/zontem/internal/ghcn"
	"github.com/ClimateCodeFoundation/zontem/internal/pipeline"
	"github.com/ClimateCodeFoundation/zontem/internal/report"
	"github.com/ClimateCodeFoundation/zontem/internal/storage"
)

// Runner ties the input adapter, the computation and the publisher
// together for repeated runs.
type Runner struct {
	cfg       *config.Config
	fetcher   *ghcn.Fetcher
	publisher *report.Publisher
}

// New creates a runner that publishes through the given storage client.
func New(cfg *config.Config, store storage.Client) *Runner {
	return &Runner{
		cfg:       cfg,
		fetcher:   ghcn.NewFetcher(cfg.InputDir),
		publisher: report.NewPublisher(store),
	}
}

// Execute performs a full run and returns the published run folder and
// its summary.
func (r *Runner) Execute(ctx context.Context) (string, report.RunSummary, error) {
	started := time.Now()

	datPath := r.cfg.InputFile
	if datPath == "" {
		var err error
		datPath, err = r.fetcher.Fetch(ctx, r.cfg.GHCNURL)
		if err != nil {
			return "", report.RunSummary{}, fmt.Errorf("dataset acquisition failed: %w", err)
		}
	}

	stations, err := ghcn.ReadStations(datPath, r.cfg.BaseYear)
	if err != nil {
		return "", report.RunSummary{}, fmt.Errorf("dataset parse failed: %w", err)
	}

	result, err := pipeline.Run(stations, pipeline.Config{
		ZoneCount:     r.cfg.ZoneCount,
		BaselineStart: r.cfg.BaselineStart,
		BaselineEnd:   r.cfg.BaselineEnd,
	})
	if err != nil {
		return "", report.RunSummary{}, fmt.Errorf("computation failed: %w", err)
	}

	summary := report.BuildSummary(result, datPath, len(stations),
		r.cfg.BaselineStart, r.cfg.BaselineEnd, time.Now().UTC())

	folder, err := r.publisher.Publish(ctx, result, summary)
	if err != nil {
		return "", report.RunSummary{}, fmt.Errorf("publishing failed: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"stations": len(stations),
		"years":    len(result.Annual),
		"dropped":  len(result.Dropped),
		"duration": time.Since(started).Round(time.Millisecond),
	}).Info("run complete")

	return folder, summary, nil
}
