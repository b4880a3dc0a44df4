package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ClimateCodeFoundation/zontem/internal/models"
	"github.com/ClimateCodeFoundation/zontem/internal/pipeline"
	"github.com/ClimateCodeFoundation/zontem/internal/storage"
)

var testSeries = models.AnnualAnomalySeries{
	{Year: 1950, Anomaly: -0.1234},
	{Year: 1951, Anomaly: 0},
	{Year: 1952, Anomaly: 0.25},
}

func TestRenderCSV(t *testing.T) {
	data, err := RenderCSV(testSeries)
	if err != nil {
		t.Fatalf("RenderCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 rows, got %d: %q", len(lines), data)
	}
	if lines[0] != "1950,-0.1234" {
		t.Errorf("first row = %q", lines[0])
	}
	if lines[2] != "1952,0.2500" {
		t.Errorf("last row = %q", lines[2])
	}
}

func TestRenderCSVEmptySeries(t *testing.T) {
	data, err := RenderCSV(nil)
	if err != nil {
		t.Fatalf("RenderCSV failed on empty series: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("empty series should render no rows, got %q", data)
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(testSeries)
	if err != nil {
		t.Fatalf("RenderPNG failed: %v", err)
	}
	// PNG signature
	if len(data) < 8 || data[0] != 0x89 || data[1] != 'P' || data[2] != 'N' || data[3] != 'G' {
		t.Errorf("output does not look like a PNG (first bytes %v)", data[:8])
	}
}

func TestRenderPNGEmptySeries(t *testing.T) {
	if _, err := RenderPNG(nil); err == nil {
		t.Error("expected an error for an empty series")
	}
}

func TestRenderHTML(t *testing.T) {
	summary := RunSummary{
		StationCount:  7280,
		ZoneCount:     20,
		BaselineStart: 1951,
		BaselineEnd:   1980,
	}
	data, err := RenderHTML(testSeries, summary)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	html := string(data)
	if !strings.Contains(html, "echarts") {
		t.Error("report should embed an echarts chart")
	}
	if !strings.Contains(html, "1951") {
		t.Error("report subtitle should mention the baseline")
	}
}

func TestPublishWritesAllArtifacts(t *testing.T) {
	store, err := storage.NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer store.Close()

	result := &pipeline.Result{
		Zones:  []models.Zone{{Index: 0, StationIDs: []string{"A"}}},
		Annual: testSeries,
	}
	ts := time.Date(2014, 5, 18, 10, 0, 0, 0, time.UTC)
	summary := BuildSummary(result, "input/ghcnm.v3/ghcnm.tavg.v3.2.2.qca.dat", 1, 1951, 1980, ts)

	publisher := NewPublisher(store)
	folder, err := publisher.Publish(context.Background(), result, summary)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	ctx := context.Background()
	for _, name := range []string{
		"Zontem-ghcnm.tavg.v3.2.2.qca.csv",
		"anomaly_chart.png",
		"report.html",
		"run_summary.json",
	} {
		if _, err := store.GetFile(ctx, folder+"/"+name); err != nil {
			t.Errorf("artifact %s missing: %v", name, err)
		}
	}
}

func TestPublishRenderFailureStoresNothing(t *testing.T) {
	store, err := storage.NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer store.Close()

	// An empty annual series makes every renderer fail; the run folder
	// must not be created at all.
	result := &pipeline.Result{Annual: nil}
	ts := time.Date(2014, 5, 18, 10, 0, 0, 0, time.UTC)
	summary := BuildSummary(result, "ghcnm.dat", 0, 1951, 1980, ts)

	publisher := NewPublisher(store)
	if _, err := publisher.Publish(context.Background(), result, summary); err == nil {
		t.Fatal("Publish succeeded with an empty annual series")
	}

	runs, err := store.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("found %d run folders after failed publish, want none", len(runs))
	}
}

func TestBuildSummaryYearBounds(t *testing.T) {
	result := &pipeline.Result{
		Zones:  []models.Zone{{Index: 0, StationIDs: []string{"A"}}, {Index: 1}},
		Annual: testSeries,
	}
	summary := BuildSummary(result, "test.dat", 5, 1951, 1980, time.Now())

	if summary.FirstYear != 1950 || summary.LastYear != 1952 {
		t.Errorf("year bounds = %d-%d, want 1950-1952", summary.FirstYear, summary.LastYear)
	}
	if summary.PopulatedZones != 1 {
		t.Errorf("populated zones = %d, want 1", summary.PopulatedZones)
	}
}
