package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-analysis/config"
	"map-analysis/models"
)

// recordingWriter keeps the last report instead of touching disk.
type recordingWriter struct {
	got *models.AnalysisReport
	err error
}

func (w *recordingWriter) Write(report *models.AnalysisReport) error {
	w.got = report
	return w.err
}

func (w *recordingWriter) Path() string { return "memory" }

func testConfig(dir string) *config.Config {
	return &config.Config{
		LocationsFile: filepath.Join(dir, "locations.json"),
		MetadataFile:  filepath.Join(dir, "metadata.json"),
		OutputFile:    filepath.Join(dir, "analysis_results.json"),
	}
}

func TestPipelineScenario(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, dir, "locations.json", `[{"id": 1, "type": "park"}, {"id": 2, "type": "park"}]`)
	writeFile(t, dir, "metadata.json", `[{"id": 1, "rating": 4, "reviews": 10}]`)

	var out bytes.Buffer
	require.NoError(t, NewPipeline(cfg, newTestLogger(), &out, 0).Run())
	assertSectionOrder(t, out.String())

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc, 4)
	assert.JSONEq(t, `{"park": 2}`, string(doc["valid_points_per_type"]))
	assert.JSONEq(t, `{"park": 4}`, string(doc["average_ratings_per_type"]))
	assert.JSONEq(t, `{"id": 1, "type": "park", "rating": 4, "reviews": 10}`, string(doc["max_reviews_location"]))
	assert.JSONEq(t, `[{"id": 2, "type": "park", "rating": null, "reviews": null}]`, string(doc["incomplete_data"]))
}

func TestPipelineOverwritesOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, dir, "locations.json", `[{"id": 1, "type": "park"}]`)
	writeFile(t, dir, "metadata.json", `[{"id": 9}]`)
	writeFile(t, dir, "analysis_results.json", `{"stale": true, "padding": "`+string(bytes.Repeat([]byte("x"), 4096))+`"}`)

	require.NoError(t, NewPipeline(cfg, newTestLogger(), &bytes.Buffer{}, 0).Run())

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc, "stale")
	assert.Equal(t, "No Data", doc["max_reviews_location"])
}

func TestPipelineMissingInputWritesNothing(t *testing.T) {
	tests := []struct {
		name      string
		locations string
		metadata  string
	}{
		{"locations missing", "", `[{"id": 1}]`},
		{"metadata missing", `[{"id": 1, "type": "park"}]`, ""},
		{"metadata malformed", `[{"id": 1, "type": "park"}]`, `[{"id": 1`},
		{"locations empty", `[]`, `[{"id": 1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := testConfig(dir)
			cfg.JoinedCSVFile = filepath.Join(dir, "joined.csv")
			if tt.locations != "" {
				writeFile(t, dir, "locations.json", tt.locations)
			}
			if tt.metadata != "" {
				writeFile(t, dir, "metadata.json", tt.metadata)
			}

			var out bytes.Buffer
			err := NewPipeline(cfg, newTestLogger(), &out, 0).Run()
			assert.ErrorIs(t, err, ErrMissingInput)
			assert.NoFileExists(t, cfg.OutputFile)
			assert.NoFileExists(t, cfg.JoinedCSVFile)
			assert.Empty(t, out.String(), "no report should be printed")
		})
	}
}

func TestPipelineExportsJoinedCSV(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JoinedCSVFile = filepath.Join(dir, "export", "joined.csv")
	writeFile(t, dir, "locations.json", `[{"id": 1, "type": "park"}, {"id": 2, "type": "cafe"}]`)
	writeFile(t, dir, "metadata.json", `[{"id": 2, "rating": 3.5}]`)

	require.NoError(t, NewPipeline(cfg, newTestLogger(), &bytes.Buffer{}, 0).Run())

	data, err := os.ReadFile(cfg.JoinedCSVFile)
	require.NoError(t, err)
	assert.Equal(t, "id,type,rating\n1,park,\n2,cafe,3.5\n", string(data))
}

func TestPipelineReportsUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.OutputFile = dir
	writeFile(t, dir, "locations.json", `[{"id": 1, "type": "park"}]`)
	writeFile(t, dir, "metadata.json", `[{"id": 1, "reviews": 3}]`)

	err := NewPipeline(cfg, newTestLogger(), &bytes.Buffer{}, 0).Run()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingInput)
}

func TestPipelineUsesConfiguredReportWriter(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, dir, "locations.json", `[{"id": 1, "type": "park"}, {"id": 2, "type": "cafe"}]`)
	writeFile(t, dir, "metadata.json", `[{"id": 2, "rating": 3, "reviews": 8}]`)

	w := &recordingWriter{}
	p := NewPipeline(cfg, newTestLogger(), &bytes.Buffer{}, 0)
	p.report = w
	require.NoError(t, p.Run())

	require.NotNil(t, w.got)
	assert.Equal(t, 2, w.got.PointsPerType.Total())
	id, _ := w.got.MaxReviewsLocation.Get("id")
	assert.Equal(t, int64(2), id)
	assert.NoFileExists(t, cfg.OutputFile)
}

func TestPipelineReturnsReportWriterError(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, dir, "locations.json", `[{"id": 1, "type": "park"}]`)
	writeFile(t, dir, "metadata.json", `[{"id": 1, "reviews": 3}]`)

	errDiskFull := errors.New("disk full")
	p := NewPipeline(cfg, newTestLogger(), &bytes.Buffer{}, 0)
	p.report = &recordingWriter{err: errDiskFull}

	err := p.Run()
	assert.ErrorIs(t, err, errDiskFull)
	assert.NotErrorIs(t, err, ErrMissingInput)
}

func TestPipelineLargeIntegerIDs(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	writeFile(t, dir, "locations.json",
		`[{"id": 9007199254740993, "type": "park"}, {"id": 9007199254740992, "type": "cafe"}]`)
	writeFile(t, dir, "metadata.json", `[{"id": 9007199254740992, "rating": 1, "reviews": 5}]`)

	require.NoError(t, NewPipeline(cfg, newTestLogger(), &bytes.Buffer{}, 0).Run())

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.JSONEq(t, `{"id": 9007199254740992, "type": "cafe", "rating": 1, "reviews": 5}`, string(doc["max_reviews_location"]))
	assert.JSONEq(t, `[{"id": 9007199254740993, "type": "park", "rating": null, "reviews": null}]`, string(doc["incomplete_data"]))
	assert.Contains(t, string(doc["max_reviews_location"]), "9007199254740992")
	assert.Contains(t, string(doc["incomplete_data"]), "9007199254740993")
}
