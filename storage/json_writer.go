package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"map-analysis/models"
)

// NoDataSentinel replaces the max reviews location when there is none.
const NoDataSentinel = "No Data"

const jsonIndent = "    "

// document is the on-disk shape of an AnalysisReport. Field order is the key
// order of the written object.
type document struct {
	PointsPerType        models.PointsPerType  `json:"valid_points_per_type"`
	AverageRatingPerType models.AverageRatings `json:"average_ratings_per_type"`
	MaxReviewsLocation   any                   `json:"max_reviews_location"`
	IncompleteData       []models.Record       `json:"incomplete_data"`
}

// JSONWriter writes the analysis report as a single JSON object.
type JSONWriter struct {
	path string
}

// NewJSONWriter creates a JSONWriter for path. Nothing is touched on disk
// until Write is called.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// Path returns the destination file.
func (w *JSONWriter) Path() string {
	return w.path
}

// Write encodes the report and replaces the destination file with it.
// The file is only created once encoding has succeeded.
func (w *JSONWriter) Write(report *models.AnalysisReport) error {
	data, err := Encode(report)
	if err != nil {
		return fmt.Errorf("json: encode report: %w", err)
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("json: create output dir: %w", err)
		}
	}
	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("json: write file %q: %w", w.path, err)
	}
	return nil
}

// Encode renders the report document with four-space indentation.
func Encode(report *models.AnalysisReport) ([]byte, error) {
	doc := document{
		PointsPerType:        report.PointsPerType,
		AverageRatingPerType: report.AverageRatingPerType,
		MaxReviewsLocation:   NoDataSentinel,
		IncompleteData:       report.IncompleteData,
	}
	if doc.PointsPerType == nil {
		doc.PointsPerType = models.PointsPerType{}
	}
	if doc.AverageRatingPerType == nil {
		doc.AverageRatingPerType = models.AverageRatings{}
	}
	if report.MaxReviewsLocation != nil {
		doc.MaxReviewsLocation = report.MaxReviewsLocation
	}
	if doc.IncompleteData == nil {
		doc.IncompleteData = []models.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", jsonIndent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
