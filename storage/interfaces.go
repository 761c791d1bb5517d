package storage

import "map-analysis/models"

// ReportWriter is the interface any report sink must satisfy. Path names the
// destination for the confirmation message.
type ReportWriter interface {
	Write(report *models.AnalysisReport) error
	Path() string
}

// TableWriter is the interface for exporting the joined table.
type TableWriter interface {
	WriteTable(table *models.Table) error
	Close() error
}
