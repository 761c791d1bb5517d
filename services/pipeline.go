package services

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"map-analysis/config"
	"map-analysis/models"
	"map-analysis/storage"
	"map-analysis/utils"
)

// ErrMissingInput means an input file was missing, unparseable or empty.
// No output is written when it is returned.
var ErrMissingInput = errors.New("missing or invalid data files")

// Pipeline runs load → join → analyse → report once.
type Pipeline struct {
	cfg    *config.Config
	logger *utils.Logger
	out    io.Writer
	width  int
	report storage.ReportWriter
}

// NewPipeline creates a Pipeline printing its text report to out and saving
// the results to cfg.OutputFile.
func NewPipeline(cfg *config.Config, logger *utils.Logger, out io.Writer, width int) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		out:    out,
		width:  width,
		report: storage.NewJSONWriter(cfg.OutputFile),
	}
}

// Run executes the whole pipeline. It returns an error wrapping
// ErrMissingInput before anything is written if either input cannot be used.
func (p *Pipeline) Run() error {
	loader := NewLoader(p.logger)
	locations := loader.Load(p.cfg.LocationsFile)
	metadata := loader.Load(p.cfg.MetadataFile)

	if err := p.checkInputs(locations, metadata); err != nil {
		return err
	}

	table := NewJoiner(p.logger).Join(locations.Records, metadata.Records)

	if p.cfg.JoinedCSVFile != "" {
		if err := p.exportTable(table); err != nil {
			p.logger.Warn("[pipeline] Joined table export failed: %v", err)
		} else {
			p.logger.Info("[pipeline] Joined table saved to %s", p.cfg.JoinedCSVFile)
		}
	}

	report := NewAnalysisService(p.logger).Generate(table)
	NewReporter(p.out, p.width).Print(report)

	if err := p.report.Write(report); err != nil {
		return err
	}
	p.logger.Info("Analysis results saved to '%s'.", p.report.Path())
	return nil
}

// checkInputs turns failed or empty load results into ErrMissingInput.
func (p *Pipeline) checkInputs(results ...LoadResult) error {
	var reasons []string
	for _, r := range results {
		switch {
		case errors.Is(r.Err, ErrFileNotFound):
			reasons = append(reasons, r.Path+" not found")
		case errors.Is(r.Err, ErrMalformedJSON):
			reasons = append(reasons, r.Path+" failed to parse")
		case !r.OK():
			reasons = append(reasons, r.Path+" could not be read")
		case len(r.Records) == 0:
			p.logger.Error("Error: %s contains no records!", r.Path)
			reasons = append(reasons, r.Path+" contains no records")
		}
	}
	if len(reasons) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingInput, strings.Join(reasons, "; "))
}

func (p *Pipeline) exportTable(table *models.Table) error {
	w, err := storage.NewCSVWriter(p.cfg.JoinedCSVFile)
	if err != nil {
		return err
	}
	return writeTable(w, table)
}

// writeTable writes table and closes w, reporting the first error.
func writeTable(w storage.TableWriter, table *models.Table) error {
	if err := w.WriteTable(table); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
