package main

import (
	"errors"
	"os"

	"github.com/google/uuid"

	"map-analysis/config"
	"map-analysis/services"
	"map-analysis/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.Debug)

	logger.Info("=== Map data analysis starting (run %s) ===", uuid.NewString())
	logger.Info("Config — locations: %s | metadata: %s | output: %s",
		cfg.LocationsFile, cfg.MetadataFile, cfg.OutputFile)

	width := cfg.ReportWidth
	if width <= 0 {
		width = services.TerminalWidth(os.Stdout, services.DefaultReportWidth)
	}

	pipeline := services.NewPipeline(cfg, logger, os.Stdout, width)
	if err := pipeline.Run(); err != nil {
		if errors.Is(err, services.ErrMissingInput) {
			logger.Error("Error: Missing or invalid data files. Exiting program.")
			logger.Debug("%v", err)
		} else {
			logger.Error("Failed to save analysis results: %v", err)
		}
		os.Exit(1)
	}
}
