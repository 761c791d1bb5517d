package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Fixed input and output file names, relative to the working directory.
const (
	LocationsFile = "locations.json"
	MetadataFile  = "metadata.json"
	OutputFile    = "analysis_results.json"
)

// Config holds all application configuration. The data files always use the
// fixed names above; only diagnostics and the optional CSV export can be
// tuned through the environment.
type Config struct {
	LocationsFile string
	MetadataFile  string
	OutputFile    string

	// JoinedCSVFile, when set, also exports the joined table as CSV.
	JoinedCSVFile string

	// ReportWidth is the separator width of the text report; 0 means detect
	// from the terminal.
	ReportWidth int
	Debug       bool
}

// Load reads the .env file if there is one and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] Ignoring unreadable .env file: %v", err)
	}

	return &Config{
		LocationsFile: LocationsFile,
		MetadataFile:  MetadataFile,
		OutputFile:    OutputFile,

		JoinedCSVFile: getEnv("JOINED_CSV_FILE", ""),

		ReportWidth: getEnvInt("REPORT_WIDTH", 0),
		Debug:       getEnvBool("LOG_DEBUG", false),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
