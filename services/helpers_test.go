package services

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"map-analysis/models"
	"map-analysis/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, io.Discard) }

// rec builds a record from alternating name/value arguments.
func rec(kv ...any) models.Record {
	r := models.Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		r = append(r, models.Field{Name: kv[i].(string), Value: kv[i+1]})
	}
	return r
}

// averageFor returns the average rating reported for typ.
func averageFor(t *testing.T, r *models.AnalysisReport, typ string) float64 {
	t.Helper()
	for _, ta := range r.AverageRatingPerType {
		if ta.Type == typ {
			return ta.Average
		}
	}
	require.Failf(t, "missing average", "no average for type %q", typ)
	return 0
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
