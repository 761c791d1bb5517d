package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"map-analysis/models"
	"map-analysis/utils"
)

const (
	// JoinKey is the field both sources are joined on.
	JoinKey = "id"

	leftSuffix  = "_x"
	rightSuffix = "_y"
)

// Joiner merges location records with their metadata.
type Joiner struct {
	logger *utils.Logger
}

// NewJoiner creates a Joiner with the given logger.
func NewJoiner(logger *utils.Logger) *Joiner {
	return &Joiner{logger: logger}
}

// Join left-outer-joins locations with metadata on JoinKey. Every location
// appears at least once; a location whose id matches k metadata records
// appears k times. Unmatched rows carry nil for every metadata column.
func (j *Joiner) Join(locations, metadata []models.Record) *models.Table {
	leftCols := columnsOf(locations)
	rightCols := columnsOf(metadata)

	rightSet := make(map[string]struct{}, len(rightCols))
	for _, c := range rightCols {
		rightSet[c] = struct{}{}
	}

	// Output names for non-key columns; colliding names get _x / _y.
	leftNames := make([]string, len(leftCols))
	collided := make(map[string]struct{})
	for i, c := range leftCols {
		leftNames[i] = c
		if c == JoinKey {
			continue
		}
		if _, ok := rightSet[c]; ok {
			leftNames[i] = c + leftSuffix
			collided[c] = struct{}{}
		}
	}
	var rightKeep, rightNames []string
	for _, c := range rightCols {
		if c == JoinKey {
			continue
		}
		name := c
		if _, ok := collided[c]; ok {
			name = c + rightSuffix
		}
		rightKeep = append(rightKeep, c)
		rightNames = append(rightNames, name)
	}
	if len(collided) > 0 {
		j.logger.Warn("[joiner] %d column name(s) present in both sources, suffixed with %s/%s",
			len(collided), leftSuffix, rightSuffix)
	}

	rightIDs := utils.NewIDSet()
	index := make(map[string][]int)
	for i, rec := range metadata {
		key, ok := joinKey(rec)
		if !ok {
			continue
		}
		rightIDs.Add(key)
		index[key] = append(index[key], i)
	}

	leftIDs := utils.NewIDSet()
	for _, rec := range locations {
		if key, ok := joinKey(rec); ok {
			leftIDs.Add(key)
		}
	}
	j.warnDuplicates("locations", leftIDs)
	j.warnDuplicates("metadata", rightIDs)

	table := &models.Table{
		Columns: append(append([]string{}, leftNames...), rightNames...),
		Rows:    make([]models.Record, 0, len(locations)),
	}

	unmatched := 0
	for _, rec := range locations {
		var matches []int
		if key, ok := joinKey(rec); ok && rightIDs.Contains(key) {
			matches = index[key]
		}
		if len(matches) == 0 {
			unmatched++
			table.Rows = append(table.Rows, buildRow(rec, leftCols, leftNames, nil, rightKeep, rightNames))
			continue
		}
		for _, m := range matches {
			table.Rows = append(table.Rows, buildRow(rec, leftCols, leftNames, metadata[m], rightKeep, rightNames))
		}
	}

	j.logger.Info("[joiner] Joined %d locations with %d metadata records → %d rows (%d without metadata)",
		len(locations), len(metadata), table.Len(), unmatched)
	return table
}

func (j *Joiner) warnDuplicates(source string, ids *utils.IDSet) {
	dups := ids.Duplicates()
	if len(dups) == 0 {
		return
	}
	j.logger.Warn("[joiner] Duplicate %s in %s: %s — rows will be multiplied",
		JoinKey, source, strings.Join(dups, ", "))
}

// buildRow assembles one joined row. A nil right record yields nulls for
// every right column.
func buildRow(left models.Record, leftCols, leftNames []string, right models.Record, rightCols, rightNames []string) models.Record {
	row := make(models.Record, 0, len(leftCols)+len(rightCols))
	for i, c := range leftCols {
		v, _ := left.Get(c)
		row = append(row, models.Field{Name: leftNames[i], Value: v})
	}
	for i, c := range rightCols {
		var v any
		if right != nil {
			v, _ = right.Get(c)
		}
		row = append(row, models.Field{Name: rightNames[i], Value: v})
	}
	return row
}

// columnsOf returns the union of field names across records, in order of
// first appearance.
func columnsOf(records []models.Record) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, rec := range records {
		for _, f := range rec {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			cols = append(cols, f.Name)
		}
	}
	return cols
}

// joinKey returns a comparable form of the record's id. Values of different
// JSON types never compare equal; null or missing ids never match anything.
func joinKey(rec models.Record) (string, bool) {
	v, ok := rec.Get(JoinKey)
	if !ok || v == nil {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return strconv.Quote(x), true
	case int64, float64:
		return models.NumberKey(x)
	case bool:
		return strconv.FormatBool(x), true
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x), true
		}
		return string(b), true
	}
}
