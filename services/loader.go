package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/buger/jsonparser"

	"map-analysis/models"
	"map-analysis/utils"
)

var (
	// ErrFileNotFound is returned when an input file does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrMalformedJSON is returned when an input file is not a JSON array of objects.
	ErrMalformedJSON = errors.New("malformed JSON")
)

// LoadResult is the outcome of loading one input file. Err is nil on success;
// a successful load may still hold zero records.
type LoadResult struct {
	Path    string
	Records []models.Record
	Err     error
}

// OK reports whether the file was read and parsed.
func (r LoadResult) OK() bool {
	return r.Err == nil
}

// Loader reads JSON arrays of objects from disk.
type Loader struct {
	logger *utils.Logger
}

// NewLoader creates a Loader with the given logger.
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads path and parses it into records. Failures are logged and
// reported through the result, never by panicking or exiting.
func (l *Loader) Load(path string) LoadResult {
	res := LoadResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Error("Error: %s not found!", path)
			res.Err = fmt.Errorf("%s: %w", path, ErrFileNotFound)
			return res
		}
		l.logger.Error("Error: Failed to read %s: %v", path, err)
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}

	records, err := parseRecords(data)
	if err != nil {
		l.logger.Error("Error: Failed to parse %s!", path)
		l.logger.Debug("[loader] %s: %v", path, err)
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}

	l.logger.Info("[loader] Loaded %d records from %s", len(records), path)
	res.Records = records
	return res
}

// parseRecords decodes a JSON array of objects, keeping each object's key order.
func parseRecords(data []byte) ([]models.Record, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: invalid JSON document", ErrMalformedJSON)
	}

	root, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if typ != jsonparser.Array {
		return nil, fmt.Errorf("%w: top-level value is %s, want array", ErrMalformedJSON, typ)
	}

	records := make([]models.Record, 0)
	var walkErr error
	index := 0
	_, err = jsonparser.ArrayEach(root, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		defer func() { index++ }()
		if walkErr != nil {
			return
		}
		if err != nil {
			walkErr = err
			return
		}
		if dataType != jsonparser.Object {
			walkErr = fmt.Errorf("element %d is %s, want object", index, dataType)
			return
		}
		rec, err := parseObject(value)
		if err != nil {
			walkErr = fmt.Errorf("element %d: %v", index, err)
			return
		}
		records = append(records, rec)
	})
	if err == nil {
		err = walkErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return records, nil
}

// parseObject decodes one JSON object. A repeated key keeps its first
// position and takes the last value.
func parseObject(data []byte) (models.Record, error) {
	var rec models.Record
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}
		v, err := decodeValue(value, dataType)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		for i := range rec {
			if rec[i].Name == name {
				rec[i].Value = v
				return nil
			}
		}
		rec = append(rec, models.Field{Name: name, Value: v})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = models.Record{}
	}
	return rec, nil
}

func decodeValue(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Number:
		return decodeNumber(value)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object, jsonparser.Array:
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", dataType)
	}
}

// decodeNumber keeps integers exact as int64 and reads everything else as
// float64. Magnitudes beyond float64 range become ±Inf rather than an error.
func decodeNumber(value []byte) (any, error) {
	if n, err := jsonparser.ParseInt(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(string(value), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, err
	}
	return f, nil
}
