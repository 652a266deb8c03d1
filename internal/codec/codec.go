// Package codec converts the task set between interchange formats:
// full-fidelity JSON, lossy CSV, and tabular spreadsheet (xlsx).
package codec

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"smartodo/internal/task"
)

// Format identifies an interchange format.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// CSVHeader is the header line of CSV exports.
const CSVHeader = "Title,Completed,Date"

// ParseError indicates malformed import data. The import is all-or-nothing:
// on a ParseError the caller must leave the cache untouched.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FormatForPath derives the format from a file extension
// (.json, .csv, .xlsx).
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".csv":
		return CSV, nil
	case ".xlsx":
		return XLSX, nil
	default:
		return "", fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}
}

// Serialize encodes the task sequence in the given format.
func Serialize(seq []task.Task, format Format) ([]byte, error) {
	switch format {
	case JSON:
		return json.MarshalIndent(seq, "", "  ")
	case CSV:
		return serializeCSV(seq), nil
	case XLSX:
		return serializeXLSX(seq)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Deserialize decodes a task sequence from the given format. Malformed input
// yields a *ParseError and no partial result.
func Deserialize(data []byte, format Format) ([]task.Task, error) {
	switch format {
	case JSON:
		var seq []task.Task
		if err := json.Unmarshal(data, &seq); err != nil {
			return nil, &ParseError{Format: JSON, Err: err}
		}
		return seq, nil
	case CSV:
		return deserializeCSV(data), nil
	case XLSX:
		return deserializeXLSX(data)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// serializeCSV keeps only title, completed and due. Commas inside fields are
// not escaped; the corruption risk is part of the format's contract.
func serializeCSV(seq []task.Task) []byte {
	lines := make([]string, 0, len(seq)+1)
	lines = append(lines, CSVHeader)
	for _, t := range seq {
		due := ""
		if t.Due != nil {
			due = strconv.FormatInt(*t.Due, 10)
		}
		lines = append(lines, fmt.Sprintf("%s,%t,%s", t.Title, t.Completed, due))
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// deserializeCSV discards the first line as the header and splits the rest
// naively on commas. A comma embedded in a field corrupts the row silently.
func deserializeCSV(data []byte) []task.Task {
	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	var seq []task.Task
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, ",")
		t := task.Task{Title: parts[0]}
		if len(parts) > 1 {
			t.Completed = parts[1] == "true"
		}
		if len(parts) > 2 {
			if ms, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
				t.Due = &ms
			}
		}
		seq = append(seq, t)
	}
	return seq
}
