package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"smartodo/internal/task"
)

// SheetName is the single sheet written to and read from xlsx files.
const SheetName = "tasks"

// serializeXLSX writes one sheet whose header row is the union of the record
// keys, in first-appearance order. Records missing a key leave the cell blank.
func serializeXLSX(seq []task.Task) ([]byte, error) {
	// Round-trip each task through its JSON encoding so the column set
	// matches the record's actual key set (omitempty fields may be absent).
	records := make([]map[string]any, len(seq))
	for i, t := range seq {
		raw, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		records[i] = m
	}

	var header []string
	seen := make(map[string]bool)
	for _, rec := range records {
		// Walk the struct field order via a throwaway marshal of the keys we
		// know, then pick up anything else. json.Unmarshal loses ordering, so
		// take the canonical field order first.
		for _, key := range []string{"id", "title", "notes", "category", "priority", "due", "completed", "createdAt"} {
			if _, ok := rec[key]; ok && !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
		for key := range rec {
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(SheetName); err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, key := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, key); err != nil {
			return nil, err
		}
	}

	for row, rec := range records {
		for col, key := range header {
			v, ok := rec[key]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeXLSX maps the first sheet's rows to records keyed by the header
// row. There is no schema validation: a row missing an id produces an id-less
// record, and unknown columns are dropped.
func deserializeXLSX(data []byte) ([]task.Task, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: XLSX, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: XLSX, Err: fmt.Errorf("no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: XLSX, Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	var seq []task.Task
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(row) {
				rec[key] = row[i]
			}
		}
		seq = append(seq, taskFromRecord(rec))
	}
	return seq, nil
}

func taskFromRecord(rec map[string]string) task.Task {
	t := task.Task{
		ID:       rec["id"],
		Title:    rec["title"],
		Notes:    rec["notes"],
		Category: rec["category"],
		Priority: task.Priority(rec["priority"]),
	}
	if v, ok := rec["due"]; ok && v != "" {
		if ms, err := parseMillis(v); err == nil {
			t.Due = &ms
		}
	}
	if v, ok := rec["completed"]; ok {
		t.Completed = v == "true" || v == "TRUE" || v == "1"
	}
	if v, ok := rec["createdAt"]; ok && v != "" {
		if ms, err := parseMillis(v); err == nil {
			t.CreatedAt = ms
		}
	}
	return t
}

// parseMillis accepts integer cells as well as the scientific notation
// excelize may hand back for large numbers.
func parseMillis(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(fl), nil
}
