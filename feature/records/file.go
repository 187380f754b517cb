package records

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"figure-sync/core/reconcile"
	"figure-sync/core/utils"
)

// headerName maps a file header onto a column name.
func headerName(h string) string {
	return strings.ReplaceAll(strings.TrimSpace(h), " ", "_")
}

// parseFile reads delimited data and returns its rows in the order and
// types of fields. Extra file columns are ignored. Empty cells are NULL.
func parseFile(data []byte, source string, table string, fields []reconcile.FieldSpec) ([]reconcile.Row, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, &reconcile.StageError{Stage: reconcile.StageValidate, Err: fmt.Errorf("%s is empty", source)}
	}
	if err != nil {
		return nil, &reconcile.StageError{Stage: reconcile.StageValidate, Err: fmt.Errorf("failed to read %s: %w", source, err)}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(headerName(h))] = i
	}

	positions := make([]int, len(fields))
	var missing []string
	for i, f := range fields {
		pos, ok := index[strings.ToLower(f.Name)]
		if !ok {
			missing = append(missing, f.Name)
			continue
		}
		positions[i] = pos
	}
	if len(missing) > 0 {
		return nil, &reconcile.MissingFieldError{Stage: reconcile.StageValidate, Store: source, Field: strings.Join(missing, ", ")}
	}

	var rows []reconcile.Row
	bad := make(map[string]bool)
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &reconcile.StageError{Stage: reconcile.StageValidate, Err: fmt.Errorf("failed to read %s: %w", source, err)}
		}

		row := make(reconcile.Row, len(fields))
		for i, f := range fields {
			cell := record[positions[i]]
			if strings.TrimSpace(cell) == "" {
				row[f.Name] = nil
				continue
			}
			v, err := reconcile.Normalize(cell, f.Type)
			if err != nil {
				bad[f.Name] = true
				continue
			}
			row[f.Name] = v
		}
		rows = append(rows, row)
	}

	var errs []error
	for _, f := range fields {
		if bad[f.Name] {
			errs = append(errs, &reconcile.SchemaMismatchError{
				Stage:       reconcile.StageValidate,
				Field:       f.Name,
				SourceStore: source,
				SourceType:  reconcile.FieldString,
				TargetStore: table,
				TargetType:  f.Type,
			})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rows, nil
}

// formatReport writes records as CSV with columns as header.
func formatReport(columns []string, recs []reconcile.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	line := make([]string, len(columns))
	for _, rec := range recs {
		for i, c := range columns {
			if v := rec.Row[c]; v != nil {
				line[i] = utils.ToString(v)
			} else {
				line[i] = ""
			}
		}
		if err := w.Write(line); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
