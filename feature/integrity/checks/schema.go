package checks

import (
	"fmt"
	"sort"
	"strings"

	"figure-sync/core/database"
	"figure-sync/core/gdb"
	"figure-sync/core/reconcile"

	"gorm.io/gorm"
)

// Requirement lists the columns a job needs in one table. An empty type
// only checks that the column exists.
type Requirement struct {
	Table   string                         `json:"table"`
	Columns map[string]reconcile.FieldType `json:"columns"`
}

// ParseRequirement parses "name" and "name:Type" items separated by commas.
func ParseRequirement(table, columns string) (Requirement, error) {
	req := Requirement{Table: table, Columns: map[string]reconcile.FieldType{}}
	if !reconcile.ValidIdentifier(table) {
		return req, fmt.Errorf("invalid table %q", table)
	}
	for _, item := range strings.Split(columns, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, typ, _ := strings.Cut(item, ":")
		if !reconcile.ValidIdentifier(name) {
			return req, fmt.Errorf("invalid column %q", name)
		}
		req.Columns[name] = reconcile.FieldType(strings.TrimSpace(typ))
	}
	return req, nil
}

// SchemaReport is the result of a schema check.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport describes one checked table.
type TableReport struct {
	Columns        map[string]reconcile.FieldType `json:"columns"`
	MissingColumns []string                       `json:"missing_columns"`
	TypeMismatches []string                       `json:"type_mismatches"`
	Status         string                         `json:"status"` // "ok", "error"
}

// CheckSchema inspects each required table and compares its columns with
// the requirement. Tables that cannot be inspected are reported in Errors.
func CheckSchema(db *gorm.DB, geomColumn string, reqs []Requirement) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	for _, req := range reqs {
		cols, err := database.GetTableColumns(db, req.Table)
		if err == nil && len(cols) == 0 {
			err = fmt.Errorf("table does not exist")
		}
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", req.Table, err))
			report.Matched = false
			continue
		}

		tbl := TableReport{
			Columns:        make(map[string]reconcile.FieldType, len(cols)),
			MissingColumns: []string{},
			TypeMismatches: []string{},
			Status:         "ok",
		}
		actual := make(map[string]reconcile.FieldType, len(cols))
		for _, col := range cols {
			t := gdb.FieldTypeFromColumn(col, geomColumn)
			tbl.Columns[col.Field] = t
			actual[strings.ToLower(col.Field)] = t
		}

		names := make([]string, 0, len(req.Columns))
		for name := range req.Columns {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			got, ok := actual[strings.ToLower(name)]
			if !ok {
				tbl.MissingColumns = append(tbl.MissingColumns, name)
				continue
			}
			if want := req.Columns[name]; want != "" && !got.CompatibleWith(want) {
				tbl.TypeMismatches = append(tbl.TypeMismatches, fmt.Sprintf("%s: expected %s, got %s", name, want, got))
			}
		}

		if len(tbl.MissingColumns) > 0 || len(tbl.TypeMismatches) > 0 {
			tbl.Status = "error"
			report.Matched = false
		}
		report.Tables[req.Table] = tbl
	}

	return report, nil
}
