package records

import (
	"fmt"
	"strings"

	"figure-sync/core/reconcile"
)

// Request describes one new-records import.
type Request struct {
	// Input is a local file path or a storage:// object in the bucket.
	Input string `json:"input" yaml:"input"`
	// Table is the table new rows are appended to.
	Table string `json:"table" yaml:"table"`
	// KeyFields identify a row. Defaults to every writable column.
	KeyFields []string `json:"key_fields" yaml:"key_fields"`
}

// Validate checks the request before any store is touched.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Input) == "" {
		return fmt.Errorf("input is required")
	}
	if !reconcile.ValidIdentifier(r.Table) {
		return fmt.Errorf("invalid table %q", r.Table)
	}
	for _, k := range r.KeyFields {
		if !reconcile.ValidIdentifier(k) {
			return fmt.Errorf("invalid key field %q", k)
		}
	}
	return nil
}
