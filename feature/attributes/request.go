package attributes

import (
	"fmt"
	"strings"

	"figure-sync/core/reconcile"
)

// Request describes one attribute synchronization run.
type Request struct {
	// Master is the source table holding the authoritative attributes.
	Master string `json:"master" yaml:"master"`
	// Report is the target table that is updated.
	Report string `json:"report" yaml:"report"`
	// Extents is the table listing the figures.
	Extents string `json:"extents" yaml:"extents"`
	// ExtentKey names the figure column, present in Extents and Report.
	ExtentKey string `json:"extent_key" yaml:"extent_key"`
	// SourceKey is the join column in Master.
	SourceKey string `json:"source_key" yaml:"source_key"`
	// TargetKey is the join column in Report.
	TargetKey string `json:"target_key" yaml:"target_key"`
	// Fields are the columns to synchronize.
	Fields []string `json:"fields" yaml:"fields"`
	// Figures is the figure selection expression ("all", "none", "A;B").
	Figures string `json:"figures" yaml:"figures"`
}

// SplitList splits a ';' separated list, dropping blanks.
func SplitList(expr string) []string {
	var out []string
	for _, item := range strings.Split(expr, ";") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks that every name in the request is usable.
func (r Request) Validate() error {
	if len(r.Fields) == 0 {
		return fmt.Errorf("no fields to update")
	}

	names := map[string]string{
		"master":     r.Master,
		"report":     r.Report,
		"source_key": r.SourceKey,
		"target_key": r.TargetKey,
	}
	if !r.Selection().Unscoped {
		names["extents"] = r.Extents
		names["extent_key"] = r.ExtentKey
	}
	for param, name := range names {
		if !reconcile.ValidIdentifier(name) {
			return fmt.Errorf("invalid %s %q", param, name)
		}
	}
	for _, f := range r.Fields {
		if !reconcile.ValidIdentifier(f) {
			return fmt.Errorf("invalid field %q", f)
		}
	}
	return nil
}

// Selection parses Figures.
func (r Request) Selection() reconcile.Selection {
	return reconcile.ParseSelection(r.Figures)
}
