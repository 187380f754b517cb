package geometry

import (
	"fmt"
	"strings"

	"figure-sync/core/reconcile"
)

// Request describes one new-geometry detection run.
type Request struct {
	// Parent is the sitewide feature table new features come from.
	Parent string `json:"parent" yaml:"parent"`
	// Child is the report feature table checked for missing features.
	Child string `json:"child" yaml:"child"`
	// Boundary is an optional secondary boundary table. Defaults to Extents.
	Boundary string `json:"boundary" yaml:"boundary"`
	// Extents is the figure extent polygon table.
	Extents string `json:"extents" yaml:"extents"`
	// ExtentKey names the figure column in Extents, Boundary and Child.
	ExtentKey string `json:"extent_key" yaml:"extent_key"`
	// Figures is the figure selection expression.
	Figures string `json:"figures" yaml:"figures"`
	// DeleteField is the Parent column DeleteValues are matched against.
	DeleteField string `json:"delete_field" yaml:"delete_field"`
	// DeleteValues drops joined features whose DeleteField is listed.
	DeleteValues []string `json:"delete_values" yaml:"delete_values"`
	// Output is the table new features are written to. Defaults to
	// Child plus the configured output suffix.
	Output string `json:"output" yaml:"output"`
}

// ParseDeleteValues parses a ';' separated list. "0" and "" mean none.
func ParseDeleteValues(expr string) []string {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "0" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(expr, ";") {
		item = strings.TrimSpace(strings.Trim(strings.TrimSpace(item), "'\""))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// withDefaults fills Boundary and Output.
func (r Request) withDefaults(outputSuffix string) Request {
	if r.Boundary == "" {
		r.Boundary = r.Extents
	}
	if r.Output == "" {
		r.Output = r.Child + outputSuffix
	}
	return r
}

// Validate checks table and field names. Call after withDefaults.
func (r Request) Validate() error {
	names := []struct{ param, name string }{
		{"parent", r.Parent},
		{"child", r.Child},
		{"boundary", r.Boundary},
		{"extents", r.Extents},
		{"extent_key", r.ExtentKey},
		{"output", r.Output},
	}
	if len(r.DeleteValues) > 0 {
		names = append(names, struct{ param, name string }{"delete_field", r.DeleteField})
	}
	for _, n := range names {
		if !reconcile.ValidIdentifier(n.name) {
			return fmt.Errorf("invalid %s %q", n.param, n.name)
		}
	}

	for _, src := range []string{r.Parent, r.Child, r.Boundary, r.Extents} {
		if strings.EqualFold(src, r.Output) {
			return fmt.Errorf("output %s would overwrite an input table", r.Output)
		}
	}
	if r.Selection().Unscoped {
		return fmt.Errorf("new geometry detection needs at least one figure")
	}
	return nil
}

// Selection parses Figures.
func (r Request) Selection() reconcile.Selection {
	return reconcile.ParseSelection(r.Figures)
}
