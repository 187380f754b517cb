package manifest

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Job kinds.
const (
	KindAttributes = "attributes"
	KindGeometry   = "geometry"
	KindRecords    = "records"
)

// Manifest is an ordered list of sync jobs.
type Manifest struct {
	Jobs []Job `yaml:"jobs"`
}

// Job is one entry of a manifest. Spec holds the kind-specific request
// and is decoded by the caller with Decode.
type Job struct {
	Name string    `yaml:"name"`
	Kind string    `yaml:"kind"`
	Spec yaml.Node `yaml:"spec"`
}

// Decode decodes the job's spec into v, rejecting unknown keys.
func (j Job) Decode(v any) error {
	if j.Spec.Kind == 0 {
		return fmt.Errorf("job %s has no spec", j.Label())
	}
	// Node.Decode has no strict mode, so round-trip through a decoder.
	raw, err := yaml.Marshal(&j.Spec)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("job %s: %w", j.Label(), err)
	}
	return nil
}

// Label names the job in messages.
func (j Job) Label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Kind
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// Validate checks that every job has a known kind and a spec.
func (m *Manifest) Validate() error {
	if len(m.Jobs) == 0 {
		return fmt.Errorf("manifest has no jobs")
	}
	for i, j := range m.Jobs {
		switch j.Kind {
		case KindAttributes, KindGeometry, KindRecords:
		default:
			return fmt.Errorf("job %d (%s): unknown kind %q", i+1, j.Name, j.Kind)
		}
		if j.Spec.Kind != yaml.MappingNode {
			return fmt.Errorf("job %d (%s): spec must be a mapping", i+1, j.Label())
		}
	}
	return nil
}
