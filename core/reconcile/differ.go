package reconcile

import (
	"strings"
)

// KeyFunc extracts the join key from a row. It returns the canonical key
// string and the raw key value used for patch predicates. A nil value
// means the row has no key.
type KeyFunc func(row Row) (key string, value any)

// FieldKey keys rows on a single column.
func FieldKey(field string) KeyFunc {
	return func(row Row) (string, any) {
		v := row[field]
		return KeyString(v), v
	}
}

// CompositeKey keys rows on several columns. The key string joins the
// canonical values with a unit separator so distinct tuples never collide,
// and is also returned as the value: a tuple of NULLs is still a key.
func CompositeKey(fields ...string) KeyFunc {
	return func(row Row) (string, any) {
		parts := make([]string, len(fields))
		for i, f := range fields {
			v := row[f]
			if v == nil {
				parts[i] = "\x00"
				continue
			}
			parts[i] = KeyString(v)
		}
		key := strings.Join(parts, "\x1f")
		return key, key
	}
}

// IndexOptions carries the context attached to a DuplicateKeyError.
type IndexOptions struct {
	Store  string
	Field  string
	Extent string
}

// Index converts rows into records keyed by keyFn, preserving row order.
// A key seen twice is rejected with a DuplicateKeyError instead of silently
// picking one of the rows. Rows without a key can match nothing and are
// left out.
func Index(rows []Row, keyFn KeyFunc, opts IndexOptions) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		key, value := keyFn(row)
		if value == nil {
			continue
		}
		if _, dup := seen[key]; dup {
			return nil, &DuplicateKeyError{
				Stage:  StageDiff,
				Store:  opts.Store,
				Extent: opts.Extent,
				Field:  opts.Field,
				Key:    key,
			}
		}
		seen[key] = struct{}{}
		records = append(records, Record{Key: key, KeyValue: value, Row: row})
	}

	return records, nil
}

// Diff compares source records against target records restricted to the
// same scope. Source keys absent from the target become additions; for keys
// on both sides every listed field whose values differ becomes an update
// carrying the target's old value and the source's new value.
//
// Both inputs must already be unique on their key (see Index). Additions
// keep source order and updates are ordered by target order, then by fields.
func Diff(source, target []Record, fields []string) *Delta {
	delta := &Delta{
		Additions: []Record{},
		Updates:   []Update{},
	}

	sourceByKey := make(map[string]Record, len(source))
	for _, rec := range source {
		sourceByKey[rec.Key] = rec
	}

	targetKeys := make(map[string]struct{}, len(target))
	for _, rec := range target {
		targetKeys[rec.Key] = struct{}{}
	}

	for _, rec := range source {
		if _, ok := targetKeys[rec.Key]; !ok {
			delta.Additions = append(delta.Additions, rec)
		}
	}

	for _, trec := range target {
		srec, ok := sourceByKey[trec.Key]
		if !ok {
			continue
		}
		for _, field := range fields {
			newVal := srec.Row[field]
			oldVal := trec.Row[field]
			if ValuesEqual(oldVal, newVal) {
				continue
			}
			delta.Updates = append(delta.Updates, Update{
				Key:      trec.Key,
				KeyValue: trec.KeyValue,
				Field:    field,
				Old:      oldVal,
				New:      newVal,
			})
		}
	}

	return delta
}

// DiffRows indexes both sides and diffs them in one call.
func DiffRows(source, target []Row, sourceKey, targetKey KeyFunc, fields []string, sourceOpts, targetOpts IndexOptions) (*Delta, error) {
	src, err := Index(source, sourceKey, sourceOpts)
	if err != nil {
		return nil, err
	}
	tgt, err := Index(target, targetKey, targetOpts)
	if err != nil {
		return nil, err
	}
	delta := Diff(src, tgt, fields)
	delta.Extent = targetOpts.Extent
	return delta, nil
}
