// Package record defines the in-flight unit MiniDP streams through a
// pipeline: an unordered JSON object, plus the per-output envelope a
// MapProcessor emits for each input record.
package record

// Record is an unordered mapping from string keys to arbitrary JSON
// values. Records are independent; there are no cross-record references.
type Record map[string]any

// Clone returns a shallow copy of r: top-level keys are copied into a new
// map, but nested values (slices, maps) are shared with the original.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// DeepCopy returns a deep copy of v, the way DuplicateFields requires when
// it copies a field's value into a new key: mutating the copy must never
// observably mutate the source.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = DeepCopy(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = DeepCopy(vv)
		}
		return out
	default:
		return v
	}
}

// DataEntry is the unit a MapProcessor emits for each input record: either
// a Record (Dropped == false) or the explicit "dropped" sentinel (Dropped
// == true), alongside an optional Metrics side-channel that is preserved
// even when the record itself is dropped.
type DataEntry struct {
	Data    Record
	Dropped bool
	Metrics map[string]any
}

// Keep wraps a Record as a non-dropped DataEntry.
func Keep(r Record) DataEntry {
	return DataEntry{Data: r}
}

// Drop returns the "dropped" sentinel, optionally carrying metrics.
func Drop(metrics map[string]any) DataEntry {
	return DataEntry{Dropped: true, Metrics: metrics}
}
