package builtins

import (
	"sort"
	"time"

	"minidp/manifest"
	"minidp/processor"
	"minidp/registry"
)

// SortManifest is non-streaming: it loads the whole manifest, sorts by
// attribute, and writes the result in order. A record missing the sort
// attribute sorts last in ascending order, first in descending order.
type SortManifest struct {
	processor.Base
	attribute  string
	descending bool
}

func newSortManifest(params map[string]any) (processor.Processor, error) {
	input, output, rest := processor.ExtractManifests(params)
	attr, err := requiredString(rest, "attribute_sort_by", "SortManifest")
	if err != nil {
		return nil, err
	}
	descending := optionalBool(rest, "descending", false)

	p := &SortManifest{attribute: attr, descending: descending}
	p.InputPath, p.OutputPath = input, output
	return p, nil
}

func (p *SortManifest) Process(rc *processor.RunContext) (processor.RunStats, error) {
	start := time.Now()
	recs, err := manifest.ReadAll(p.Input())
	if err != nil {
		return processor.RunStats{}, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		vi, oki := recs[i][p.attribute]
		vj, okj := recs[j][p.attribute]
		if !oki && !okj {
			return false
		}
		if !oki {
			// missing sorts last ascending, first descending.
			return p.descending
		}
		if !okj {
			return !p.descending
		}
		less, ok := compare(vi, vj)
		if !ok {
			return false
		}
		if p.descending {
			return !less
		}
		return less
	})

	if err := manifest.WriteAll(p.Output(), recs); err != nil {
		return processor.RunStats{}, err
	}

	return processor.RunStats{
		In:   len(recs),
		Out:  len(recs),
		Time: time.Since(start),
	}, nil
}

// compare reports whether a < b for the JSON scalar types a sort
// attribute is realistically populated with. Incomparable types report
// ok == false and leave relative order unchanged.
func compare(a, b any) (less bool, ok bool) {
	switch av := a.(type) {
	case float64:
		bv, ok2 := b.(float64)
		if !ok2 {
			return false, false
		}
		return av < bv, true
	case string:
		bv, ok2 := b.(string)
		if !ok2 {
			return false, false
		}
		return av < bv, true
	case bool:
		bv, ok2 := b.(bool)
		if !ok2 {
			return false, false
		}
		return !av && bv, true
	default:
		return false, false
	}
}

func init() {
	registry.Register("SortManifest", newSortManifest)
}
