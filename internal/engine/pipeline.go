package engine

import (
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/muni-codes/internal/normalize"
	"github.com/muni-codes/internal/registry"
)

// Resolver runs the full resolution pipeline for one batch of source
// rows. The registry is read-only shared state; keys are independent, so
// the batch is partitioned across workers with no ordering between them.
type Resolver struct {
	Registry      *registry.Registry
	Workers       int
	MinConfidence int

	fuzzy *FuzzyMatcher
}

// NewResolver creates a resolver with default worker count and the
// standard confidence floor.
func NewResolver(reg *registry.Registry) *Resolver {
	return &Resolver{
		Registry:      reg,
		Workers:       4,
		MinConfidence: MinConfidence,
		fuzzy:         NewFuzzyMatcher(reg),
	}
}

type refKey struct {
	name     string
	province string
}

// Resolve maps every distinct (raw_name, raw_province) key to a
// ResolvedMatch, trying methods in priority order and short-circuiting
// on the first success. Unresolved keys come back as not_found rather
// than being dropped; malformed rows (blank name or province) are
// skipped. Output is sorted by key, so identical inputs always produce
// identical output.
func (r *Resolver) Resolve(refs []RawPlaceReference) []ResolvedMatch {
	completion := BuildProvinceCompletionTable(refs)

	var order []refKey
	codes := make(map[refKey]int)
	for _, ref := range refs {
		if strings.TrimSpace(ref.RawName) == "" || strings.TrimSpace(ref.RawProvince) == "" {
			continue
		}
		k := refKey{name: ref.RawName, province: ref.RawProvince}
		if _, seen := codes[k]; !seen {
			codes[k] = ref.MunicipalityCode
			order = append(order, k)
		} else if codes[k] == 0 && ref.MunicipalityCode != 0 {
			codes[k] = ref.MunicipalityCode
		}
	}

	results := make([]ResolvedMatch, len(order))

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	chunk := (len(order) + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}

	var g errgroup.Group
	for start := 0; start < len(order); start += chunk {
		end := start + chunk
		if end > len(order) {
			end = len(order)
		}
		start, end := start, end
		g.Go(func() error {
			for i := start; i < end; i++ {
				results[i] = r.resolveKey(order[i], codes[order[i]], completion)
			}
			return nil
		})
	}
	// Workers only write disjoint slice ranges and never fail.
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].RawName != results[j].RawName {
			return results[i].RawName < results[j].RawName
		}
		return results[i].RawProvince < results[j].RawProvince
	})

	return results
}

// resolveKey walks one key through the method ladder.
func (r *Resolver) resolveKey(k refKey, originalCode int, completion map[CompletionKey]int) ResolvedMatch {
	m := ResolvedMatch{RawName: k.name, RawProvince: k.province}

	// 1. The source row already carries a usable code.
	if originalCode != 0 {
		m.MunicipalityCode = originalCode
		m.Method = MethodOriginal
		m.Confidence = ConfidenceExact
		return m
	}

	normName := normalize.Name(k.name)
	normProv := normalize.Name(k.province)

	// 2. Same-source completion: another row with this name carries the
	// code, one-to-one only.
	if code, ok := completion[CompletionKey{Name: normName, Province: normProv}]; ok {
		m.MunicipalityCode = code
		m.Method = MethodSelfLookup
		m.Confidence = ConfidenceExact
		return m
	}

	// Steps 3 and 4 need a province scope. Unknown province is a data
	// state, not an error: fall straight through to not_found.
	if provinceCode, ok := r.Registry.ResolveProvince(k.province); ok {
		// 3. Exact normalized lookup against the registry.
		if entry, found := r.Registry.Lookup(normName, provinceCode); found {
			m.MunicipalityCode = entry.MunicipalityCode
			m.Method = MethodRegistryExact
			m.Confidence = ConfidenceExact
			return m
		}

		// 4. Fuzzy substring matching.
		if cand, found := r.fuzzy.Match(k.name, provinceCode); found && cand.Confidence >= r.MinConfidence {
			m.MunicipalityCode = cand.MunicipalityCode
			m.Method = cand.Method
			m.Confidence = cand.Confidence
			return m
		}
	}

	// 5. Terminal: reported, never fatal.
	m.Method = MethodNotFound
	return m
}
