package engine

import (
	"sort"
	"strings"

	"github.com/muni-codes/internal/normalize"
	"github.com/muni-codes/internal/registry"
)

// FuzzyMatcher resolves names the exact methods missed, by normalized
// substring containment against the registry within a resolved province.
type FuzzyMatcher struct {
	reg *registry.Registry
}

// NewFuzzyMatcher creates a fuzzy matcher over a loaded registry.
func NewFuzzyMatcher(reg *registry.Registry) *FuzzyMatcher {
	return &FuzzyMatcher{reg: reg}
}

// methodRank orders methods for tie-breaking when confidences are equal;
// exact_normalized always wins over the substring tiers.
var methodRank = map[string]int{
	MethodExactNormalized:  0,
	MethodSubstring:        1,
	MethodReverseSubstring: 2,
	MethodWordMatch:        3,
}

// Match generates candidates for a raw name against every registry entry
// in the province and returns the single winner, or false when nothing
// clears the confidence floor. The province must already be resolved;
// fuzzy matching never searches unscoped.
func (fm *FuzzyMatcher) Match(rawName string, provinceCode int) (Candidate, bool) {
	norm := normalize.Name(rawName)
	if norm == "" {
		return Candidate{}, false
	}
	comparable := normalize.ComparableKey(norm)

	var candidates []Candidate
	for _, entry := range fm.reg.ProvinceEntries(provinceCode) {
		cand, ok := fm.score(rawName, norm, comparable, entry)
		if !ok || cand.Confidence < MinConfidence {
			continue
		}
		candidates = append(candidates, cand)
	}
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if methodRank[a.Method] != methodRank[b.Method] {
			return methodRank[a.Method] < methodRank[b.Method]
		}
		// Shorter registry name wins: the more specific, minimal match.
		if len(a.RegistryName) != len(b.RegistryName) {
			return len(a.RegistryName) < len(b.RegistryName)
		}
		return a.MunicipalityCode < b.MunicipalityCode
	})

	return candidates[0], true
}

// score evaluates one (raw name, registry entry) pair and returns the
// strongest applicable tier.
func (fm *FuzzyMatcher) score(rawName, norm, comparable string, entry registry.IndexedEntry) (Candidate, bool) {
	cand := Candidate{
		RawName:          rawName,
		MunicipalityCode: entry.MunicipalityCode,
		RegistryName:     entry.Name,
	}

	switch {
	case norm == entry.Norm || comparable == normalize.ComparableKey(entry.Norm):
		// Connector-insensitive equality counts as exact: SEPE drops
		// DE/DEL where the registry keeps them.
		cand.Method = MethodExactNormalized
		cand.Confidence = ConfidenceExact
	case len(norm) >= minSubstringLen && strings.Contains(entry.Norm, norm):
		cand.Method = MethodSubstring
		cand.Confidence = ConfidenceSubstring
	case len(entry.Norm) >= minSubstringLen && strings.Contains(norm, entry.Norm):
		cand.Method = MethodReverseSubstring
		cand.Confidence = ConfidenceReverseSubstring
	case len(norm) >= minWordMatchLen && strings.Contains(entry.Norm, norm):
		// Kept for parity with the original heuristic tiers; shadowed by
		// substring_match for any name long enough to qualify.
		cand.Method = MethodWordMatch
		cand.Confidence = ConfidenceWordMatch
	default:
		return Candidate{}, false
	}

	return cand, true
}
