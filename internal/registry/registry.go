// Package registry holds the authoritative INE municipality dictionary
// in memory for one resolution run. The registry is loaded once, indexed
// by province, and treated as read-only shared state afterwards.
package registry

import (
	"fmt"
	"sort"

	"github.com/muni-codes/internal/normalize"
)

// Entry is one row of the INE municipality dictionary.
// MunicipalityCode is the combined national code (CPRO*1000 + CMUN),
// the form SEPE files carry, not the bare within-province CMUN.
type Entry struct {
	AutonomousCommunityCode int
	ProvinceCode            int
	MunicipalityCode        int
	CheckDigit              int
	Name                    string
}

// Province is one row of the INE province / autonomous community mapping.
type Province struct {
	Code                    int
	Name                    string
	AutonomousCommunityCode int
	AutonomousCommunityName string
}

// IndexedEntry pairs a registry entry with its precomputed normalized
// name so matchers never re-normalize the reference set per lookup.
type IndexedEntry struct {
	Entry
	Norm string
}

// Registry is the read-only reference set plus lookup indexes.
type Registry struct {
	provinces      []Province
	byProvince     map[int][]IndexedEntry
	nameIndex      map[int]map[string]Entry // province -> normalized name -> entry
	provinceByName map[string]int           // normalized province name -> code
	aliases        map[string]string        // normalized source variant -> canonical province name
	count          int
}

// New builds a registry from dictionary entries and the province mapping.
// Callers provide the alias table (see DefaultAliases) as an injected
// asset rather than hidden package state. The entry set must already be
// unique on (province_code, municipality_code); New reports a violation
// rather than deduplicating.
func New(entries []Entry, provinces []Province, aliases map[string]string) (*Registry, error) {
	r := &Registry{
		provinces:      provinces,
		byProvince:     make(map[int][]IndexedEntry),
		nameIndex:      make(map[int]map[string]Entry),
		provinceByName: make(map[string]int, len(provinces)),
		aliases:        aliases,
		count:          len(entries),
	}

	seen := make(map[[2]int]bool, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("registry entry %d/%d has an empty name", e.ProvinceCode, e.MunicipalityCode)
		}
		key := [2]int{e.ProvinceCode, e.MunicipalityCode}
		if seen[key] {
			return nil, fmt.Errorf("duplicate registry entry for province %d municipality %d", e.ProvinceCode, e.MunicipalityCode)
		}
		seen[key] = true

		n := normalize.Name(e.Name)
		r.byProvince[e.ProvinceCode] = append(r.byProvince[e.ProvinceCode], IndexedEntry{Entry: e, Norm: n})

		idx := r.nameIndex[e.ProvinceCode]
		if idx == nil {
			idx = make(map[string]Entry)
			r.nameIndex[e.ProvinceCode] = idx
		}
		if _, dup := idx[n]; !dup {
			idx[n] = e
		}
	}

	// Stable per-province order so candidate generation is deterministic.
	for code := range r.byProvince {
		list := r.byProvince[code]
		sort.Slice(list, func(i, j int) bool {
			return list[i].MunicipalityCode < list[j].MunicipalityCode
		})
	}

	for _, p := range provinces {
		r.provinceByName[normalize.Name(p.Name)] = p.Code
	}

	return r, nil
}

// Lookup finds a municipality by exact normalized name within a province.
func (r *Registry) Lookup(normName string, provinceCode int) (Entry, bool) {
	if normName == "" {
		return Entry{}, false
	}
	idx := r.nameIndex[provinceCode]
	if idx == nil {
		return Entry{}, false
	}
	e, ok := idx[normName]
	return e, ok
}

// ProvinceEntries returns all registry entries for a province, with
// precomputed normalized names, ordered by municipality code.
func (r *Registry) ProvinceEntries(provinceCode int) []IndexedEntry {
	return r.byProvince[provinceCode]
}

// Provinces returns the province mapping rows.
func (r *Registry) Provinces() []Province {
	return r.provinces
}

// Len returns the number of municipality entries.
func (r *Registry) Len() int {
	return r.count
}
