package engine

import (
	"github.com/muni-codes/internal/normalize"
)

// CompletionKey scopes a completion lookup to a province so the same
// village name in two provinces never cross-fills.
type CompletionKey struct {
	Name     string // normalized municipality name
	Province string // normalized raw province
}

// BuildCompletionTable derives a normalized-name -> code mapping from
// rows in the same feed that already carry both. The mapping is strictly
// one-to-one: a name seen with two distinct codes, or a code seen with
// two distinct names, is excluded entirely. Ambiguous completions are
// never guessed.
func BuildCompletionTable(refs []RawPlaceReference) map[string]int {
	nameToCodes := make(map[string]map[int]struct{})
	codeToNames := make(map[int]map[string]struct{})

	for _, r := range refs {
		if r.MunicipalityCode == 0 {
			continue
		}
		n := normalize.Name(r.RawName)
		if n == "" {
			continue
		}
		if nameToCodes[n] == nil {
			nameToCodes[n] = make(map[int]struct{})
		}
		nameToCodes[n][r.MunicipalityCode] = struct{}{}
		if codeToNames[r.MunicipalityCode] == nil {
			codeToNames[r.MunicipalityCode] = make(map[string]struct{})
		}
		codeToNames[r.MunicipalityCode][n] = struct{}{}
	}

	table := make(map[string]int)
	for name, codes := range nameToCodes {
		if len(codes) != 1 {
			continue
		}
		var code int
		for c := range codes {
			code = c
		}
		if len(codeToNames[code]) != 1 {
			continue
		}
		table[name] = code
	}
	return table
}

// BuildProvinceCompletionTable is the province-aware variant: one
// distinct code per (name, province) pair. The reverse check still runs
// feed-wide, so a code shared across spellings stays excluded.
func BuildProvinceCompletionTable(refs []RawPlaceReference) map[CompletionKey]int {
	keyToCodes := make(map[CompletionKey]map[int]struct{})
	codeToNames := make(map[int]map[string]struct{})

	for _, r := range refs {
		if r.MunicipalityCode == 0 {
			continue
		}
		n := normalize.Name(r.RawName)
		if n == "" {
			continue
		}
		key := CompletionKey{Name: n, Province: normalize.Name(r.RawProvince)}
		if keyToCodes[key] == nil {
			keyToCodes[key] = make(map[int]struct{})
		}
		keyToCodes[key][r.MunicipalityCode] = struct{}{}
		if codeToNames[r.MunicipalityCode] == nil {
			codeToNames[r.MunicipalityCode] = make(map[string]struct{})
		}
		codeToNames[r.MunicipalityCode][n] = struct{}{}
	}

	table := make(map[CompletionKey]int)
	for key, codes := range keyToCodes {
		if len(codes) != 1 {
			continue
		}
		var code int
		for c := range codes {
			code = c
		}
		if len(codeToNames[code]) != 1 {
			continue
		}
		table[key] = code
	}
	return table
}
