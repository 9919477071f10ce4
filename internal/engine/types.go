// Package engine resolves municipality names from source feeds against
// the INE registry: exact and completion lookups first, then normalized
// substring matching with confidence scoring.
package engine

// Resolution methods, in the order the pipeline tries them. The first
// three are exact; the substring tiers come from the fuzzy matcher.
const (
	MethodOriginal         = "original"
	MethodSelfLookup       = "sepe_lookup"
	MethodRegistryExact    = "ine_reference"
	MethodExactNormalized  = "exact_normalized"
	MethodSubstring        = "substring_match"
	MethodReverseSubstring = "reverse_substring"
	MethodWordMatch        = "word_match"
	MethodNotFound         = "not_found"
)

// Confidence scores per method. Substring directions are asymmetric: a
// source name abbreviating the registry's fuller form is more reliable
// than the other way around.
const (
	ConfidenceExact            = 100
	ConfidenceSubstring        = 85
	ConfidenceReverseSubstring = 80
	ConfidenceWordMatch        = 75

	// MinConfidence is the hard floor; no candidate below it is emitted.
	MinConfidence = 70
)

// Minimum normalized lengths before a substring tier may fire, so short
// fragments like "LA" cannot match half a province.
const (
	minSubstringLen = 4
	minWordMatchLen = 6
)

// RawPlaceReference is one distinct (name, province) combination from a
// source feed. A zero MunicipalityCode means the code is absent; both
// NULL and 0 sentinels from the feed map to 0 here.
type RawPlaceReference struct {
	RawName          string
	RawProvince      string
	MunicipalityCode int
}

// Candidate is a scored potential match produced by the fuzzy matcher.
type Candidate struct {
	RawName          string
	RawProvince      string
	MunicipalityCode int
	RegistryName     string
	Method           string
	Confidence       int
}

// ResolvedMatch is the pipeline output for one (raw_name, raw_province)
// key. MunicipalityCode is 0 when Method is "not_found"; unresolved keys
// are always emitted so downstream consumers can count them.
type ResolvedMatch struct {
	RawName          string
	RawProvince      string
	MunicipalityCode int
	Method           string
	Confidence       int
}

// Resolved reports whether the match carries a municipality code.
func (m ResolvedMatch) Resolved() bool {
	return m.Method != MethodNotFound && m.MunicipalityCode != 0
}
