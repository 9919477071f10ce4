package registry

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/muni-codes/internal/normalize"
)

// province_aliases.csv is a hand-curated mapping from source spellings
// (SEPE sheet names, historical and co-official language forms) to the
// canonical INE province name. Extensible by appending rows.
//
//go:embed province_aliases.csv
var provinceAliasCSV []byte

// DefaultAliases parses the bundled province alias table. Keys are
// normalized source variants, values are the canonical INE province name
// exactly as it appears in the province mapping.
func DefaultAliases() (map[string]string, error) {
	return ParseAliases(provinceAliasCSV)
}

// ParseAliases reads an alias table from CSV bytes with a
// source_variant,canonical_name header.
func ParseAliases(data []byte) (map[string]string, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse province alias table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("province alias table is empty")
	}

	aliases := make(map[string]string, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, fmt.Errorf("alias row %d has %d columns, want 2", i+2, len(rec))
		}
		variant := normalize.Name(rec[0])
		canonical := strings.TrimSpace(rec[1])
		if variant == "" || canonical == "" {
			return nil, fmt.Errorf("alias row %d has an empty field", i+2)
		}
		aliases[variant] = canonical
	}
	return aliases, nil
}

// ResolveProvince maps a free-text province name to its INE code.
// Direct normalized match against the registry's province names is tried
// first, then the alias table. A false return means "province unknown";
// callers must not widen their search in response.
func (r *Registry) ResolveProvince(raw string) (int, bool) {
	n := normalize.Name(raw)
	if n == "" {
		return 0, false
	}
	if code, ok := r.provinceByName[n]; ok {
		return code, true
	}
	canonical, ok := r.aliases[n]
	if !ok {
		return 0, false
	}
	code, ok := r.provinceByName[normalize.Name(canonical)]
	return code, ok
}
