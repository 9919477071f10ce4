package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvinces() []Province {
	return []Province{
		{Code: 3, Name: "Alicante/Alacant", AutonomousCommunityCode: 10, AutonomousCommunityName: "Comunitat Valenciana"},
		{Code: 15, Name: "Coruña, A", AutonomousCommunityCode: 12, AutonomousCommunityName: "Galicia"},
		{Code: 38, Name: "Santa Cruz de Tenerife", AutonomousCommunityCode: 5, AutonomousCommunityName: "Canarias"},
		{Code: 5, Name: "Ávila", AutonomousCommunityCode: 7, AutonomousCommunityName: "Castilla y León"},
	}
}

func testEntries() []Entry {
	return []Entry{
		{AutonomousCommunityCode: 10, ProvinceCode: 3, MunicipalityCode: 3014, Name: "Alicante/Alacant"},
		{AutonomousCommunityCode: 10, ProvinceCode: 3, MunicipalityCode: 3065, Name: "Elche/Elx"},
		{AutonomousCommunityCode: 5, ProvinceCode: 38, MunicipalityCode: 38038, Name: "Santa Cruz de Tenerife"},
		{AutonomousCommunityCode: 5, ProvinceCode: 38, MunicipalityCode: 38023, Name: "Laguna, La"},
		{AutonomousCommunityCode: 7, ProvinceCode: 5, MunicipalityCode: 5019, Name: "Ávila"},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	aliases, err := DefaultAliases()
	require.NoError(t, err)
	reg, err := New(testEntries(), testProvinces(), aliases)
	require.NoError(t, err)
	return reg
}

func TestNewRejectsDuplicates(t *testing.T) {
	entries := testEntries()
	entries = append(entries, Entry{ProvinceCode: 3, MunicipalityCode: 3014, Name: "Duplicate"})

	_, err := New(entries, testProvinces(), map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate registry entry")
}

func TestNewRejectsEmptyName(t *testing.T) {
	entries := []Entry{{ProvinceCode: 1, MunicipalityCode: 1001}}
	_, err := New(entries, nil, map[string]string{})
	require.Error(t, err)
}

func TestLookup(t *testing.T) {
	reg := newTestRegistry(t)

	e, ok := reg.Lookup("SANTA CRUZ DE TENERIFE", 38)
	require.True(t, ok)
	assert.Equal(t, 38038, e.MunicipalityCode)

	// Scoped by province: same name in another province misses.
	_, ok = reg.Lookup("SANTA CRUZ DE TENERIFE", 3)
	assert.False(t, ok)

	// Empty name never matches.
	_, ok = reg.Lookup("", 38)
	assert.False(t, ok)
}

func TestProvinceEntriesOrdered(t *testing.T) {
	reg := newTestRegistry(t)

	entries := reg.ProvinceEntries(38)
	require.Len(t, entries, 2)
	assert.Equal(t, 38023, entries[0].MunicipalityCode)
	assert.Equal(t, 38038, entries[1].MunicipalityCode)
	assert.Equal(t, "LAGUNA LA", entries[0].Norm)
}

func TestResolveProvinceDirect(t *testing.T) {
	reg := newTestRegistry(t)

	code, ok := reg.ResolveProvince("Santa Cruz de Tenerife")
	require.True(t, ok)
	assert.Equal(t, 38, code)

	// Case and accents do not matter.
	code, ok = reg.ResolveProvince("avila")
	require.True(t, ok)
	assert.Equal(t, 5, code)

	// The registry's own inverted form matches directly.
	code, ok = reg.ResolveProvince("CORUÑA A")
	require.True(t, ok)
	assert.Equal(t, 15, code)
}

func TestResolveProvinceAlias(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		raw  string
		want int
	}{
		{"ALICANTE", 3},
		{"ALACANT", 3},
		{"A CORUÑA", 15},
		{"LA CORUÑA", 15},
		{"STA CRUZ TENER.", 38},
		{"SANTA CRUZ TENERIFE", 38},
	}

	for _, tt := range tests {
		code, ok := reg.ResolveProvince(tt.raw)
		require.True(t, ok, "ResolveProvince(%q) should succeed", tt.raw)
		assert.Equal(t, tt.want, code, "ResolveProvince(%q)", tt.raw)
	}
}

func TestResolveProvinceUnknown(t *testing.T) {
	reg := newTestRegistry(t)

	_, ok := reg.ResolveProvince("ATLANTIS")
	assert.False(t, ok)

	_, ok = reg.ResolveProvince("")
	assert.False(t, ok)
}

func TestDefaultAliasesParse(t *testing.T) {
	aliases, err := DefaultAliases()
	require.NoError(t, err)
	assert.NotEmpty(t, aliases)
	assert.Equal(t, "Alicante/Alacant", aliases["ALICANTE"])
	assert.Equal(t, "Coruña, A", aliases["A CORUNA"])
}

func TestParseAliasesRejectsMalformed(t *testing.T) {
	_, err := ParseAliases([]byte("source_variant,canonical_name\nFOO,\n"))
	require.Error(t, err)
}
