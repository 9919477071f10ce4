package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muni-codes/internal/registry"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	provinces := []registry.Province{
		{Code: 3, Name: "Alicante/Alacant", AutonomousCommunityCode: 10, AutonomousCommunityName: "Comunitat Valenciana"},
		{Code: 5, Name: "Ávila", AutonomousCommunityCode: 7, AutonomousCommunityName: "Castilla y León"},
		{Code: 36, Name: "Pontevedra", AutonomousCommunityCode: 12, AutonomousCommunityName: "Galicia"},
		{Code: 38, Name: "Santa Cruz de Tenerife", AutonomousCommunityCode: 5, AutonomousCommunityName: "Canarias"},
	}

	entries := []registry.Entry{
		{AutonomousCommunityCode: 10, ProvinceCode: 3, MunicipalityCode: 3014, CheckDigit: 2, Name: "Alicante/Alacant"},
		{AutonomousCommunityCode: 10, ProvinceCode: 3, MunicipalityCode: 3031, CheckDigit: 5, Name: "Benidorm"},
		{AutonomousCommunityCode: 7, ProvinceCode: 5, MunicipalityCode: 5019, CheckDigit: 4, Name: "Ávila"},
		{AutonomousCommunityCode: 12, ProvinceCode: 36, MunicipalityCode: 36045, CheckDigit: 2, Name: "Redondela"},
		{AutonomousCommunityCode: 12, ProvinceCode: 36, MunicipalityCode: 36901, CheckDigit: 1, Name: "Redondela do Monte"},
		{AutonomousCommunityCode: 5, ProvinceCode: 38, MunicipalityCode: 38001, CheckDigit: 4, Name: "Adeje"},
		{AutonomousCommunityCode: 5, ProvinceCode: 38, MunicipalityCode: 38038, CheckDigit: 6, Name: "Santa Cruz de Tenerife"},
		{AutonomousCommunityCode: 5, ProvinceCode: 38, MunicipalityCode: 38901, CheckDigit: 2, Name: "Villa de Adeje"},
	}

	aliases, err := registry.DefaultAliases()
	require.NoError(t, err)

	reg, err := registry.New(entries, provinces, aliases)
	require.NoError(t, err)
	return reg
}

func TestFuzzyExactNormalized(t *testing.T) {
	fm := NewFuzzyMatcher(newTestRegistry(t))

	cand, ok := fm.Match("Adeje", 38)
	require.True(t, ok)
	assert.Equal(t, MethodExactNormalized, cand.Method)
	assert.Equal(t, ConfidenceExact, cand.Confidence)
	assert.Equal(t, 38001, cand.MunicipalityCode)
}

func TestFuzzyConnectorInsensitiveExact(t *testing.T) {
	fm := NewFuzzyMatcher(newTestRegistry(t))

	// SEPE drops the DE the registry keeps; still exact, not substring.
	cand, ok := fm.Match("STA CRUZ TENERIFE", 38)
	require.True(t, ok)
	assert.Equal(t, MethodExactNormalized, cand.Method)
	assert.Equal(t, ConfidenceExact, cand.Confidence)
	assert.Equal(t, 38038, cand.MunicipalityCode)
	assert.Equal(t, "Santa Cruz de Tenerife", cand.RegistryName)
}

func TestFuzzySubstringMatch(t *testing.T) {
	fm := NewFuzzyMatcher(newTestRegistry(t))

	// Co-official short form contained in the registry's dual name.
	cand, ok := fm.Match("ALACANT", 3)
	require.True(t, ok)
	assert.Equal(t, MethodSubstring, cand.Method)
	assert.Equal(t, ConfidenceSubstring, cand.Confidence)
	assert.Equal(t, 3014, cand.MunicipalityCode)
}

func TestFuzzyReverseSubstring(t *testing.T) {
	fm := NewFuzzyMatcher(newTestRegistry(t))

	cand, ok := fm.Match("SANTA CRUZ DE TENERIFE CAPITAL", 38)
	require.True(t, ok)
	assert.Equal(t, MethodReverseSubstring, cand.Method)
	assert.Equal(t, ConfidenceReverseSubstring, cand.Confidence)
	assert.Equal(t, 38038, cand.MunicipalityCode)
}

func TestFuzzyExactOutranksSubstring(t *testing.T) {
	fm := NewFuzzyMatcher(newTestRegistry(t))

	// "ADEJE" is exact against Adeje and a substring of Villa de Adeje;
	// the exact candidate must win.
	cand, ok := fm.Match("ADEJE", 38)
	require.True(t, ok)
	assert.Equal(t, MethodExactNormalized, cand.Method)
	assert.Equal(t, 38001, cand.MunicipalityCode)
}

func TestFuzzyTieBreakShorterRegistryName(t *testing.T) {
	fm := NewFuzzyMatcher(newTestRegistry(t))

	// "REDON" is a substring of both Redondela entries at equal
	// confidence; the shorter registry name is the minimal match.
	cand, ok := fm.Match("REDON", 36)
	require.True(t, ok)
	assert.Equal(t, MethodSubstring, cand.Method)
	assert.Equal(t, "Redondela", cand.RegistryName)
	assert.Equal(t, 36045, cand.MunicipalityCode)
}

func TestFuzzyShortNameGuard(t *testing.T) {
	fm := NewFuzzyMatcher(newTestRegistry(t))

	// Fragments below the length guard never reach a substring tier.
	_, ok := fm.Match("LA", 38)
	assert.False(t, ok)

	_, ok = fm.Match("ADE", 38)
	assert.False(t, ok)
}

func TestFuzzyForwardContainmentIsSubstringNotWordMatch(t *testing.T) {
	fm := NewFuzzyMatcher(newTestRegistry(t))

	// Any name long enough for word_match already qualified for
	// substring_match, which scores higher.
	cand, ok := fm.Match("BENIDO", 3)
	require.True(t, ok)
	assert.Equal(t, MethodSubstring, cand.Method)
	assert.Equal(t, 3031, cand.MunicipalityCode)
}

func TestFuzzyNoMatch(t *testing.T) {
	fm := NewFuzzyMatcher(newTestRegistry(t))

	_, ok := fm.Match("XYZQQQ123", 38)
	assert.False(t, ok)

	_, ok = fm.Match("", 38)
	assert.False(t, ok)

	_, ok = fm.Match("ADEJE", 99)
	assert.False(t, ok)
}
