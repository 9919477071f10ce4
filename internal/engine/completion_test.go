package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionTableOneToOne(t *testing.T) {
	refs := []RawPlaceReference{
		{RawName: "Adeje", RawProvince: "Santa Cruz de Tenerife", MunicipalityCode: 1},
		{RawName: "ADEJE", RawProvince: "Santa Cruz de Tenerife", MunicipalityCode: 0},
		{RawName: "Benidorm", RawProvince: "Alicante", MunicipalityCode: 31},
	}

	table := BuildCompletionTable(refs)
	assert.Equal(t, 1, table["ADEJE"])
	assert.Equal(t, 31, table["BENIDORM"])
	assert.Len(t, table, 2)
}

func TestCompletionTableAmbiguousNameExcluded(t *testing.T) {
	// One name seen with two codes: never guessed.
	refs := []RawPlaceReference{
		{RawName: "Mojados", RawProvince: "Valladolid", MunicipalityCode: 92},
		{RawName: "Mojados", RawProvince: "Valladolid", MunicipalityCode: 93},
	}

	table := BuildCompletionTable(refs)
	assert.Empty(t, table)
}

func TestCompletionTableAmbiguousCodeExcluded(t *testing.T) {
	// One code seen under two spellings: reverse direction also strict.
	refs := []RawPlaceReference{
		{RawName: "Alicante", RawProvince: "Alicante", MunicipalityCode: 14},
		{RawName: "Alacant", RawProvince: "Alicante", MunicipalityCode: 14},
	}

	table := BuildCompletionTable(refs)
	assert.Empty(t, table)
}

func TestCompletionTableSkipsBlankAndCodeless(t *testing.T) {
	refs := []RawPlaceReference{
		{RawName: "", RawProvince: "Ávila", MunicipalityCode: 19},
		{RawName: "Adeje", RawProvince: "Santa Cruz de Tenerife", MunicipalityCode: 0},
	}

	table := BuildCompletionTable(refs)
	assert.Empty(t, table)
}

func TestProvinceCompletionTableScoping(t *testing.T) {
	// The same village name in two provinces keeps both mappings because
	// the key carries the province.
	refs := []RawPlaceReference{
		{RawName: "Villanueva", RawProvince: "Ávila", MunicipalityCode: 130},
		{RawName: "Villanueva", RawProvince: "Córdoba", MunicipalityCode: 66},
	}

	table := BuildProvinceCompletionTable(refs)
	assert.Equal(t, 130, table[CompletionKey{Name: "VILLANUEVA", Province: "AVILA"}])
	assert.Equal(t, 66, table[CompletionKey{Name: "VILLANUEVA", Province: "CORDOBA"}])

	// The flat table rejects the same rows: one name, two codes.
	assert.Empty(t, BuildCompletionTable(refs))
}

func TestProvinceCompletionTableAmbiguityWithinProvince(t *testing.T) {
	refs := []RawPlaceReference{
		{RawName: "Mojados", RawProvince: "Valladolid", MunicipalityCode: 92},
		{RawName: "Mojados", RawProvince: "Valladolid", MunicipalityCode: 93},
		{RawName: "Adeje", RawProvince: "Santa Cruz de Tenerife", MunicipalityCode: 1},
	}

	table := BuildProvinceCompletionTable(refs)
	_, ambiguous := table[CompletionKey{Name: "MOJADOS", Province: "VALLADOLID"}]
	assert.False(t, ambiguous)
	assert.Equal(t, 1, table[CompletionKey{Name: "ADEJE", Province: "SANTA CRUZ DE TENERIFE"}])
}
