package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanRegistry(t *testing.T) {
	reg, err := New(
		[]Entry{{AutonomousCommunityCode: 5, ProvinceCode: 38, MunicipalityCode: 38001, CheckDigit: 4, Name: "Adeje"}},
		[]Province{{Code: 38, Name: "Santa Cruz de Tenerife", AutonomousCommunityCode: 5, AutonomousCommunityName: "Canarias"}},
		map[string]string{"TENERIFE": "Santa Cruz de Tenerife"},
	)
	require.NoError(t, err)

	assert.Empty(t, reg.Validate())
}

func TestValidateCodeRanges(t *testing.T) {
	reg, err := New(
		[]Entry{{AutonomousCommunityCode: 20, ProvinceCode: 53, MunicipalityCode: 53001, Name: "Nowhere"}},
		[]Province{
			{Code: 53, Name: "Bad Province", AutonomousCommunityCode: 20, AutonomousCommunityName: "Bad Community"},
		},
		nil,
	)
	require.NoError(t, err)

	issues := reg.Validate()
	require.Len(t, issues, 3)
	for _, issue := range issues {
		assert.Equal(t, "error", issue.Severity)
	}
}

func TestValidateOrphanMunicipality(t *testing.T) {
	reg, err := New(
		[]Entry{{AutonomousCommunityCode: 5, ProvinceCode: 38, MunicipalityCode: 38001, Name: "Adeje"}},
		[]Province{{Code: 3, Name: "Alicante/Alacant", AutonomousCommunityCode: 10, AutonomousCommunityName: "Comunitat Valenciana"}},
		nil,
	)
	require.NoError(t, err)

	issues := reg.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, "error", issues[0].Severity)
	assert.Contains(t, issues[0].Message, "unknown province code 38")
}

func TestValidateDanglingAlias(t *testing.T) {
	reg, err := New(
		nil,
		[]Province{{Code: 38, Name: "Santa Cruz de Tenerife", AutonomousCommunityCode: 5, AutonomousCommunityName: "Canarias"}},
		map[string]string{"TENERIFE": "Tenerrife"},
	)
	require.NoError(t, err)

	issues := reg.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, "warning", issues[0].Severity)
}
