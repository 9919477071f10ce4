package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderIndexCaseInsensitive(t *testing.T) {
	idx := headerIndex([]string{"CODAUTO", " CPro ", "cmun", "DC", "NOMBRE"})

	assert.Equal(t, 0, idx["codauto"])
	assert.Equal(t, 1, idx["cpro"])
	assert.Equal(t, 2, idx["cmun"])
	assert.Equal(t, 4, idx["nombre"])
}

func TestFieldMissingColumnOrShortRecord(t *testing.T) {
	idx := headerIndex([]string{"a", "b", "c"})

	assert.Equal(t, "x", field([]string{" x ", "y", "z"}, idx, "a"))
	assert.Equal(t, "", field([]string{"x"}, idx, "c"))
	assert.Equal(t, "", field([]string{"x", "y", "z"}, idx, "nope"))
}

func TestIntField(t *testing.T) {
	idx := headerIndex([]string{"code", "name"})

	v, err := intField([]string{"38", "Adeje"}, idx, "code")
	require.NoError(t, err)
	assert.Equal(t, 38, v)

	v, err = intField([]string{"", "Adeje"}, idx, "code")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	_, err = intField([]string{"abc", "Adeje"}, idx, "code")
	assert.Error(t, err)
}
