package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/workshop-grades/internal/textnorm"
)

func TestKey(t *testing.T) {
	cases := map[string]string{
		"Ángel Fernández Peña": "angel fernandez pena",
		"ÓSCAR":                "oscar",
		"Group 2_1":            "group 2_1",
		"":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, textnorm.Key(in), "Key(%q)", in)
	}
}

func TestSortStrings_IgnoresAccentsAndCase(t *testing.T) {
	names := []string{"ángel", "Marta", "Óscar", "María", "Elena", "ana"}
	textnorm.SortStrings(names)
	assert.Equal(t, []string{"ana", "ángel", "Elena", "María", "Marta", "Óscar"}, names)
}

func TestLess_AccentedFirstLetter(t *testing.T) {
	assert.True(t, textnorm.Less("Ángel", "Zoe"))
	assert.False(t, textnorm.Less("Zoe", "Ángel"))
}

func TestCompare_SameKeyIsDeterministic(t *testing.T) {
	assert.NotZero(t, textnorm.Compare("Ana", "ana"))
	assert.Equal(t, -textnorm.Compare("Ana", "ana"), textnorm.Compare("ana", "Ana"))
	assert.Zero(t, textnorm.Compare("ana", "ana"))
}
