package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgonRoundtrip(t *testing.T) {
	a := New()

	encoded, err := a.GenerateFromPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$")

	ok, err := a.VerifyPasswd("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPasswd("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgonRejectsGarbageHash(t *testing.T) {
	a := New()

	_, err := a.VerifyPasswd("password", "not-a-phc-string")
	assert.Error(t, err)
}

func TestArgonHashesAreSalted(t *testing.T) {
	a := New()

	first, err := a.GenerateFromPassword("password123")
	require.NoError(t, err)

	second, err := a.GenerateFromPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
