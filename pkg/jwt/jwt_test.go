package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	token, err := Generate("s3cret", "op1", RoleOperator, "trazabilidad-api", 5)
	require.NoError(t, err)

	userID, role, err := Parse("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "op1", userID)
	assert.Equal(t, RoleOperator, role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := Generate("s3cret", "op1", RoleAdmin, "trazabilidad-api", 5)
	require.NoError(t, err)

	_, _, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := Generate("s3cret", "op1", RoleAdmin, "trazabilidad-api", -1)
	require.NoError(t, err)

	_, _, err = Parse("s3cret", token)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", "op1", RoleAdmin, "x", 5)
	assert.Error(t, err)
	_, _, err = Parse("", "token")
	assert.Error(t, err)
}
