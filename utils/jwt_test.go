package utils_test

import (
	"testing"

	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := utils.GenerateToken(42, "operario")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := utils.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "operario", claims.Role)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := utils.ParseToken("no-es-un-jwt")
	assert.Error(t, err)

	// Un token manipulado pierde la firma.
	token, _ := utils.GenerateToken(42, "operario")
	_, err = utils.ParseToken(token + "x")
	assert.Error(t, err)
}
