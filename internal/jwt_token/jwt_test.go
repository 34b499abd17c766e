package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vms/pkg/domain-errors"
)

var jwtService = NewJWTService("test-signing-key", "test-issuer")
var sessionID = uuid.New()
var expiresIn = time.Hour

func Test_GenerateSessionToken(t *testing.T) {
	token, expiresAt, err := jwtService.GenerateSessionToken(42, sessionID, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(expiresIn), expiresAt, time.Minute)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	id, err := claims.VolunteerID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, sessionID.String(), claims.SessionID)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, _, err := jwtService.GenerateSessionToken(42, sessionID, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token has expired")
}

func Test_ValidateToken_WrongKeyOrIssuer(t *testing.T) {
	token, _, err := NewJWTService("other-key", "test-issuer").GenerateSessionToken(42, sessionID, expiresIn)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	token, _, err = NewJWTService("test-signing-key", "someone-else").GenerateSessionToken(42, sessionID, expiresIn)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Adapter(t *testing.T) {
	token, _, err := jwtService.GenerateSessionToken(7, sessionID, expiresIn)
	require.NoError(t, err)

	claims, err := NewSessionValidator(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.VolunteerID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
}
