package security_test

import (
	"testing"

	security "github.com/goliatone/go-security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordEncoder(t *testing.T) {
	encoder := security.NewPasswordEncoder(bcrypt.MinCost)

	hash, err := encoder.Encode("s3cret-Password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-Password", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.NoError(t, encoder.Matches("s3cret-Password", hash))
	assert.ErrorIs(t, encoder.Matches("wrong", hash), security.ErrMismatchedHashAndPassword)
}

func TestPasswordEncoderRejectsEmptyPassword(t *testing.T) {
	_, err := security.NewPasswordEncoder(bcrypt.MinCost).Encode("")
	assert.ErrorIs(t, err, security.ErrNoEmptyString)
}

func TestPasswordEncoderStrength(t *testing.T) {
	assert.Equal(t, security.DefaultPasswordStrength, security.NewPasswordEncoder(0).Cost())
	assert.Equal(t, security.DefaultPasswordStrength, security.NewPasswordEncoder(99).Cost())
	assert.Equal(t, 12, security.NewPasswordEncoder(12).Cost())
}

func TestPasswordEncoderRandomPasswordHash(t *testing.T) {
	encoder := security.NewPasswordEncoder(bcrypt.MinCost)

	first := encoder.RandomPasswordHash()
	second := encoder.RandomPasswordHash()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
