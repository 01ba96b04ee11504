package security_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-errors"
	security "github.com/goliatone/go-security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOtaTokenService(t *testing.T) {
	service, err := security.NewOtaTokenService(0)
	require.NoError(t, err)
	assert.Equal(t, security.DefaultOtaLength, service.Length())

	_, err = security.NewOtaTokenService(-1)
	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, security.TextCodeInvalidOtaLength, richErr.TextCode)
}

func TestOtaTokenServiceGenerate(t *testing.T) {
	service, err := security.NewOtaTokenService(12)
	require.NoError(t, err)

	token := service.Generate()
	assert.Len(t, token, 12)
	assert.True(t, service.IsValid(token))

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[service.GenerateN(20)] = true
	}
	assert.Len(t, seen, 50)
}

func TestOtaTokenServiceIsValid(t *testing.T) {
	service, err := security.NewOtaTokenService(10)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "valid", token: "aB3dE5gH7j", want: true},
		{name: "too short", token: "aB3dE", want: false},
		{name: "too long", token: "aB3dE5gH7jK", want: false},
		{name: "blank", token: strings.Repeat(" ", 10), want: false},
		{name: "empty", token: "", want: false},
		{name: "special characters", token: "aB3dE5gH7!", want: false},
		{name: "unicode letters", token: "aB3dE5gH7ł", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.IsValid(tt.token))
		})
	}

	assert.True(t, service.IsValidN("abc", 3))
	assert.False(t, service.IsValidN("abc", 4))
}
