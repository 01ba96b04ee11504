package security_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	security "github.com/goliatone/go-security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="
	otherSecret = "YW5vdGhlci1zZWNyZXQtYW5vdGhlci1zZWNyZXQtMTI="
)

func newJWTService(t *testing.T, secret string, opts ...security.JWTOption) *security.JWTService {
	t.Helper()
	opts = append([]security.JWTOption{security.WithJWTLogger(newQuietLogger())}, opts...)
	service, err := security.NewJWTService(security.JWTConfig{
		Secret: secret,
		Issuer: "jmpsl-test",
	}, opts...)
	require.NoError(t, err)
	return service
}

func TestNewJWTService(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := security.NewJWTService(security.JWTConfig{Secret: "  "})
		assert.ErrorIs(t, err, security.ErrInvalidSecret)
	})

	t.Run("rejects secret that is not base64", func(t *testing.T) {
		_, err := security.NewJWTService(security.JWTConfig{Secret: "%%not-base64%%"})

		var richErr *errors.Error
		require.True(t, errors.As(err, &richErr))
		assert.Equal(t, security.TextCodeInvalidSecret, richErr.TextCode)
	})

	t.Run("applies default expiry", func(t *testing.T) {
		service := newJWTService(t, testSecret)

		assert.Equal(t, 5*time.Minute, service.AccessTokenExpiry())
		assert.Equal(t, 90*24*time.Hour, service.RefreshTokenExpiry())
	})

	t.Run("uses configured expiry", func(t *testing.T) {
		service, err := security.NewJWTService(security.JWTConfig{
			Secret:                  testSecret,
			ExpiredMinutes:          15,
			RefreshTokenExpiredDays: 7,
		})
		require.NoError(t, err)

		assert.Equal(t, 15*time.Minute, service.AccessTokenExpiry())
		assert.Equal(t, 7*24*time.Hour, service.RefreshTokenExpiry())
	})
}

func TestJWTServiceGenerateToken(t *testing.T) {
	service := newJWTService(t, testSecret)

	t.Run("sets registered claims", func(t *testing.T) {
		before := time.Now().Add(-time.Second)
		token, err := service.GenerateToken("john@example.com", jwt.MapClaims{"role": "USER"})
		require.NoError(t, err)

		claims, ok := service.ExtractClaims(token)
		require.True(t, ok)

		assert.Equal(t, "jmpsl-test", claims["iss"])
		assert.Equal(t, "john@example.com", claims["sub"])
		assert.Equal(t, "USER", claims["role"])
		assert.NotEmpty(t, claims["jti"])

		exp, err := claims.GetExpirationTime()
		require.NoError(t, err)
		assert.WithinDuration(t, before.Add(5*time.Minute), exp.Time, 3*time.Second)
	})

	t.Run("caller claims cannot replace issuer or subject", func(t *testing.T) {
		token, err := service.GenerateToken("john", jwt.MapClaims{
			"iss": "someone-else",
			"sub": "mallory",
		})
		require.NoError(t, err)

		claims, ok := service.ExtractClaims(token)
		require.True(t, ok)
		assert.Equal(t, "jmpsl-test", claims["iss"])
		assert.Equal(t, "john", claims["sub"])
	})

	t.Run("keeps caller expiration", func(t *testing.T) {
		exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
		token, err := service.GenerateToken("john", jwt.MapClaims{"exp": exp.Unix()})
		require.NoError(t, err)

		claims, ok := service.ExtractClaims(token)
		require.True(t, ok)
		got, err := claims.GetExpirationTime()
		require.NoError(t, err)
		assert.True(t, exp.Equal(got.Time))
	})

	t.Run("refresh token lives longer", func(t *testing.T) {
		token, err := service.GenerateRefreshToken("john", nil)
		require.NoError(t, err)

		claims, ok := service.ExtractClaims(token)
		require.True(t, ok)
		got, err := claims.GetExpirationTime()
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(90*24*time.Hour), got.Time, 5*time.Second)
	})

	t.Run("requires subject", func(t *testing.T) {
		_, err := service.GenerateToken(" ", nil)
		assert.ErrorIs(t, err, security.ErrMissingSubject)
	})
}

func TestJWTServiceExtractToken(t *testing.T) {
	service := newJWTService(t, testSecret)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer header", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "other scheme", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "lower case scheme", header: "bearer abc", want: ""},
		{name: "empty header", header: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ExtractToken(tt.header))
		})
	}
}

func TestJWTServiceIsValid(t *testing.T) {
	logger := &MockLogger{}
	logger.On("Warn", mock.Anything, mock.Anything).Return()

	service := newJWTService(t, testSecret, security.WithJWTLogger(logger))
	other := newJWTService(t, otherSecret)

	valid, err := service.GenerateToken("john", nil)
	require.NoError(t, err)

	expired, err := service.GenerateToken("john", jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	foreign, err := other.GenerateToken("john", nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  security.ValidationType
	}{
		{name: "valid", token: valid, want: security.ValidationGood},
		{name: "expired", token: expired, want: security.ValidationExpired},
		{name: "malformed", token: "not-a-token", want: security.ValidationMalformed},
		{name: "foreign signature", token: foreign, want: security.ValidationInvalid},
		{name: "empty", token: "", want: security.ValidationOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := service.IsValid(tt.token)
			assert.Equal(t, tt.want, result.Type)
			assert.Equal(t, tt.want == security.ValidationGood, result.Valid)
			assert.Equal(t, tt.want.Message(), result.Message())
		})
	}

	logger.AssertNumberOfCalls(t, "Warn", 4)
}

func TestJWTServiceUnsafeExtractClaims(t *testing.T) {
	service := newJWTService(t, testSecret)

	expired, err := service.GenerateToken("john", jwt.MapClaims{
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)

	claims, err := service.UnsafeExtractClaims(expired)
	assert.True(t, security.IsTokenExpiredError(err))
	require.NotNil(t, claims)
	assert.Equal(t, "john", claims["sub"])

	_, ok := service.ExtractClaims(expired)
	assert.False(t, ok)

	_, err = service.UnsafeExtractClaims("a.b")
	assert.True(t, security.IsMalformedError(err))
}

func TestJWTServiceValidateRefreshToken(t *testing.T) {
	service := newJWTService(t, testSecret)
	other := newJWTService(t, otherSecret)
	past := time.Now().Add(-time.Hour).Unix()

	sign := func(s *security.JWTService, claims jwt.MapClaims) string {
		token, err := s.GenerateToken("john", claims)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name   string
		token  string
		wantID int64
		wantOK bool
	}{
		{
			name:   "expired token with user id",
			token:  sign(service, jwt.MapClaims{"exp": past, "userId": 42}),
			wantID: 42,
			wantOK: true,
		},
		{
			name:  "token still valid",
			token: sign(service, jwt.MapClaims{"userId": 42}),
		},
		{
			name:  "expired token signed with other key",
			token: sign(other, jwt.MapClaims{"exp": past, "userId": 42}),
		},
		{
			name:  "expired token without claim",
			token: sign(service, jwt.MapClaims{"exp": past}),
		},
		{
			name:  "expired token with text claim",
			token: sign(service, jwt.MapClaims{"exp": past, "userId": "abc"}),
		},
		{
			name:  "garbage",
			token: "garbage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := service.ValidateRefreshToken(tt.token, "userId")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
