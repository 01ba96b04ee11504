package security

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-security/core"
)

// DefaultOtaLength is used when no length is configured.
const DefaultOtaLength = 10

var otaPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// OtaTokenService creates and checks one time access tokens.
type OtaTokenService struct {
	length int
}

// NewOtaTokenService creates a service producing tokens of length
// characters.
func NewOtaTokenService(length int) (*OtaTokenService, error) {
	if length == 0 {
		length = DefaultOtaLength
	}
	if length < 1 {
		return nil, ErrInvalidOtaLength.Clone().WithMetadata(map[string]any{"length": length})
	}
	return &OtaTokenService{length: length}, nil
}

// Length is the configured token length.
func (s *OtaTokenService) Length() int {
	return s.length
}

// Generate returns a token of the configured length.
func (s *OtaTokenService) Generate() string {
	return s.GenerateN(s.length)
}

// GenerateN returns a random alphanumeric token of n characters.
func (s *OtaTokenService) GenerateN(n int) string {
	return core.RandomAlphanumeric(n)
}

// IsValid checks token against the configured length.
func (s *OtaTokenService) IsValid(token string) bool {
	return s.IsValidN(token, s.length)
}

// IsValidN reports whether token is non blank, alphanumeric and exactly n
// characters long.
func (s *OtaTokenService) IsValidN(token string, n int) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	return len(token) == n && otaPattern.MatchString(token)
}
