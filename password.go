package security

import (
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordStrength is the bcrypt cost used when none is configured.
const DefaultPasswordStrength = 10

// PasswordEncoder hashes and checks passwords with bcrypt.
type PasswordEncoder struct {
	cost int
}

// NewPasswordEncoder creates an encoder. Costs outside the bcrypt range
// fall back to DefaultPasswordStrength.
func NewPasswordEncoder(strength int) *PasswordEncoder {
	if strength < bcrypt.MinCost || strength > bcrypt.MaxCost {
		strength = DefaultPasswordStrength
	}
	return &PasswordEncoder{cost: strength}
}

// Cost is the bcrypt work factor.
func (p *PasswordEncoder) Cost() int {
	return p.cost
}

// Encode will generate a password hash
func (p *PasswordEncoder) Encode(raw string) (string, error) {
	if raw == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(raw), p.cost)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// Matches will validate the given cleartext
// password matches the hashed password
func (p *PasswordEncoder) Matches(raw, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return errors.Wrap(err, errors.CategoryAuth, "unable to compare password hash").
			WithTextCode(TextCodeInvalidCreds).
			WithCode(errors.CodeUnauthorized)
	}
	return nil
}

// RandomPasswordHash is a temporary password
func (p *PasswordEncoder) RandomPasswordHash() string {
	h, err := p.Encode(uuid.NewString())
	if err != nil {
		return p.RandomPasswordHash()
	}
	return h
}
