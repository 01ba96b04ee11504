package oauth2

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
)

// AuthorizationRequest is the pending authorization kept between the
// redirect to the supplier and its callback.
type AuthorizationRequest struct {
	Supplier         Supplier `json:"s"`
	State            string   `json:"st"`
	RedirectURI      string   `json:"r,omitempty"`
	AuthorizationURI string   `json:"a,omitempty"`
	IssuedAt         int64    `json:"iat"`
	ExpiresAt        int64    `json:"exp"`
}

// StateManager encodes authorization requests into opaque strings.
type StateManager interface {
	Encode(req *AuthorizationRequest) (string, error)
	Decode(token string) (*AuthorizationRequest, error)
}

// EncryptedStateManager uses AES-GCM encryption and HMAC signing.
type EncryptedStateManager struct {
	encryptionKey []byte
	hmacKey       []byte
	ttl           time.Duration
	now           func() time.Time
}

// NewEncryptedStateManager creates a new encrypted state manager. The
// encryption key must be 16, 24 or 32 bytes long.
func NewEncryptedStateManager(encryptionKey, hmacKey []byte, ttl time.Duration) (*EncryptedStateManager, error) {
	if _, err := aes.NewCipher(encryptionKey); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "invalid state encryption key")
	}
	if len(hmacKey) == 0 {
		return nil, errors.New("state signing key is required", errors.CategoryInternal).
			WithCode(errors.CodeInternal)
	}
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &EncryptedStateManager{
		encryptionKey: encryptionKey,
		hmacKey:       hmacKey,
		ttl:           ttl,
		now:           time.Now,
	}, nil
}

// NewStateManagerFromSecret derives both keys from secret.
func NewStateManagerFromSecret(secret string, ttl time.Duration) (*EncryptedStateManager, error) {
	if secret == "" {
		return nil, errors.New("state secret is required", errors.CategoryInternal).
			WithCode(errors.CodeInternal)
	}
	enc := sha256.Sum256([]byte("enc:" + secret))
	mac := sha256.Sum256([]byte("mac:" + secret))
	return NewEncryptedStateManager(enc[:], mac[:], ttl)
}

// WithClock replaces time.Now.
func (sm *EncryptedStateManager) WithClock(now func() time.Time) *EncryptedStateManager {
	if now != nil {
		sm.now = now
	}
	return sm
}

// Encode encrypts and signs the request.
func (sm *EncryptedStateManager) Encode(req *AuthorizationRequest) (string, error) {
	if req == nil {
		return "", ErrInvalidState
	}

	now := sm.now()
	if req.IssuedAt == 0 {
		req.IssuedAt = now.Unix()
	}
	if req.ExpiresAt == 0 {
		req.ExpiresAt = now.Add(sm.ttl).Unix()
	}
	if req.State == "" {
		req.State = GenerateState()
	}

	plaintext, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to marshal state")
	}

	gcm, err := sm.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate nonce")
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)

	mac := hmac.New(sha256.New, sm.hmacKey)
	mac.Write(ciphertext)
	signature := mac.Sum(nil)

	result := append(signature, ciphertext...)

	return base64.RawURLEncoding.EncodeToString(result), nil
}

// Decode verifies and decrypts the request.
func (sm *EncryptedStateManager) Decode(token string) (*AuthorizationRequest, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidState
	}

	if len(data) < sha256.Size {
		return nil, ErrInvalidState
	}

	signature := data[:sha256.Size]
	ciphertext := data[sha256.Size:]

	mac := hmac.New(sha256.New, sm.hmacKey)
	mac.Write(ciphertext)
	expectedMAC := mac.Sum(nil)

	if !hmac.Equal(signature, expectedMAC) {
		return nil, ErrInvalidState
	}

	gcm, err := sm.gcm()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, ErrInvalidState
	}

	nonce, encrypted := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, encrypted, nil)
	if err != nil {
		return nil, ErrInvalidState
	}

	var req AuthorizationRequest
	if err := json.Unmarshal(plaintext, &req); err != nil {
		return nil, ErrInvalidState
	}

	if sm.now().Unix() > req.ExpiresAt {
		return nil, ErrStateExpired
	}

	return &req, nil
}

func (sm *EncryptedStateManager) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(sm.encryptionKey)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create GCM")
	}
	return gcm, nil
}

// GenerateState returns a random url safe value.
func GenerateState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("oauth2: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
