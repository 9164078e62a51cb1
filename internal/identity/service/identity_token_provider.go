package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"

	apperrors "github.com/allisson/identity/internal/errors"
	"github.com/allisson/identity/internal/identity/domain"
)

const (
	tokenVersion   byte = 1
	stampHashSize       = 16
	tokenKeySize        = 32
	payloadSize         = 1 + 8 + 16 + stampHashSize
	identityKeyInfo     = "identity-token:"
)

// hmacTokenProvider issues tokens laid out as
// version | expiry (unix seconds) | user id | truncated stamp hash | HMAC-SHA256,
// base64url encoded. Each purpose signs with its own HKDF-derived key.
type hmacTokenProvider struct {
	keys     map[TokenPurpose][]byte
	lifetime time.Duration
	now      func() time.Time
}

// NewIdentityTokenProvider derives one key per purpose from secret.
func NewIdentityTokenProvider(secret []byte, lifetime time.Duration) (IdentityTokenProvider, error) {
	if len(secret) == 0 {
		return nil, apperrors.New("identity token secret is required")
	}

	keys := make(map[TokenPurpose][]byte)
	for _, purpose := range []TokenPurpose{PurposeEmailConfirmation, PurposeResetPassword} {
		key := make([]byte, tokenKeySize)
		reader := hkdf.New(sha256.New, secret, nil, []byte(identityKeyInfo+string(purpose)))
		if _, err := io.ReadFull(reader, key); err != nil {
			return nil, apperrors.Wrap(err, "failed to derive identity token key")
		}
		keys[purpose] = key
	}

	return &hmacTokenProvider{keys: keys, lifetime: lifetime, now: time.Now}, nil
}

func (p *hmacTokenProvider) Generate(purpose TokenPurpose, user *domain.User) (string, error) {
	key, ok := p.keys[purpose]
	if !ok {
		return "", apperrors.New("unknown token purpose")
	}

	payload, err := p.payload(user, p.now().Add(p.lifetime))
	if err != nil {
		return "", err
	}

	token := append(payload, sign(key, payload)...)
	return base64.RawURLEncoding.EncodeToString(token), nil
}

func (p *hmacTokenProvider) Validate(purpose TokenPurpose, user *domain.User, token string) bool {
	key, ok := p.keys[purpose]
	if !ok || user == nil {
		return false
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != payloadSize+sha256.Size {
		return false
	}

	payload, mac := raw[:payloadSize], raw[payloadSize:]
	if !hmac.Equal(mac, sign(key, payload)) {
		return false
	}

	expiresAt := time.Unix(int64(binary.BigEndian.Uint64(payload[1:9])), 0)
	if !p.now().Before(expiresAt) {
		return false
	}

	expected, err := p.payload(user, expiresAt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(expected, payload) == 1
}

func (p *hmacTokenProvider) payload(user *domain.User, expiresAt time.Time) ([]byte, error) {
	userID, err := user.ID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}
	stamp := sha256.Sum256([]byte(user.SecurityStamp))

	payload := make([]byte, 0, payloadSize)
	payload = append(payload, tokenVersion)
	payload = binary.BigEndian.AppendUint64(payload, uint64(expiresAt.Unix()))
	payload = append(payload, userID...)
	payload = append(payload, stamp[:stampHashSize]...)
	return payload, nil
}

func sign(key, payload []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	return mac.Sum(nil)
}
