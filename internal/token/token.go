// Package token issues and verifies the bearer tokens that authenticate
// API requests. Tokens are HS256 JWTs carrying the user ID, role, and a
// unique token ID (jti) that keys the server-side session record.
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers malformed, unsigned, or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the verified payload of a bearer token.
type Claims struct {
	UserID  uuid.UUID
	Role    string
	TokenID string
}

// Manager signs and verifies bearer tokens with a shared HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager. ttl bounds how long issued tokens
// remain valid; session records use the same TTL.
func NewManager(secret []byte, ttl time.Duration) *Manager {
	return &Manager{secret: secret, ttl: ttl}
}

// TTL returns the lifetime of tokens issued by this manager.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Generate signs a new token for the given user. Returns the signed token
// and its jti, which callers use to key the session record.
func (m *Manager) Generate(userID uuid.UUID, role string) (string, string, error) {
	jti := uuid.NewString()
	now := time.Now()

	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"role":    role,
		"jti":     jti,
		"iat":     now.Unix(),
		"exp":     now.Add(m.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, jti, nil
}

// Parse verifies the signature and expiry of a token and extracts its claims.
func (m *Manager) Parse(raw string) (*Claims, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	rawID, ok := mapClaims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: user_id claim missing", ErrInvalidToken)
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: user_id claim malformed", ErrInvalidToken)
	}

	role, ok := mapClaims["role"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: role claim missing", ErrInvalidToken)
	}

	jti, ok := mapClaims["jti"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: jti claim missing", ErrInvalidToken)
	}

	return &Claims{UserID: userID, Role: role, TokenID: jti}, nil
}

// ExpiryValid is a best-effort, signature-free expiry check used by clients
// to decide whether a stored token is worth presenting. It decodes the
// middle segment of the three-part credential and compares the embedded
// exp to the current time. Anything malformed is treated as invalid.
func ExpiryValid(raw string) bool {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return false
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	var body struct {
		Exp float64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Exp == 0 {
		return false
	}

	return int64(body.Exp) > time.Now().Unix()
}
