// Package session provides Valkey-backed session records for bearer tokens.
// Each issued token's jti keys a record stored as JSON with automatic TTL
// expiry; deleting the record revokes the token before its JWT expiry.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// userPrefix namespaces the per-user set of live token IDs, used to
	// revoke every session a user holds at once.
	userPrefix = "user_sessions:"
)

// Data holds the session payload stored in Valkey: a snapshot of the
// authenticated user's identity at login time. Profile fields are read
// fresh from the database; this snapshot only drives authorization.
type Data struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	RoleName    string    `json:"role_name"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

// AdminAny mirrors models.User.AdminAny for the snapshot: any of the three
// admin signals grants admin. The OR policy is intentional; see the model.
func (d *Data) AdminAny() bool {
	return d.Role == "admin" || d.RoleName == "admin" || d.IsAdmin
}

// Store manages session lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session store backed by the given Valkey client.
// ttl should match the JWT lifetime so records and tokens expire together.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Create stores a session record under the token's jti.
func (s *Store) Create(ctx context.Context, tokenID string, data *Data) error {
	data.CreatedAt = time.Now()

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+tokenID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	// Track the jti against the user so DestroyAll can revoke in bulk.
	userKey := userPrefix + data.UserID.String()
	if err := s.client.SAdd(ctx, userKey, tokenID).Err(); err != nil {
		return fmt.Errorf("session index: %w", err)
	}
	s.client.Expire(ctx, userKey, s.ttl)

	return nil
}

// Get retrieves the session record for a token ID. Returns nil if the
// record has expired or was revoked (not an error).
func (s *Store) Get(ctx context.Context, tokenID string) (*Data, error) {
	payload, err := s.client.Get(ctx, keyPrefix+tokenID).Bytes()
	if err == redis.Nil {
		return nil, nil // Expired or revoked
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}

	return &data, nil
}

// Destroy revokes a single token by deleting its session record.
func (s *Store) Destroy(ctx context.Context, tokenID string) error {
	if err := s.client.Del(ctx, keyPrefix+tokenID).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

// DestroyAll revokes every live session a user holds. Used when an account
// is suspended or deleted so stale tokens stop working immediately.
func (s *Store) DestroyAll(ctx context.Context, userID uuid.UUID) error {
	userKey := userPrefix + userID.String()

	tokenIDs, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("session list for user: %w", err)
	}

	for _, id := range tokenIDs {
		s.client.Del(ctx, keyPrefix+id)
	}
	s.client.Del(ctx, userKey)

	return nil
}
