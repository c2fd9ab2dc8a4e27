package redis

// Package redis provides Redis-based adapters for the classauth system.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records account-wide revocation cut-offs in Redis.
// A key holds the unix timestamp of the subject's last revocation; session
// credentials issued at or before that instant are unusable. Keys expire
// after the retention window since older credentials have expired anyway.
type RevocationStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// NewRevocationStore creates a Redis-backed revocation store. The retention
// should be at least the session validity window.
func NewRevocationStore(client redis.UniversalClient, retention time.Duration) *RevocationStore {
	if retention <= 0 {
		retention = 120 * time.Hour
	}
	return &RevocationStore{
		client:    client,
		prefix:    "revoked:",
		retention: retention,
	}
}

// Revoke records now as the subject's revocation cut-off.
func (s *RevocationStore) Revoke(ctx context.Context, subject string) error {
	if subject == "" {
		return errors.New("subject cannot be empty")
	}

	key := s.prefix + subject
	now := time.Now().Unix()
	if err := s.client.Set(ctx, key, now, s.retention).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// RevokedAfter returns the subject's revocation cut-off, or the zero time
// when the subject has never been revoked (or the record has aged out).
func (s *RevocationStore) RevokedAfter(ctx context.Context, subject string) (time.Time, error) {
	if subject == "" {
		return time.Time{}, errors.New("subject cannot be empty")
	}

	key := s.prefix + subject
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("redis get: %w", err)
	}

	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse revocation timestamp: %w", err)
	}
	return time.Unix(unix, 0), nil
}
