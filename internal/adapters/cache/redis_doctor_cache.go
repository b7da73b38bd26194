package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/providers"
	redisclient "github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/clients/redis"
)

const keyNamespace = "fieldcrm"

// RedisDoctorCache implements DoctorCache using Redis. The full record
// list of one user is a single JSON string under a user-scoped key, the
// same shape the remote store holds, so records survive round trips
// field-for-field.
type RedisDoctorCache struct {
	client *redisclient.Client
}

// NewRedisDoctorCache creates a new Redis-backed doctor cache
func NewRedisDoctorCache(client *redisclient.Client) providers.DoctorCache {
	return &RedisDoctorCache{client: client}
}

func cacheKey(uid string) string {
	return fmt.Sprintf("%s:%s:doctors", keyNamespace, uid)
}

// Get retrieves and decodes a user's cached record list. A missing key
// and a corrupt value both come back as found=false; corrupt cache data
// must never take the session down.
func (c *RedisDoctorCache) Get(ctx context.Context, uid string) ([]*entities.Doctor, bool, error) {
	raw, err := c.client.Client().Get(ctx, cacheKey(uid)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read doctor cache: %w", err)
	}

	var doctors []*entities.Doctor
	if err := json.Unmarshal(raw, &doctors); err != nil {
		log.Warn().Str("uid", uid).Err(err).Msg("doctor cache holds malformed JSON, treating as empty")
		return nil, false, nil
	}

	return doctors, true, nil
}

// Put encodes and stores a user's record list. No TTL: the cache is the
// offline source of truth and is only replaced, never expired.
func (c *RedisDoctorCache) Put(ctx context.Context, uid string, doctors []*entities.Doctor) error {
	if doctors == nil {
		doctors = []*entities.Doctor{}
	}

	raw, err := json.Marshal(doctors)
	if err != nil {
		return fmt.Errorf("failed to encode doctor cache: %w", err)
	}

	if err := c.client.Client().Set(ctx, cacheKey(uid), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write doctor cache: %w", err)
	}

	return nil
}

// Delete removes a user's cached record list
func (c *RedisDoctorCache) Delete(ctx context.Context, uid string) error {
	if err := c.client.Client().Del(ctx, cacheKey(uid)).Err(); err != nil {
		return fmt.Errorf("failed to delete doctor cache: %w", err)
	}
	return nil
}
