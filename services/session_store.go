package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "legal_oracle:session:"

// SessionStore keeps the per-user JSON state (user, cases, alerts, alert settings)
type SessionStore interface {
	// Get decodes the value under key into v. It reports false when the key is absent.
	Get(ctx context.Context, userID, key string, v interface{}) (bool, error)
	Set(ctx context.Context, userID, key string, v interface{}) error
	Delete(ctx context.Context, userID, key string) error
	// ClearAll removes every session key of the user
	ClearAll(ctx context.Context, userID string) error
}

func sessionKey(userID, key string) string {
	return sessionKeyPrefix + userID + ":" + key
}

// RedisSessionStore keeps session state in Redis with a sliding TTL
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, userID, key string, v interface{}) (bool, error) {
	data, err := s.client.Get(ctx, sessionKey(userID, key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, userID, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(userID, key), b, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID, key string) error {
	return s.client.Del(ctx, sessionKey(userID, key)).Err()
}

func (s *RedisSessionStore) ClearAll(ctx context.Context, userID string) error {
	keys := make([]string, 0, len(models.SessionKeys))
	for _, key := range models.SessionKeys {
		keys = append(keys, sessionKey(userID, key))
	}
	return s.client.Del(ctx, keys...).Err()
}

// DefaultMemorySessionTTL bounds how long an in-process session value lives without being rewritten
const DefaultMemorySessionTTL = 30 * 24 * time.Hour

type memorySessionEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore is the in-process session store used when Redis is not configured.
// Like the Redis store, every Set restarts the value's TTL; expired values read as absent
// and are dropped by PurgeExpired.
type MemorySessionStore struct {
	mutex  sync.RWMutex
	values map[string]memorySessionEntry
	ttl    time.Duration
	now    func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return NewMemorySessionStoreWithTTL(DefaultMemorySessionTTL)
}

// NewMemorySessionStoreWithTTL creates a store whose values expire ttl after their last write.
// A non-positive ttl falls back to DefaultMemorySessionTTL.
func NewMemorySessionStoreWithTTL(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultMemorySessionTTL
	}
	return &MemorySessionStore{
		values: make(map[string]memorySessionEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *MemorySessionStore) Get(_ context.Context, userID, key string, v interface{}) (bool, error) {
	s.mutex.RLock()
	entry, ok := s.values[sessionKey(userID, key)]
	now := s.now()
	s.mutex.RUnlock()

	if !ok || !now.Before(entry.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(entry.data, v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemorySessionStore) Set(_ context.Context, userID, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.values[sessionKey(userID, key)] = memorySessionEntry{data: b, expiresAt: s.now().Add(s.ttl)}
	s.mutex.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, userID, key string) error {
	s.mutex.Lock()
	delete(s.values, sessionKey(userID, key))
	s.mutex.Unlock()
	return nil
}

func (s *MemorySessionStore) ClearAll(_ context.Context, userID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, key := range models.SessionKeys {
		delete(s.values, sessionKey(userID, key))
	}
	return nil
}

// PurgeExpired drops every expired value and returns how many were removed
func (s *MemorySessionStore) PurgeExpired() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.values {
		if !now.Before(entry.expiresAt) {
			delete(s.values, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored values that have not expired
func (s *MemorySessionStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := s.now()
	live := 0
	for _, entry := range s.values {
		if now.Before(entry.expiresAt) {
			live++
		}
	}
	return live
}
