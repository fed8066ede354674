package services

import (
	"context"
	"testing"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	var missing models.User
	found, err := store.Get(ctx, "u1", models.SessionKeyUser, &missing)
	require.NoError(t, err)
	assert.False(t, found)

	user := models.User{ID: "u1", Email: "a@b.co", Role: models.RoleScholar}
	require.NoError(t, store.Set(ctx, "u1", models.SessionKeyUser, user))

	var got models.User
	found, err = store.Get(ctx, "u1", models.SessionKeyUser, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, user, got)

	require.NoError(t, store.Delete(ctx, "u1", models.SessionKeyUser))
	found, _ = store.Get(ctx, "u1", models.SessionKeyUser, &got)
	assert.False(t, found)
}

func TestSessionKeysAreScopedPerUser(t *testing.T) {
	assert.Equal(t, "legal_oracle:session:u1:legal_oracle_cases", sessionKey("u1", models.SessionKeyCases))
	assert.NotEqual(t, sessionKey("u1", models.SessionKeyCases), sessionKey("u2", models.SessionKeyCases))
}

func TestMemorySessionStoreExpiresIdleValues(t *testing.T) {
	store := NewMemorySessionStoreWithTTL(time.Hour)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "guest_a", models.SessionKeyCases, []string{"c1"}))
	require.NoError(t, store.Set(ctx, "guest_b", models.SessionKeyCases, []string{"c2"}))

	clock = clock.Add(40 * time.Minute)
	require.NoError(t, store.Set(ctx, "guest_b", models.SessionKeyCases, []string{"c2", "c3"}))

	clock = clock.Add(30 * time.Minute)
	var cases []string
	found, err := store.Get(ctx, "guest_a", models.SessionKeyCases, &cases)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = store.Get(ctx, "guest_b", models.SessionKeyCases, &cases)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"c2", "c3"}, cases)
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, 1, store.PurgeExpired())
	assert.Equal(t, 0, store.PurgeExpired())

	clock = clock.Add(time.Hour)
	assert.Equal(t, 1, store.PurgeExpired())
	assert.Equal(t, 0, store.Len())
}

func TestMemorySessionStoreDefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultMemorySessionTTL, NewMemorySessionStore().ttl)
	assert.Equal(t, DefaultMemorySessionTTL, NewMemorySessionStoreWithTTL(0).ttl)
	assert.Equal(t, time.Minute, NewMemorySessionStoreWithTTL(time.Minute).ttl)
}
