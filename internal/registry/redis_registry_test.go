package registry

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegistry(t *testing.T) (*RedisRegistry, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	reg := NewRedisRegistry(client, log, time.Minute)
	t.Cleanup(func() { reg.Close() })
	return reg, mr
}

func testSession(id string) *Session {
	return &Session{
		ID:         id,
		Path:       "synth://test?frames=30",
		DeviceName: "Test Camera",
		Status:     StatusPlaying,
		FPS:        30,
		DurationUS: 1_000_000,
	}
}

func TestRedisRegistry_RegisterAndGet(t *testing.T) {
	reg, _ := setupRegistry(t)
	ctx := context.Background()

	session := testSession("sess-1")
	require.NoError(t, reg.Register(ctx, session))
	assert.False(t, session.CreatedAt.IsZero())

	got, err := reg.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.ID)
	assert.Equal(t, "Test Camera", got.DeviceName)
	assert.Equal(t, StatusPlaying, got.Status)
}

func TestRedisRegistry_GetMissing(t *testing.T) {
	reg, _ := setupRegistry(t)

	_, err := reg.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisRegistry_RecordsExpire(t *testing.T) {
	reg, mr := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, testSession("sess-ttl")))

	// Simulate the owner going away
	mr.FastForward(2 * time.Minute)

	_, err := reg.Get(ctx, "sess-ttl")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisRegistry_HeartbeatRefreshesTTL(t *testing.T) {
	reg, mr := setupRegistry(t)
	ctx := context.Background()

	session := testSession("sess-hb")
	require.NoError(t, reg.Register(ctx, session))

	mr.FastForward(30 * time.Second)
	session.FramesConsumed = 100
	session.TimestampUS = 3_333_333
	require.NoError(t, reg.Heartbeat(ctx, session))

	// Without the heartbeat this would have expired
	mr.FastForward(45 * time.Second)

	got, err := reg.Get(ctx, "sess-hb")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.FramesConsumed)
	assert.Equal(t, uint64(3_333_333), got.TimestampUS)
}

func TestRedisRegistry_Unregister(t *testing.T) {
	reg, _ := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, testSession("sess-gone")))
	require.NoError(t, reg.Unregister(ctx, "sess-gone"))

	_, err := reg.Get(ctx, "sess-gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Removing it twice reports the missing session
	assert.ErrorIs(t, reg.Unregister(ctx, "sess-gone"), ErrSessionNotFound)
}

func TestRedisRegistry_List(t *testing.T) {
	reg, mr := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, testSession("sess-a")))
	require.NoError(t, reg.Register(ctx, testSession("sess-b")))

	sessions, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	// Expired records are pruned from the listing
	mr.FastForward(2 * time.Minute)
	sessions, err = reg.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestMockRegistry(t *testing.T) {
	reg := NewMockRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, testSession("sess-mock")))

	got, err := reg.Get(ctx, "sess-mock")
	require.NoError(t, err)
	assert.Equal(t, "sess-mock", got.ID)

	sessions, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, reg.Unregister(ctx, "sess-mock"))
	_, err = reg.Get(ctx, "sess-mock")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
