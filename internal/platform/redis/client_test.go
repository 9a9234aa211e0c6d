package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	mu       sync.Mutex
	data     map[string]string
	ttls     map[string]time.Duration
	setNXErr error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setNXErr != nil {
		return redis.NewBoolResult(false, m.setNXErr)
	}
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if script != releaseScript || len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, errors.New("unexpected script"))
	}
	if m.data[keys[0]] == args[0].(string) {
		delete(m.data, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestTryLock(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	c := newClient(mock, 0, nil)

	release, ok, err := c.TryLock(ctx, "order-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, defaultLockTTL, mock.ttls["memberpay:verify_lock:order-1"])

	_, ok, err = c.TryLock(ctx, "order-1")
	require.NoError(t, err)
	require.False(t, ok)

	// other orders are independent
	releaseOther, ok, err := c.TryLock(ctx, "order-2")
	require.NoError(t, err)
	require.True(t, ok)
	releaseOther()

	release()
	_, ok, err = c.TryLock(ctx, "order-1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTryLock_ReleaseOnlyByOwner(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	c := newClient(mock, time.Minute, nil)

	release, ok, err := c.TryLock(ctx, "order-1")
	require.NoError(t, err)
	require.True(t, ok)

	// lock expired and was taken by someone else
	mock.data["memberpay:verify_lock:order-1"] = "someone-else"
	release()
	require.Equal(t, "someone-else", mock.data["memberpay:verify_lock:order-1"])
}

func TestTryLock_Errors(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	c := newClient(mock, time.Minute, nil)

	release, ok, err := c.TryLock(ctx, "")
	require.Error(t, err)
	require.False(t, ok)
	require.NotNil(t, release)

	mock.setNXErr = errors.New("connection refused")
	release, ok, err = c.TryLock(ctx, "order-1")
	require.Error(t, err)
	require.False(t, ok)
	require.NotPanics(t, release)
}

func TestPing(t *testing.T) {
	c := newClient(newMockCmdable(), 0, nil)
	require.NoError(t, c.Ping(context.Background()))
}
