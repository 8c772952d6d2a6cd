package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/CaratCompare/pkg/errors"
)

const lockKey = "caratcompare:lock:prerender"

func newTestLocks(t *testing.T) (*lockFactory, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	f, ok := NewLockFactory(NewClientFrom(db, logging.NewNopLogger()), "caratcompare:", logging.NewNopLogger()).(*lockFactory)
	require.True(t, ok)
	f.owner = func() string { return "owner" }
	return f, mock
}

func TestLock_AcquireRelease(t *testing.T) {
	f, mock := newTestLocks(t)
	mock.ExpectSetNX(lockKey, "owner", time.Minute).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), []string{lockKey}, "owner").SetVal(int64(1))

	ctx := context.Background()
	lease, err := f.Acquire(ctx, "prerender", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, lockKey, lease.Key())
	require.NoError(t, lease.Release(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLock_HeldElsewhere(t *testing.T) {
	f, mock := newTestLocks(t)
	mock.ExpectSetNX(lockKey, "owner", time.Minute).SetVal(false)

	lease, err := f.Acquire(context.Background(), "prerender", time.Minute)
	assert.Nil(t, lease)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodePrerenderLocked))
	assert.Equal(t, 409, pkgerrors.HTTPStatus(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLock_RedisError(t *testing.T) {
	f, mock := newTestLocks(t)
	mock.ExpectSetNX(lockKey, "owner", time.Minute).SetErr(assert.AnError)

	_, err := f.Acquire(context.Background(), "prerender", time.Minute)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func TestLock_TTLFloor(t *testing.T) {
	f, mock := newTestLocks(t)
	mock.ExpectSetNX(lockKey, "owner", time.Second).SetVal(false)

	_, err := f.Acquire(context.Background(), "prerender", time.Millisecond)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLock_ReleaseAfterExpiry(t *testing.T) {
	f, mock := newTestLocks(t)
	mock.ExpectSetNX(lockKey, "owner", time.Minute).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), []string{lockKey}, "owner").SetVal(int64(0))

	lease, err := f.Acquire(context.Background(), "prerender", time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, lease.Release(context.Background()), ErrLockNotHeld)
}

func TestLock_Extend(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := &lease{client: NewClientFrom(db, logging.NewNopLogger()), key: lockKey, owner: "owner", ttl: 2 * time.Second}
	mock.ExpectEvalSha(renewScript.Hash(), []string{lockKey}, "owner", int64(2000)).SetVal(int64(1))
	mock.ExpectEvalSha(renewScript.Hash(), []string{lockKey}, "owner", int64(2000)).SetVal(int64(0))

	ok, err := l.extend(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.extend(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
