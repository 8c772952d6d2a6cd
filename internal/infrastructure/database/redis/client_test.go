package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaratCompare/internal/config"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/CaratCompare/pkg/errors"
)

func TestNewClient_ConnectionFailed(t *testing.T) {
	client, err := NewClient(config.RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond}, logging.NewNopLogger())
	require.Error(t, err)
	assert.Nil(t, client)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeServiceUnavailable))
}

func TestClient_Commands(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewClientFrom(db, logging.NewNopLogger())
	ctx := context.Background()

	mock.ExpectPing().SetVal("PONG")
	mock.ExpectSet("k", []byte("v"), time.Minute).SetVal("OK")
	mock.ExpectGet("k").SetVal("v")
	mock.ExpectGet("missing").RedisNil()
	mock.ExpectSetNX("lock", "me", time.Minute).SetVal(true)

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, goredis.Nil)
	ok, err := c.SetNX(ctx, "lock", "me", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_DeleteMatching(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewClientFrom(db, logging.NewNopLogger())

	mock.ExpectScan(0, "page:*", 100).SetVal([]string{"page:/a"}, 3)
	mock.ExpectDel("page:/a").SetVal(1)
	mock.ExpectScan(3, "page:*", 100).SetVal([]string{}, 0)

	n, err := c.DeleteMatching(context.Background(), "page:*")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_Closed(t *testing.T) {
	db, _ := redismock.NewClientMock()
	c := NewClientFrom(db, logging.NewNopLogger())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	ctx := context.Background()
	assert.ErrorIs(t, c.Ping(ctx), ErrClientClosed)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, 0), ErrClientClosed)
	_, err = c.SetNX(ctx, "k", "v", 0)
	assert.ErrorIs(t, err, ErrClientClosed)
	_, err = c.RunScript(ctx, releaseScript, []string{"k"}, "v")
	assert.ErrorIs(t, err, ErrClientClosed)
	_, err = c.DeleteMatching(ctx, "*")
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.ErrorIs(t, c.Pipelined(ctx, func(goredis.Pipeliner) error { return nil }), ErrClientClosed)
}

func TestPageKey(t *testing.T) {
	assert.Equal(t, "page:/compare/1-round-vs-2-round", PageKey("/compare/1-round-vs-2-round"))
}
