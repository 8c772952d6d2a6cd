package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodePrerenderLocked, "lock held by another owner")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

const minLeaseTTL = time.Second

// Lease is a held lock. It is renewed in the background at a third of its
// TTL until Release is called or a renewal fails.
type Lease interface {
	Key() string
	Release(ctx context.Context) error
}

// LockFactory hands out single-owner leases by name.
type LockFactory interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (Lease, error)
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type lockFactory struct {
	client *Client
	prefix string
	owner  func() string
	log    logging.Logger
}

// NewLockFactory returns a LockFactory storing leases under prefix+"lock:".
func NewLockFactory(client *Client, prefix string, log logging.Logger) LockFactory {
	return &lockFactory{
		client: client,
		prefix: prefix + "lock:",
		owner:  func() string { return uuid.New().String() },
		log:    log,
	}
}

// Acquire takes name for ttl. A lease held by someone else yields
// ErrLockNotAcquired without waiting.
func (f *lockFactory) Acquire(ctx context.Context, name string, ttl time.Duration) (Lease, error) {
	if ttl < minLeaseTTL {
		ttl = minLeaseTTL
	}
	key, owner := f.prefix+name, f.owner()
	ok, err := f.client.SetNX(ctx, key, owner, ttl)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "acquire lock").WithDetail(key)
	}
	if !ok {
		return nil, ErrLockNotAcquired.WithDetail(key)
	}

	renewCtx, cancel := context.WithCancel(context.Background())
	l := &lease{client: f.client, key: key, owner: owner, ttl: ttl, cancel: cancel, done: make(chan struct{})}
	go l.renew(renewCtx, f.log.With(logging.String("lock", key)))
	return l, nil
}

type lease struct {
	client *Client
	key    string
	owner  string
	ttl    time.Duration

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

func (l *lease) Key() string { return l.key }

// Release stops renewal and deletes the key if this lease still owns it.
func (l *lease) Release(ctx context.Context) error {
	l.once.Do(func() {
		l.cancel()
		<-l.done
	})
	res, err := l.client.RunScript(ctx, releaseScript, []string{l.key}, l.owner)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "release lock").WithDetail(l.key)
	}
	if res == 0 {
		return ErrLockNotHeld.WithDetail(l.key)
	}
	return nil
}

func (l *lease) extend(ctx context.Context) (bool, error) {
	res, err := l.client.RunScript(ctx, renewScript, []string{l.key}, l.owner, l.ttl.Milliseconds())
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (l *lease) renew(ctx context.Context, log logging.Logger) {
	defer close(l.done)
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := l.extend(ctx)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				log.Error("Lock renewal failed", logging.Err(err))
				return
			case !ok:
				log.Warn("Lock lost before release")
				return
			}
		}
	}
}
