package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/tela/pkg/ports"
)

// Locker implements ports.DistributedLocker for a single process.
// The ttl is ignored: locks are held until released.
type Locker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocker creates a new in-process locker.
func NewLocker() *Locker {
	return &Locker{slots: make(map[string]chan struct{})}
}

// Lock blocks until key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func(context.Context) error {
			once.Do(func() { <-slot })
			return nil
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
