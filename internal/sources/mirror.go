package sources

import (
	"context"
	"sync/atomic"
	"time"
)

// mirrorSet holds a fixed list of base URLs for a mirror-rotating source and
// an atomically-updated index of the currently active one. On request
// failure the caller advances to the next mirror and retries, up to once
// per mirror (spec.md §4.9).
type mirrorSet struct {
	mirrors []string
	active  atomic.Int64
}

func newMirrorSet(mirrors []string) *mirrorSet {
	return &mirrorSet{mirrors: mirrors}
}

func (m *mirrorSet) current() string {
	if len(m.mirrors) == 0 {
		return ""
	}
	idx := int(m.active.Load()) % len(m.mirrors)
	return m.mirrors[idx]
}

func (m *mirrorSet) advance() {
	m.active.Add(1)
}

// tryEachMirror calls fn once per mirror, starting from the currently active
// one, advancing on failure. It returns the first success, or the last
// error if every mirror fails.
func tryEachMirror[T any](m *mirrorSet, fn func(ctx context.Context, base string) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var zero T
		var lastErr error
		for i := 0; i < len(m.mirrors); i++ {
			base := m.current()
			result, err := fn(ctx, base)
			if err == nil {
				return result, nil
			}
			lastErr = err
			m.advance()
		}
		return zero, lastErr
	}
}

// rateLimitWait is shared by sources whose HealthCheck wants a latency
// sample without going through the retrying httpclient path.
func rateLimitWait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
