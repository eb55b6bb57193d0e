package acquire

import (
	"context"
	"time"
)

// SetSleepForTests replaces the retry backoff sleep so tests exercise the
// full retry budget without real delays. The hook receives the computed
// delay and must honour context cancellation the way the real sleep does.
func (m *Manager) SetSleepForTests(fn func(context.Context, time.Duration) error) {
	if fn == nil {
		m.sleep = sleepContext
		return
	}
	m.sleep = fn
}
