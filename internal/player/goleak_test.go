package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// Close must reap every pending open goroutine, including ones still
// blocked inside the driver.
func TestCloseLeaksNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := newFakeDriver()
	gate := make(chan struct{})
	d.gate = gate
	p := NewPool(d, 3)

	_, err := p.Acquire(1, uriFor(1))
	require.NoError(t, err)
	p.Preload(2, uriFor(2))

	// Opens are still parked on the gate; Close must cancel them.
	done := make(chan struct{})
	go func() {
		p.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return while opens were pending")
	}
}
