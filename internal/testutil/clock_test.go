package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_StartsAtEpoch(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Calls())
	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, int64(1), clock.Calls())
}

func TestDeterministicClock_AdvancesOneStepPerCall(t *testing.T) {
	clock := NewDeterministicClock()

	first := clock.Now()
	second := clock.Now()
	third := clock.Now()

	assert.Equal(t, time.Second, second.Sub(first))
	assert.Equal(t, time.Second, third.Sub(second))
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock()
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Calls())
	assert.Equal(t, Epoch, clock.Now())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock()
	const goroutines = 50
	const calls = 40

	var mu sync.Mutex
	seen := make(map[time.Time]bool)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				ts := clock.Now()
				mu.Lock()
				require.False(t, seen[ts], "duplicate instant %v", ts)
				seen[ts] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*calls)
	assert.Equal(t, int64(goroutines*calls), clock.Calls())
}
