package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFixedClock_Frozen(t *testing.T) {
	clock := NewFixedClock(epoch)

	assert.Equal(t, epoch, clock.Now())
	assert.Equal(t, epoch, clock.Now())
}

func TestFixedClock_Advance(t *testing.T) {
	clock := NewFixedClock(epoch)

	got := clock.Advance(36 * time.Hour)
	assert.Equal(t, time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), got)
	assert.Equal(t, got, clock.Now())
}

func TestFixedClock_SetBackwards(t *testing.T) {
	clock := NewFixedClock(epoch)

	earlier := epoch.AddDate(0, -1, 0)
	clock.Set(earlier)
	assert.Equal(t, earlier, clock.Now())
}

func TestFixedClock_ThreadSafe(t *testing.T) {
	clock := NewFixedClock(epoch)
	const numGoroutines = 50

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Minute)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, epoch.Add(numGoroutines*time.Minute), clock.Now())
}
