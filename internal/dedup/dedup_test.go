package dedup

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuard_SeenAndMark(t *testing.T) {
	g := New(10, time.Minute)

	assert.False(t, g.SeenAndMark("cb:1"))
	assert.True(t, g.SeenAndMark("cb:1"))
	assert.True(t, g.SeenAndMark("cb:1"))
	assert.False(t, g.SeenAndMark("cb:2"))
	assert.Equal(t, 2, g.Len())
}

func TestGuard_ConcurrentCallersGetOneFalse(t *testing.T) {
	g := New(100, time.Minute)

	var fresh atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !g.SeenAndMark(MessageKey(1, 2, 3)) {
				fresh.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fresh.Load())
}

func TestGuard_EvictsByCapacity(t *testing.T) {
	g := New(2, time.Minute)

	g.SeenAndMark("a")
	g.SeenAndMark("b")
	g.SeenAndMark("c")

	assert.Equal(t, 2, g.Len())
	assert.False(t, g.SeenAndMark("a"), "oldest id should have been evicted")
}

func TestGuard_EvictsByAge(t *testing.T) {
	g := New(10, 50*time.Millisecond)

	g.SeenAndMark("a")
	time.Sleep(120 * time.Millisecond)

	assert.False(t, g.SeenAndMark("a"), "expired id should be forgotten")
}

func TestGuard_Reset(t *testing.T) {
	g := New(10, time.Minute)
	g.SeenAndMark("a")
	g.Reset()
	assert.Equal(t, 0, g.Len())
	assert.False(t, g.SeenAndMark("a"))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "msg:-100:42:1700000000", MessageKey(-100, 42, 1700000000))
	assert.Equal(t, "cb:abc", CallbackKey("abc"))
}
