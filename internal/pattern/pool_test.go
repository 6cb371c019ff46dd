package pattern

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fsqerrors "github.com/standardbeagle/fsq/internal/errors"
)

func TestPoolAcquireCompilesRequestedPattern(t *testing.T) {
	pool := NewPool(0)

	h, err := pool.Acquire("(foo)")
	require.NoError(t, err)
	assert.Equal(t, "(foo)", h.Pattern())
	assert.True(t, h.IsMatch([]byte("this is foo")))
	assert.False(t, h.IsMatch([]byte("nope")))
	pool.Release(h)
}

// The pool must never hand back a pattern compiled for different text than
// requested, no matter what was released before.
func TestPoolKeyedByPatternText(t *testing.T) {
	pool := NewPool(0)

	first, err := pool.Acquire("(alpha)")
	require.NoError(t, err)
	pool.Release(first)

	second, err := pool.Acquire("(beta)")
	require.NoError(t, err)
	assert.Equal(t, "(beta)", second.Pattern())
	assert.True(t, second.IsMatch([]byte("a beta b")))
	assert.False(t, second.IsMatch([]byte("an alpha")))
	pool.Release(second)
}

func TestPoolReuseHit(t *testing.T) {
	pool := NewPool(0)

	h1, err := pool.Acquire("ab[0-9]+")
	require.NoError(t, err)
	pool.Release(h1)

	h2, err := pool.Acquire("ab[0-9]+")
	require.NoError(t, err)
	assert.Same(t, h1, h2, "released pattern should be reused")

	stats := pool.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.TotalRequests)
}

func TestPoolCompileError(t *testing.T) {
	pool := NewPool(0)

	h, err := pool.Acquire("(unclosed")
	assert.Nil(t, h)
	require.Error(t, err)
	var perr *fsqerrors.PatternError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "(unclosed", perr.Pattern)
	assert.Equal(t, 0, pool.Size(), "failed compilations must not be cached")
}

func TestPoolIdleEviction(t *testing.T) {
	pool := NewPool(2)

	var handles []*Handle
	// Patterns landing in the same shard compete for the same idle bound,
	// so releasing many distinct patterns keeps the pool size bounded.
	for i := 0; i < 64; i++ {
		h, err := pool.Acquire(fmt.Sprintf("(p%d)", i))
		require.NoError(t, err)
		handles = append(handles, h)
	}
	assert.Equal(t, 64, pool.Size(), "referenced entries are pinned")

	for _, h := range handles {
		pool.Release(h)
	}
	assert.LessOrEqual(t, pool.Size(), 2*shardCount)
	assert.Greater(t, pool.GetStats().Evictions, int64(0))
}

func TestPoolReferencedEntriesNotEvicted(t *testing.T) {
	pool := NewPool(1)

	pinned, err := pool.Acquire("(pinned)")
	require.NoError(t, err)

	for i := 0; i < 32; i++ {
		h, err := pool.Acquire(fmt.Sprintf("(filler%d)", i))
		require.NoError(t, err)
		pool.Release(h)
	}

	again, err := pool.Acquire("(pinned)")
	require.NoError(t, err)
	assert.Same(t, pinned, again)
	pool.Release(pinned)
	pool.Release(again)
}

func TestPoolConcurrentAcquireRelease(t *testing.T) {
	pool := NewPool(8)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				text := fmt.Sprintf("(w%d)", i%10)
				h, err := pool.Acquire(text)
				if err != nil {
					t.Error(err)
					return
				}
				if h.Pattern() != text {
					t.Errorf("got pattern %q, want %q", h.Pattern(), text)
					return
				}
				pool.Release(h)
			}
		}(worker)
	}
	wg.Wait()

	stats := pool.GetStats()
	assert.Equal(t, int64(8*200), stats.TotalRequests)
}

func TestPoolClear(t *testing.T) {
	pool := NewPool(0)
	h, err := pool.Acquire("(x)")
	require.NoError(t, err)
	pool.Clear()
	assert.Equal(t, 0, pool.Size())
	// Outstanding handles keep working after a clear.
	assert.True(t, h.IsMatch([]byte("x")))
	pool.Release(h)
}

func TestHandleCaptureRanges(t *testing.T) {
	pool := NewPool(0)
	h, err := pool.Acquire("(ab)([0-9]+)")
	require.NoError(t, err)
	defer pool.Release(h)

	ranges, ok := h.CaptureRanges([]byte("xxab123yy"))
	require.True(t, ok)
	require.Len(t, ranges, 3)
	assert.Equal(t, Range{Start: 2, End: 7}, ranges[0], "group 0 is the whole match")
	assert.Equal(t, Range{Start: 2, End: 4}, ranges[1])
	assert.Equal(t, Range{Start: 4, End: 7}, ranges[2])

	_, ok = h.CaptureRanges([]byte("no digits"))
	assert.False(t, ok)
}
