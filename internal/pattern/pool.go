package pattern

import (
	"container/list"
	"regexp"
	"sync"

	"github.com/cespare/xxhash/v2"

	fsqerrors "github.com/standardbeagle/fsq/internal/errors"
)

const (
	// shardCount spreads pattern lookups over independent mutexes so
	// concurrent search workers do not serialize on one lock.
	shardCount = 16

	// DefaultMaxIdlePerShard bounds how many unreferenced compiled
	// patterns each shard retains for reuse.
	DefaultMaxIdlePerShard = 64
)

// Stats tracks pool performance counters, aggregated across shards.
type Stats struct {
	Hits          int64
	Misses        int64
	Evictions     int64
	Releases      int64
	TotalRequests int64
}

// Pool is a concurrency-safe cache of compiled patterns shared by all query
// compilations. The cache is keyed by the full pattern text: an Acquire for
// text t always returns a handle whose compiled program was built from t,
// never an arbitrary pooled entry. Flags are part of the text (the compiler
// folds them in as inline (?i) groups), so text alone is a complete key.
//
// Entries are reference counted. While referenced they are pinned; once the
// last holder releases, the entry moves to a bounded per-shard idle list and
// is eventually evicted in LRU order.
type Pool struct {
	shards      [shardCount]poolShard
	maxIdle     int
	statsStride [shardCount]Stats // written under each shard's lock
}

type poolShard struct {
	mu      sync.Mutex
	entries map[string]*poolEntry
	idle    *list.List // *poolEntry, front = most recently released
}

type poolEntry struct {
	handle   *Handle
	refs     int
	idleElem *list.Element // non-nil while on the idle list
}

// NewPool creates a pattern pool retaining at most maxIdlePerShard
// unreferenced patterns per shard. Values <= 0 use the default bound.
func NewPool(maxIdlePerShard int) *Pool {
	if maxIdlePerShard <= 0 {
		maxIdlePerShard = DefaultMaxIdlePerShard
	}
	p := &Pool{maxIdle: maxIdlePerShard}
	for i := range p.shards {
		p.shards[i].entries = make(map[string]*poolEntry)
		p.shards[i].idle = list.New()
	}
	return p
}

func (p *Pool) shardFor(patternText string) (*poolShard, *Stats) {
	i := xxhash.Sum64String(patternText) % shardCount
	return &p.shards[i], &p.statsStride[i]
}

// Acquire returns a handle over a compiled program for exactly patternText,
// compiling it on a cache miss. The returned handle must be paired with a
// Release once the caller no longer needs it.
func (p *Pool) Acquire(patternText string) (*Handle, error) {
	shard, stats := p.shardFor(patternText)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	stats.TotalRequests++

	if e, ok := shard.entries[patternText]; ok {
		e.refs++
		if e.idleElem != nil {
			shard.idle.Remove(e.idleElem)
			e.idleElem = nil
		}
		stats.Hits++
		return e.handle, nil
	}

	stats.Misses++
	re, err := regexp.Compile(patternText)
	if err != nil {
		return nil, fsqerrors.NewPatternError(patternText, err)
	}
	e := &poolEntry{
		handle: &Handle{key: patternText, re: re},
		refs:   1,
	}
	shard.entries[patternText] = e
	return e.handle, nil
}

// Release returns a handle to the pool. When the last reference is
// released the compiled pattern becomes eligible for reuse or eviction.
// Releasing a nil handle is a no-op.
func (p *Pool) Release(h *Handle) {
	if h == nil {
		return
	}
	shard, stats := p.shardFor(h.key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	e, ok := shard.entries[h.key]
	if !ok {
		return
	}
	stats.Releases++
	if e.refs > 0 {
		e.refs--
	}
	if e.refs == 0 && e.idleElem == nil {
		e.idleElem = shard.idle.PushFront(e)
		for shard.idle.Len() > p.maxIdle {
			back := shard.idle.Back()
			victim := back.Value.(*poolEntry)
			shard.idle.Remove(back)
			victim.idleElem = nil
			delete(shard.entries, victim.handle.key)
			stats.Evictions++
		}
	}
}

// GetStats returns aggregated pool statistics.
func (p *Pool) GetStats() Stats {
	var total Stats
	for i := range p.shards {
		shard := &p.shards[i]
		shard.mu.Lock()
		s := p.statsStride[i]
		shard.mu.Unlock()
		total.Hits += s.Hits
		total.Misses += s.Misses
		total.Evictions += s.Evictions
		total.Releases += s.Releases
		total.TotalRequests += s.TotalRequests
	}
	return total
}

// Size returns the number of cached patterns, referenced and idle.
func (p *Pool) Size() int {
	n := 0
	for i := range p.shards {
		shard := &p.shards[i]
		shard.mu.Lock()
		n += len(shard.entries)
		shard.mu.Unlock()
	}
	return n
}

// Clear drops every cached pattern and resets statistics. Outstanding
// handles stay usable; they are simply no longer pooled.
func (p *Pool) Clear() {
	for i := range p.shards {
		shard := &p.shards[i]
		shard.mu.Lock()
		shard.entries = make(map[string]*poolEntry)
		shard.idle = list.New()
		p.statsStride[i] = Stats{}
		shard.mu.Unlock()
	}
}
