// Package search runs queries over entry snapshots. An Orchestrator owns
// the registry of in-flight searches; each search gets a dedicated worker
// that fans entry evaluation out across a bounded group and delivers
// results either into a pollable buffer or through a caller callback.
package search

import (
	"regexp"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/fsq/internal/debug"
	"github.com/standardbeagle/fsq/internal/index"
	"github.com/standardbeagle/fsq/internal/matcher"
	"github.com/standardbeagle/fsq/internal/pattern"
	"github.com/standardbeagle/fsq/internal/query"
)

// Callback receives push-mode results. When entry evaluation is fanned out,
// the callback is invoked concurrently from multiple workers and must be
// safe for that.
type Callback func(Result)

// Orchestrator owns the active-search registry and the shared matcher. All
// methods are safe for concurrent use.
type Orchestrator struct {
	mu      sync.Mutex
	jobs    map[uint64]*job
	nextID  atomic.Uint64
	matcher *matcher.Matcher
	workers int
}

// job is one in-flight search. The results buffer is unbounded; the
// producer side appends under mu and the poll side drains under the same
// lock.
type job struct {
	id       uint64
	cancel   atomic.Bool
	done     chan struct{}
	callback Callback // nil = pull mode

	mu       sync.Mutex
	results  []Result
	finished bool
}

// NewOrchestrator creates an orchestrator evaluating patterns through pool.
// workers bounds the per-search entry fan-out; zero or negative means
// GOMAXPROCS.
func NewOrchestrator(pool *pattern.Pool, workers int) *Orchestrator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Orchestrator{
		jobs:    make(map[uint64]*job),
		matcher: matcher.NewMatcher(pool),
		workers: workers,
	}
}

// StartSearch begins a pull-mode search over snap and returns its handle
// immediately. Results accumulate until drained with PollResults.
func (o *Orchestrator) StartSearch(snap *index.Snapshot, queryText string) uint64 {
	return o.start(snap, queryText, nil)
}

// StartSearchWithCallback begins a push-mode search: cb is invoked from
// worker goroutines as matches are found. See Callback for the concurrency
// contract.
func (o *Orchestrator) StartSearchWithCallback(snap *index.Snapshot, queryText string, cb Callback) uint64 {
	return o.start(snap, queryText, cb)
}

func (o *Orchestrator) start(snap *index.Snapshot, queryText string, cb Callback) uint64 {
	j := &job{
		id:       o.nextID.Add(1),
		done:     make(chan struct{}),
		callback: cb,
	}

	o.mu.Lock()
	o.jobs[j.id] = j
	o.mu.Unlock()

	debug.LogSearch("search %d started: %q over %d entries\n", j.id, queryText, snap.Len())
	go o.run(j, snap, queryText)
	return j.id
}

// PollResults drains all currently buffered results for handle without
// blocking. Once the worker has finished and the buffer is drained, the
// handle is unregistered; an unknown or expired handle yields an empty
// result set, never an error.
func (o *Orchestrator) PollResults(handle uint64) []Result {
	o.mu.Lock()
	j, ok := o.jobs[handle]
	if !ok {
		o.mu.Unlock()
		return nil
	}

	j.mu.Lock()
	out := j.results
	j.results = nil
	drained := j.finished
	j.mu.Unlock()

	if drained {
		delete(o.jobs, handle)
	}
	o.mu.Unlock()
	return out
}

// CancelSearch sets the cancellation flag and blocks until the worker has
// fully stopped. After it returns no further results are delivered in
// either mode.
func (o *Orchestrator) CancelSearch(handle uint64) {
	o.mu.Lock()
	j, ok := o.jobs[handle]
	o.mu.Unlock()
	if !ok {
		return
	}

	j.cancel.Store(true)
	<-j.done

	o.mu.Lock()
	delete(o.jobs, handle)
	o.mu.Unlock()
	debug.LogSearch("search %d cancelled\n", handle)
}

// ShutdownAll cancels and joins every registered search. Safe to call
// multiple times; later calls see an empty registry and return promptly.
func (o *Orchestrator) ShutdownAll() {
	o.mu.Lock()
	jobs := make([]*job, 0, len(o.jobs))
	for _, j := range o.jobs {
		jobs = append(jobs, j)
	}
	o.jobs = make(map[uint64]*job)
	o.mu.Unlock()

	for _, j := range jobs {
		j.cancel.Store(true)
	}
	for _, j := range jobs {
		<-j.done
	}
}

func (o *Orchestrator) unregister(j *job) {
	o.mu.Lock()
	if o.jobs[j.id] == j {
		delete(o.jobs, j.id)
	}
	o.mu.Unlock()
}

// Active reports whether handle is still registered.
func (o *Orchestrator) Active(handle uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.jobs[handle]
	return ok
}

// ActiveSearches returns the number of registered handles, including
// finished pull-mode searches awaiting their final drain.
func (o *Orchestrator) ActiveSearches() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.jobs)
}

// run is the per-search worker. It prepares the predicate, fans entries
// out across the group, then marks the job finished.
func (o *Orchestrator) run(j *job, snap *index.Snapshot, queryText string) {
	defer close(j.done)

	pred := o.prepare(queryText)
	if pred.compiled != nil {
		defer o.matcher.Release(pred.compiled)
	}

	// Push mode has no poll side to clean up after itself.
	if j.callback != nil {
		defer o.unregister(j)
	}

	entries := snap.Entries()
	if len(entries) == 0 {
		j.finish()
		return
	}

	var g errgroup.Group
	g.SetLimit(o.workers)
	chunk := (len(entries) + o.workers - 1) / o.workers
	for lo := 0; lo < len(entries); lo += chunk {
		hi := lo + chunk
		if hi > len(entries) {
			hi = len(entries)
		}
		part := entries[lo:hi]
		g.Go(func() error {
			for i := range part {
				if j.cancel.Load() {
					return nil
				}
				o.evalEntry(j, pred, part[i])
			}
			return nil
		})
	}
	g.Wait()
	j.finish()
}

// evalEntry tests one entry and delivers a result on match. Cancellation is
// checked before entry evaluation begins; an in-flight evaluation always
// completes.
func (o *Orchestrator) evalEntry(j *job, pred predicate, e index.Entry) {
	if pred.compiled != nil {
		combined := e.Combined()
		if !o.matcher.IsMatch(pred.compiled, combined) {
			return
		}
		metas := o.matcher.CapturesMeta(pred.compiled, combined)
		j.deliver(newResult(e, serializeHighlights(metas, combined)))
		return
	}
	if pred.matchFallback(e) {
		j.deliver(newResult(e, emptyHighlights))
	}
}

func (j *job) deliver(r Result) {
	if j.callback != nil {
		j.callback(r)
		return
	}
	j.mu.Lock()
	j.results = append(j.results, r)
	j.mu.Unlock()
}

func (j *job) finish() {
	j.mu.Lock()
	j.finished = true
	j.mu.Unlock()
}

// predicate is the prepared matcher for one search: either a compiled
// query tree or the fallback literal/regex form.
type predicate struct {
	compiled *matcher.Compiled
	fallback fallbackMatcher
}

// prepare parses and compiles queryText. Any parse or compile failure
// silently degrades to fallback matching; query-layer errors never surface
// to the caller.
func (o *Orchestrator) prepare(queryText string) predicate {
	ast, ok := query.NewParser(queryText).Parse()
	if !ok {
		debug.LogQuery("parse failed for %q, using fallback\n", queryText)
		return predicate{fallback: newFallbackMatcher(queryText)}
	}
	compiled, err := o.matcher.Compile(ast)
	if err != nil {
		debug.LogQuery("compile failed for %q: %v, using fallback\n", queryText, err)
		return predicate{fallback: newFallbackMatcher(queryText)}
	}
	return predicate{compiled: compiled}
}

func (p predicate) matchFallback(e index.Entry) bool {
	return p.fallback.match(e)
}

// regexPrefix marks a fallback query as a raw regular expression.
const regexPrefix = "re:"

// fallbackMatcher is the legacy matching path: a raw regex tested against
// name and path, or case-insensitive substring containment over the
// normalized name and lowercased path. An invalid regex degrades further
// to substring matching on the remaining text.
type fallbackMatcher struct {
	re       *regexp.Regexp
	lowerPat string
}

func newFallbackMatcher(queryText string) fallbackMatcher {
	if strings.HasPrefix(queryText, regexPrefix) {
		rest := queryText[len(regexPrefix):]
		if re, err := regexp.Compile(rest); err == nil {
			return fallbackMatcher{re: re}
		}
		return fallbackMatcher{lowerPat: strings.ToLower(rest)}
	}
	return fallbackMatcher{lowerPat: strings.ToLower(queryText)}
}

func (f fallbackMatcher) match(e index.Entry) bool {
	if f.re != nil {
		return f.re.MatchString(e.Path) || f.re.MatchString(e.Name)
	}
	return strings.Contains(e.Normalized, f.lowerPat) ||
		strings.Contains(strings.ToLower(e.Path), f.lowerPat)
}
