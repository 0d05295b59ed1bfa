package rexbind

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/coregx/coregex"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheCapacity is the compiled-pattern cache capacity a new Context
// starts with.
const DefaultCacheCapacity = 16

// patternCache is a mutex-guarded LRU cache of compiled engine regexes,
// keyed by the flag-prefixed pattern source. Creating the same pattern twice
// reuses one compilation; concurrent first-time compiles of the same key are
// deduplicated through singleflight.
type patternCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	group    singleflight.Group
}

type cacheEntry struct {
	key string
	re  *coregex.Regex
}

func newPatternCache(capacity int) *patternCache {
	return &patternCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// get retrieves a compiled regex and promotes it to most recently used.
func (pc *patternCache) get(key string) (*coregex.Regex, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	el, ok := pc.items[key]
	if !ok {
		return nil, false
	}
	pc.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).re, true
}

// set inserts or replaces an entry, evicting the least recently used entry
// when at capacity.
func (pc *patternCache) set(key string, re *coregex.Regex) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if el, ok := pc.items[key]; ok {
		el.Value.(*cacheEntry).re = re
		pc.ll.MoveToFront(el)
		return
	}
	for pc.ll.Len() >= pc.capacity {
		pc.evictLocked()
	}
	pc.items[key] = pc.ll.PushFront(&cacheEntry{key: key, re: re})
}

func (pc *patternCache) evictLocked() {
	el := pc.ll.Back()
	if el == nil {
		return
	}
	pc.ll.Remove(el)
	delete(pc.items, el.Value.(*cacheEntry).key)
}

// getOrCompile returns the cached compilation of key, compiling it once on
// a miss.
func (pc *patternCache) getOrCompile(key string) (*coregex.Regex, error) {
	if re, ok := pc.get(key); ok {
		return re, nil
	}
	v, err, _ := pc.group.Do(key, func() (any, error) {
		if re, ok := pc.get(key); ok {
			return re, nil
		}
		re, err := coregex.Compile(key)
		if err != nil {
			return nil, err
		}
		pc.set(key, re)
		return re, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*coregex.Regex), nil
}

// Capacity returns the current cache capacity.
func (pc *patternCache) Capacity() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.capacity
}

// SetCapacity resizes the cache, evicting least recently used entries down
// to the new capacity. Capacities below 1 are rejected.
func (pc *patternCache) SetCapacity(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: cache capacity %d, need >= 1", ErrInvalidArgument, n)
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.capacity = n
	for pc.ll.Len() > n {
		pc.evictLocked()
	}
	return nil
}
