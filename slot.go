package rexbind

import "fmt"

// Handle identifies a live entry in a Context's slot table.
//
// Handles are small non-negative integers. They are only meaningful to the
// Context that issued them, and only until they are destroyed. The reserved
// boundary sentinels -1 (not found) and -2 (timed out) are never valid
// handles.
type Handle int

// slotKind tags the variant stored in a slot.
type slotKind uint8

const (
	kindPattern slotKind = iota
	kindMatch
	kindGroup
	kindCapture
	kindMatchSeq
	kindStringSeq
)

func (k slotKind) String() string {
	switch k {
	case kindPattern:
		return "pattern"
	case kindMatch:
		return "match"
	case kindGroup:
		return "group"
	case kindCapture:
		return "capture"
	case kindMatchSeq:
		return "matchseq"
	case kindStringSeq:
		return "stringseq"
	default:
		return "unknown"
	}
}

// slotValue is the closed variant set a slot can hold. The marker method
// keeps the set sealed: only the six result-graph types implement it.
type slotValue interface {
	slotKind() slotKind
}

func (*Pattern) slotKind() slotKind   { return kindPattern }
func (*Match) slotKind() slotKind     { return kindMatch }
func (*Group) slotKind() slotKind     { return kindGroup }
func (*Capture) slotKind() slotKind   { return kindCapture }
func (*MatchSeq) slotKind() slotKind  { return kindMatchSeq }
func (*StringSeq) slotKind() slotKind { return kindStringSeq }

// register stores a value and returns its handle. The oldest freed index is
// reused first; a new index is appended only when the free queue is empty.
// Callers must hold c.mu.
func (c *Context) register(v slotValue) Handle {
	if len(c.free) > 0 {
		h := c.free[0]
		c.free = c.free[1:]
		c.slots[h] = v
		return h
	}
	c.slots = append(c.slots, v)
	return Handle(len(c.slots) - 1)
}

// put stores a value under the table lock. Used by operations that build a
// value outside the lock before publishing it.
func (c *Context) put(v slotValue) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.register(v)
}

// lookup returns the value stored under h. Callers must hold c.mu.
func (c *Context) lookup(h Handle) (slotValue, error) {
	if h < 0 || int(h) >= len(c.slots) || c.slots[h] == nil {
		return nil, fmt.Errorf("%w: %d", ErrHandleNotFound, h)
	}
	return c.slots[h], nil
}

// slotGet retrieves the value under h as T, failing with ErrHandleNotFound
// for a dead handle and ErrTypeMismatch for a live handle of another kind.
func slotGet[T slotValue](c *Context, h Handle) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.lookup(h)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: handle %d holds %s, want %s",
			ErrTypeMismatch, h, v.slotKind(), zero.slotKind())
	}
	return t, nil
}

// Destroy clears the slot under h and queues its index for reuse.
// Returns false, not an error, when h is already invalid.
func (c *Context) Destroy(h Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h < 0 || int(h) >= len(c.slots) || c.slots[h] == nil {
		return false
	}
	c.slots[h] = nil
	c.free = append(c.free, h)
	debugf("destroy handle %d", h)
	return true
}

// DestroyAll clears every slot and the free queue. After the reset, newly
// issued handles start again from index 0. Idempotent.
func (c *Context) DestroyAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = c.slots[:0]
	c.free = nil
	debugf("destroy all")
}
