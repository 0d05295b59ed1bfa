package rexbind

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// DefaultTimeout is the per-search time budget used when a pattern is
// created without one.
const DefaultTimeout = 5 * time.Second

var debugEnabled = os.Getenv("REXBIND_DEBUG") == "1"

func debugf(format string, args ...any) {
	if debugEnabled {
		fmt.Fprintf(os.Stderr, "rexbind: "+format+"\n", args...)
	}
}

// Context is the process state behind one boundary instance: the slot table,
// its free queue, and the compiled-pattern cache. All methods are safe for
// concurrent use; a single mutex serializes every slot table operation.
//
// Embedders own the Context lifecycle. A process-wide singleton, if one is
// wanted, belongs in the outermost embedding layer.
type Context struct {
	mu    sync.Mutex
	slots []slotValue
	free  []Handle
	cache *patternCache
}

// NewContext returns an empty Context with the default pattern cache.
func NewContext() *Context {
	return &Context{cache: newPatternCache(DefaultCacheCapacity)}
}

// CreatePattern compiles expr with the given option flags and per-search
// time budget and registers it. A timeout <= 0 selects [DefaultTimeout].
// Compilation reuses the context's pattern cache.
func (c *Context) CreatePattern(expr string, opts Options, timeout time.Duration) (Handle, error) {
	if opts&^optAll != 0 {
		return 0, fmt.Errorf("%w: unknown option bits %#x", ErrInvalidArgument, uint32(opts&^optAll))
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	re, err := c.cache.getOrCompile(opts.inlinePrefix() + expr)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	p := &Pattern{
		expr:    expr,
		opts:    opts,
		timeout: timeout,
		re:      re,
		names:   re.SubexpNames(),
	}
	h := c.put(p)
	debugf("pattern %q -> handle %d", expr, h)
	return h, nil
}

// Match finds the first match of pattern h in input at or after start and
// registers it. Returns ErrNotFound when input has no match and ErrTimeout
// when the pattern's budget runs out; a failed match is never registered.
func (c *Context) Match(h Handle, input string, start int) (Handle, error) {
	p, err := slotGet[*Pattern](c, h)
	if err != nil {
		return 0, err
	}
	m, err := p.matchAt(input, start, p.deadline())
	if err != nil {
		return 0, err
	}
	return c.put(m), nil
}

// IsMatch reports whether pattern h matches input at or after start,
// without registering anything.
func (c *Context) IsMatch(h Handle, input string, start int) (bool, error) {
	p, err := slotGet[*Pattern](c, h)
	if err != nil {
		return false, err
	}
	_, err = p.findAt(input, start, p.deadline())
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Matches finds every non-overlapping match of pattern h in input from
// start to the input end and registers the whole sequence as one handle.
// An input with no matches yields an empty sequence, not an error; a
// timeout discards all partial work.
func (c *Context) Matches(h Handle, input string, start int) (Handle, error) {
	p, err := slotGet[*Pattern](c, h)
	if err != nil {
		return 0, err
	}
	ms, err := p.findAll(input, start, p.deadline())
	if err != nil {
		return 0, err
	}
	return c.put(&MatchSeq{matches: ms}), nil
}

// Next resumes matching after match h and registers the next match.
// The search starts at h's end, or one rune past its start when h was
// zero-length, and gets a fresh time budget.
func (c *Context) Next(h Handle) (Handle, error) {
	m, err := slotGet[*Match](c, h)
	if err != nil {
		return 0, err
	}
	nm, err := m.next(m.pat.deadline())
	if err != nil {
		return 0, err
	}
	return c.put(nm), nil
}

// GroupCount returns the number of groups of match h, including the
// whole-match group at index 0.
func (c *Context) GroupCount(h Handle) (int, error) {
	m, err := slotGet[*Match](c, h)
	if err != nil {
		return 0, err
	}
	return len(m.groups), nil
}

// Group registers and returns the group of match h at index i.
// Index 0 is the whole-match group.
func (c *Context) Group(h Handle, i int) (Handle, error) {
	m, err := slotGet[*Match](c, h)
	if err != nil {
		return 0, err
	}
	g := m.group(i)
	if g == nil {
		return 0, fmt.Errorf("%w: group %d of %d", ErrNotFound, i, len(m.groups))
	}
	return c.put(g), nil
}

// GroupByName registers and returns the named group of match h.
func (c *Context) GroupByName(h Handle, name string) (Handle, error) {
	m, err := slotGet[*Match](c, h)
	if err != nil {
		return 0, err
	}
	g := m.groupByName(name)
	if g == nil {
		return 0, fmt.Errorf("%w: group %q", ErrNotFound, name)
	}
	return c.put(g), nil
}

// CaptureCount returns the number of captures of group h. A group that did
// not participate in its match has none.
func (c *Context) CaptureCount(h Handle) (int, error) {
	g, err := slotGet[*Group](c, h)
	if err != nil {
		return 0, err
	}
	return len(g.caps), nil
}

// Capture registers and returns the capture of group h at index i.
func (c *Context) Capture(h Handle, i int) (Handle, error) {
	g, err := slotGet[*Group](c, h)
	if err != nil {
		return 0, err
	}
	cp := g.capture(i)
	if cp == nil {
		return 0, fmt.Errorf("%w: capture %d of %d", ErrNotFound, i, len(g.caps))
	}
	return c.put(cp), nil
}

// SeqLen returns the element count of a match or string sequence.
func (c *Context) SeqLen(h Handle) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.lookup(h)
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case *MatchSeq:
		return len(t.matches), nil
	case *StringSeq:
		return len(t.items), nil
	default:
		return 0, fmt.Errorf("%w: handle %d holds %s, want a sequence",
			ErrTypeMismatch, h, v.slotKind())
	}
}

// MatchAt registers and returns the match at index i of sequence h. Element
// handles are allocated only here, on request; each call issues a fresh
// handle the host is responsible for destroying.
func (c *Context) MatchAt(h Handle, i int) (Handle, error) {
	s, err := slotGet[*MatchSeq](c, h)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(s.matches) {
		return 0, fmt.Errorf("%w: match %d of %d", ErrNotFound, i, len(s.matches))
	}
	return c.put(s.matches[i]), nil
}

// StringAt returns the string at index i of sequence h.
func (c *Context) StringAt(h Handle, i int) (string, error) {
	s, err := slotGet[*StringSeq](c, h)
	if err != nil {
		return "", err
	}
	if i < 0 || i >= len(s.items) {
		return "", fmt.Errorf("%w: string %d of %d", ErrNotFound, i, len(s.items))
	}
	return s.items[i], nil
}

// Index returns the start offset of a match, group, or capture.
func (c *Context) Index(h Handle) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.lookup(h)
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case *Match:
		return t.index, nil
	case *Group:
		return t.index, nil
	case *Capture:
		return t.index, nil
	default:
		return 0, accessorMismatch(h, v, "index")
	}
}

// Length returns the matched length of a match, group, or capture.
func (c *Context) Length(h Handle) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.lookup(h)
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case *Match:
		return t.length, nil
	case *Group:
		return t.length, nil
	case *Capture:
		return t.length, nil
	default:
		return 0, accessorMismatch(h, v, "length")
	}
}

// Value returns the matched text of a match, group, or capture.
func (c *Context) Value(h Handle) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.lookup(h)
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case *Match:
		return t.value, nil
	case *Group:
		return t.value, nil
	case *Capture:
		return t.value, nil
	default:
		return "", accessorMismatch(h, v, "value")
	}
}

// Success reports whether a match or group participated in its match.
// A registered match is always successful; failed matches are reported as
// ErrNotFound at search time and never stored.
func (c *Context) Success(h Handle) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.lookup(h)
	if err != nil {
		return false, err
	}
	switch t := v.(type) {
	case *Match:
		return true, nil
	case *Group:
		return t.success, nil
	default:
		return false, accessorMismatch(h, v, "success")
	}
}

// Name returns the name of group h, or "" for positional groups.
func (c *Context) Name(h Handle) (string, error) {
	g, err := slotGet[*Group](c, h)
	if err != nil {
		return "", err
	}
	return g.name, nil
}

func accessorMismatch(h Handle, v slotValue, field string) error {
	return fmt.Errorf("%w: handle %d holds %s, which has no %s",
		ErrTypeMismatch, h, v.slotKind(), field)
}

// ToJSON serializes any live result handle (match, group, capture, or a
// sequence) at the depth selected by flags. Patterns are not result nodes
// and fail with ErrTypeMismatch.
func (c *Context) ToJSON(h Handle, flags SerializeFlags) (string, error) {
	c.mu.Lock()
	v, err := c.lookup(h)
	c.mu.Unlock()
	if err != nil {
		return "", err
	}
	if _, ok := v.(*Pattern); ok {
		return "", fmt.Errorf("%w: handle %d holds a pattern", ErrTypeMismatch, h)
	}
	return serialize(v, flags), nil
}

// MatchJSON searches like [Context.Match] but serializes the match directly
// instead of registering a handle, so a host can retrieve a whole result in
// a single boundary call.
func (c *Context) MatchJSON(h Handle, input string, start int, flags SerializeFlags) (string, error) {
	p, err := slotGet[*Pattern](c, h)
	if err != nil {
		return "", err
	}
	m, err := p.matchAt(input, start, p.deadline())
	if err != nil {
		return "", err
	}
	return serialize(m, flags), nil
}

// MatchesJSON searches like [Context.Matches] but serializes the sequence
// directly instead of registering a handle.
func (c *Context) MatchesJSON(h Handle, input string, start int, flags SerializeFlags) (string, error) {
	p, err := slotGet[*Pattern](c, h)
	if err != nil {
		return "", err
	}
	ms, err := p.findAll(input, start, p.deadline())
	if err != nil {
		return "", err
	}
	return serialize(&MatchSeq{matches: ms}, flags), nil
}

// SplitJSON splits like [Context.Split] but serializes the pieces directly
// instead of registering a handle.
func (c *Context) SplitJSON(h Handle, input string, n, start int) (string, error) {
	p, err := slotGet[*Pattern](c, h)
	if err != nil {
		return "", err
	}
	pieces, err := p.split(input, n, start, p.deadline())
	if err != nil {
		return "", err
	}
	return serialize(newStringSeq(pieces), 0), nil
}

// Split cuts input at every match of pattern h and registers the pieces as
// one string sequence. n limits the number of pieces (n < 0 for no limit);
// start is where matching begins, earlier text is not part of any piece.
func (c *Context) Split(h Handle, input string, n, start int) (Handle, error) {
	p, err := slotGet[*Pattern](c, h)
	if err != nil {
		return 0, err
	}
	pieces, err := p.split(input, n, start, p.deadline())
	if err != nil {
		return 0, err
	}
	return c.put(newStringSeq(pieces)), nil
}

// Replace substitutes the expanded template for up to n matches of pattern
// h in input (n < 0 replaces all), starting the search at start. The
// template supports $0-$9, ${name}, ${number}, and $$.
func (c *Context) Replace(h Handle, input, template string, n, start int) (string, error) {
	p, err := slotGet[*Pattern](c, h)
	if err != nil {
		return "", err
	}
	return p.replace(input, template, n, start, p.deadline())
}

// CacheCapacity returns the compiled-pattern cache capacity.
func (c *Context) CacheCapacity() int {
	return c.cache.Capacity()
}

// SetCacheCapacity resizes the compiled-pattern cache. Capacities below 1
// fail with ErrInvalidArgument.
func (c *Context) SetCacheCapacity(n int) error {
	return c.cache.SetCapacity(n)
}
