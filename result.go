package rexbind

import (
	"time"
	"unicode/utf8"

	"github.com/coregx/coregex"
)

// Pattern is a compiled regular expression plus its option flags and the
// time budget applied to every search it runs. Immutable after creation.
type Pattern struct {
	expr    string
	opts    Options
	timeout time.Duration
	re      *coregex.Regex
	names   []string // subexpression names, names[0] == ""
}

// Expr returns the pattern source text as given at creation.
func (p *Pattern) Expr() string { return p.expr }

// Timeout returns the pattern's per-search time budget.
func (p *Pattern) Timeout() time.Duration { return p.timeout }

// deadline computes the hard deadline for one search operation.
func (p *Pattern) deadline() time.Time { return time.Now().Add(p.timeout) }

// groupName returns the name of subexpression i, or "" for positional groups.
func (p *Pattern) groupName(i int) string {
	if i < len(p.names) {
		return p.names[i]
	}
	return ""
}

// Match is one successful occurrence of a Pattern in an input. It is
// immutable and self-contained: it copies everything it needs from the
// engine output, including the state required to resume matching after
// itself, so it stays valid however long the host holds its handle.
type Match struct {
	pat     *Pattern
	input   string
	index   int
	length  int
	value   string
	groups  []*Group // groups[0] is the whole-match group
	nextPos int      // resume position for Next
}

// Group is a named or positional capturing subexpression within a Match.
// A group that did not participate in the match has success == false and
// no captures.
type Group struct {
	success bool
	name    string
	index   int
	length  int
	value   string
	caps    []*Capture
}

// Capture is one concrete occurrence of a group's captured text. The engine
// keeps the last capture of a quantified group, so a successful group
// carries exactly one.
type Capture struct {
	index  int
	length int
	value  string
}

// MatchSeq is the ordered result of a bulk search. Element handles are
// allocated only when an element is requested.
type MatchSeq struct {
	matches []*Match
}

// Len returns the number of matches in the sequence.
func (s *MatchSeq) Len() int { return len(s.matches) }

// StringSeq is the ordered result of a split. The byte length needed for
// bulk transfer (each element plus one terminator) is computed once at
// construction so that SplitSize and SplitFill can never disagree.
type StringSeq struct {
	items   []string
	byteLen int
}

// Len returns the number of strings in the sequence.
func (s *StringSeq) Len() int { return len(s.items) }

func newStringSeq(items []string) *StringSeq {
	n := 0
	for _, it := range items {
		n += len(it) + 1
	}
	return &StringSeq{items: items, byteLen: n}
}

// newMatch wraps one engine result into the immutable match shape.
// loc holds absolute index pairs per subexpression; unmatched groups are -1.
func newMatch(p *Pattern, input string, loc []int) *Match {
	start, end := loc[0], loc[1]
	m := &Match{
		pat:    p,
		input:  input,
		index:  start,
		length: end - start,
		value:  input[start:end],
	}
	n := len(loc) / 2
	m.groups = make([]*Group, 0, n)
	for i := range n {
		gs, ge := loc[2*i], loc[2*i+1]
		g := &Group{name: p.groupName(i)}
		if gs >= 0 {
			g.success = true
			g.index = gs
			g.length = ge - gs
			g.value = input[gs:ge]
			g.caps = []*Capture{{index: gs, length: ge - gs, value: g.value}}
		}
		m.groups = append(m.groups, g)
	}
	m.nextPos = resumePos(input, start, end)
	return m
}

// resumePos returns where the search after a match at [start,end) resumes.
// A zero-length match advances by one rune so enumeration always makes
// forward progress.
func resumePos(input string, start, end int) int {
	if end > start {
		return end
	}
	if end >= len(input) {
		return len(input) + 1
	}
	_, size := utf8.DecodeRuneInString(input[end:])
	if size == 0 {
		size = 1
	}
	return end + size
}

// group returns the group at index i, or nil if out of range.
func (m *Match) group(i int) *Group {
	if i < 0 || i >= len(m.groups) {
		return nil
	}
	return m.groups[i]
}

// groupByName returns the first group with the given name, or nil.
func (m *Match) groupByName(name string) *Group {
	if name == "" {
		return nil
	}
	for _, g := range m.groups {
		if g.name == name {
			return g
		}
	}
	return nil
}

// capture returns the capture at index i, or nil if out of range.
func (g *Group) capture(i int) *Capture {
	if i < 0 || i >= len(g.caps) {
		return nil
	}
	return g.caps[i]
}
