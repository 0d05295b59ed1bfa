package rexbind

import "strings"

// Options is a bit set of pattern compilation flags.
//
// Flags map onto the engine's inline flag syntax and are applied to the
// whole pattern at compile time. Unknown bits are rejected by
// [Context.CreatePattern].
type Options uint32

const (
	// OptIgnoreCase makes matching case-insensitive ((?i)).
	OptIgnoreCase Options = 1 << iota

	// OptMultiline makes ^ and $ match at line boundaries ((?m)).
	OptMultiline

	// OptDotAll makes . match newline ((?s)).
	OptDotAll

	// OptUngreedy swaps the meaning of x* and x*? ((?U)).
	OptUngreedy
)

// optAll is the set of recognized option bits.
const optAll = OptIgnoreCase | OptMultiline | OptDotAll | OptUngreedy

// inlinePrefix returns the inline-flag prefix for the option set,
// or "" when no flags are set.
func (o Options) inlinePrefix() string {
	if o == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("(?")
	if o&OptIgnoreCase != 0 {
		b.WriteByte('i')
	}
	if o&OptMultiline != 0 {
		b.WriteByte('m')
	}
	if o&OptDotAll != 0 {
		b.WriteByte('s')
	}
	if o&OptUngreedy != 0 {
		b.WriteByte('U')
	}
	b.WriteByte(')')
	return b.String()
}

// SerializeFlags selects how deep the serializer descends into the
// result graph.
type SerializeFlags uint32

const (
	// IncludeGroups nests the full group array under a serialized match.
	IncludeGroups SerializeFlags = 1 << iota

	// IncludeCaptures nests the capture array under each serialized group.
	IncludeCaptures
)
