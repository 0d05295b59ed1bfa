package rexbind_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexbind/rexbind"
)

func TestMatchBasics(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `f+`)

	m, err := ctx.Match(p, "offset", 0)
	require.NoError(t, err)

	idx, err := ctx.Index(m)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	length, err := ctx.Length(m)
	require.NoError(t, err)
	assert.Equal(t, 2, length)

	val, err := ctx.Value(m)
	require.NoError(t, err)
	assert.Equal(t, "ff", val)

	ok, err := ctx.Success(m)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchNotFound(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `z`)

	// A failed match is never registered; the search reports ErrNotFound.
	_, err := ctx.Match(p, "aaa", 0)
	assert.ErrorIs(t, err, rexbind.ErrNotFound)
}

func TestMatchStartOffset(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `a`)

	m, err := ctx.Match(p, "aXa", 1)
	require.NoError(t, err)
	idx, err := ctx.Index(m)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = ctx.Match(p, "aXa", 3)
	assert.ErrorIs(t, err, rexbind.ErrNotFound)
	_, err = ctx.Match(p, "aXa", 99)
	assert.ErrorIs(t, err, rexbind.ErrNotFound)
}

func TestResumeSequence(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `X`)

	m1, err := ctx.Match(p, "aXbXc", 0)
	require.NoError(t, err)
	idx1, err := ctx.Index(m1)
	require.NoError(t, err)
	assert.Equal(t, 1, idx1)

	m2, err := ctx.Next(m1)
	require.NoError(t, err)
	idx2, err := ctx.Index(m2)
	require.NoError(t, err)
	assert.Equal(t, 3, idx2)

	_, err = ctx.Next(m2)
	assert.ErrorIs(t, err, rexbind.ErrNotFound)
}

func TestZeroLengthMatchAdvances(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `a*`)

	m, err := ctx.Match(p, "b", 0)
	require.NoError(t, err)

	idx, err := ctx.Index(m)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	length, err := ctx.Length(m)
	require.NoError(t, err)
	assert.Equal(t, 0, length)

	// Resuming never repeats the same offset.
	_, err = ctx.Next(m)
	assert.ErrorIs(t, err, rexbind.ErrNotFound)
}

func TestMatchesEnumeration(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `\d+`)

	seq, err := ctx.Matches(p, "a1b22c333", 0)
	require.NoError(t, err)

	n, err := ctx.SeqLen(seq)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	wantValues := []string{"1", "22", "333"}
	wantIndex := []int{1, 3, 6}
	for i := range n {
		m, err := ctx.MatchAt(seq, i)
		require.NoError(t, err)
		v, err := ctx.Value(m)
		require.NoError(t, err)
		assert.Equal(t, wantValues[i], v)
		idx, err := ctx.Index(m)
		require.NoError(t, err)
		assert.Equal(t, wantIndex[i], idx)
	}

	_, err = ctx.MatchAt(seq, 3)
	assert.ErrorIs(t, err, rexbind.ErrNotFound)
	_, err = ctx.MatchAt(seq, -1)
	assert.ErrorIs(t, err, rexbind.ErrNotFound)
}

func TestMatchesEmptyIsNotAnError(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `z`)

	seq, err := ctx.Matches(p, "aaa", 0)
	require.NoError(t, err)
	n, err := ctx.SeqLen(seq)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMatchesZeroLengthStopsAtInputEnd(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `a*`)

	seq, err := ctx.Matches(p, "aa", 0)
	require.NoError(t, err)
	n, err := ctx.SeqLen(seq)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIsMatch(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `b+`)

	ok, err := ctx.IsMatch(p, "abc", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ctx.IsMatch(p, "xyz", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGroupsAndCaptures(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `(?P<year>\d{4})-(?P<month>\d{2})`)

	m, err := ctx.Match(p, "date: 2026-08-30", 0)
	require.NoError(t, err)

	n, err := ctx.GroupCount(m)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	// Group 0 is the whole match.
	g0, err := ctx.Group(m, 0)
	require.NoError(t, err)
	v0, err := ctx.Value(g0)
	require.NoError(t, err)
	assert.Equal(t, "2026-08", v0)
	name0, err := ctx.Name(g0)
	require.NoError(t, err)
	assert.Equal(t, "", name0)

	g, err := ctx.GroupByName(m, "year")
	require.NoError(t, err)
	v, err := ctx.Value(g)
	require.NoError(t, err)
	assert.Equal(t, "2026", v)
	idx, err := ctx.Index(g)
	require.NoError(t, err)
	assert.Equal(t, 6, idx)

	cn, err := ctx.CaptureCount(g)
	require.NoError(t, err)
	require.Equal(t, 1, cn)
	cp, err := ctx.Capture(g, 0)
	require.NoError(t, err)
	cv, err := ctx.Value(cp)
	require.NoError(t, err)
	assert.Equal(t, "2026", cv)

	_, err = ctx.Group(m, 5)
	assert.ErrorIs(t, err, rexbind.ErrNotFound)
	_, err = ctx.GroupByName(m, "day")
	assert.ErrorIs(t, err, rexbind.ErrNotFound)
}

func TestNonParticipatingGroup(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `(a)|(b)`)

	m, err := ctx.Match(p, "b", 0)
	require.NoError(t, err)

	g1, err := ctx.Group(m, 1)
	require.NoError(t, err)
	ok, err := ctx.Success(g1)
	require.NoError(t, err)
	assert.False(t, ok)
	n, err := ctx.CaptureCount(g1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	_, err = ctx.Capture(g1, 0)
	assert.ErrorIs(t, err, rexbind.ErrNotFound)

	g2, err := ctx.Group(m, 2)
	require.NoError(t, err)
	ok, err = ctx.Success(g2)
	require.NoError(t, err)
	assert.True(t, ok)
	v, err := ctx.Value(g2)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestOptionFlags(t *testing.T) {
	ctx := rexbind.NewContext()

	p, err := ctx.CreatePattern(`abc`, rexbind.OptIgnoreCase, time.Second)
	require.NoError(t, err)
	ok, err := ctx.IsMatch(p, "xABCx", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	p2, err := ctx.CreatePattern(`^b`, rexbind.OptMultiline, time.Second)
	require.NoError(t, err)
	ok, err = ctx.IsMatch(p2, "a\nb", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = ctx.CreatePattern(`x`, rexbind.Options(1<<30), time.Second)
	assert.ErrorIs(t, err, rexbind.ErrInvalidArgument)
}

func TestCreatePatternRejectsBadSyntax(t *testing.T) {
	ctx := rexbind.NewContext()
	_, err := ctx.CreatePattern(`(unclosed`, 0, time.Second)
	assert.ErrorIs(t, err, rexbind.ErrInvalidArgument)
}

func TestTimeoutReportedNotHang(t *testing.T) {
	ctx := rexbind.NewContext()
	// A budget this small is exhausted before the engine is even consulted.
	p, err := ctx.CreatePattern(`(x+)+y`, 0, time.Nanosecond)
	require.NoError(t, err)

	input := "x"
	for range 12 {
		input += input
	}

	begin := time.Now()
	_, err = ctx.Match(p, input, 0)
	assert.ErrorIs(t, err, rexbind.ErrTimeout)

	_, err = ctx.Matches(p, input, 0)
	assert.ErrorIs(t, err, rexbind.ErrTimeout)

	_, err = ctx.Replace(p, input, "-", -1, 0)
	assert.ErrorIs(t, err, rexbind.ErrTimeout)

	ok, err := ctx.IsMatch(p, input, 0)
	assert.ErrorIs(t, err, rexbind.ErrTimeout)
	assert.False(t, ok)

	// The bound holds with a wide tolerance; nothing blocks on the search.
	assert.Less(t, time.Since(begin), 5*time.Second)
}

func TestReplace(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `(\w+)=(\d+)`)

	out, err := ctx.Replace(p, "a=1 b=2", "$2:$1", -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "1:a 2:b", out)

	// max_count limits replacements.
	out, err = ctx.Replace(p, "a=1 b=2", "_", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "_ b=2", out)

	// start keeps earlier text untouched.
	out, err = ctx.Replace(p, "a=1 b=2", "_", -1, 4)
	require.NoError(t, err)
	assert.Equal(t, "a=1 _", out)

	// Zero count replaces nothing.
	out, err = ctx.Replace(p, "a=1", "_", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "a=1", out)
}

func TestReplaceNamedAndLiteralDollar(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, `(?P<key>\w+)=(?P<val>\d+)`)

	out, err := ctx.Replace(p, "a=1", "${val} <- ${key}", -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "1 <- a", out)

	out, err = ctx.Replace(p, "a=1", "$$${val}", -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "$1", out)

	// Unknown references expand to nothing; stray dollars stay literal.
	out, err = ctx.Replace(p, "a=1", "${nope}$", -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "$", out)
}
