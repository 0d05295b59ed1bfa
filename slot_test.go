package rexbind_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexbind/rexbind"
)

func newPattern(t *testing.T, ctx *rexbind.Context, expr string) rexbind.Handle {
	t.Helper()
	h, err := ctx.CreatePattern(expr, 0, time.Second)
	require.NoError(t, err)
	return h
}

func TestHandleAssignmentIsSequential(t *testing.T) {
	ctx := rexbind.NewContext()
	for i := range 4 {
		h := newPattern(t, ctx, "x")
		assert.Equal(t, rexbind.Handle(i), h)
	}
}

func TestDestroyedIndicesAreReusedFIFO(t *testing.T) {
	ctx := rexbind.NewContext()
	for range 4 {
		newPattern(t, ctx, "x")
	}

	require.True(t, ctx.Destroy(2))
	require.True(t, ctx.Destroy(0))
	require.True(t, ctx.Destroy(3))

	// Oldest freed index first, then a fresh index once the queue drains.
	assert.Equal(t, rexbind.Handle(2), newPattern(t, ctx, "a"))
	assert.Equal(t, rexbind.Handle(0), newPattern(t, ctx, "b"))
	assert.Equal(t, rexbind.Handle(3), newPattern(t, ctx, "c"))
	assert.Equal(t, rexbind.Handle(4), newPattern(t, ctx, "d"))
}

func TestDestroyInvalidHandle(t *testing.T) {
	ctx := rexbind.NewContext()
	h := newPattern(t, ctx, "x")

	assert.False(t, ctx.Destroy(-1))
	assert.False(t, ctx.Destroy(99))
	assert.True(t, ctx.Destroy(h))
	// Second destroy of the same handle is a clean false, not an error.
	assert.False(t, ctx.Destroy(h))
}

func TestDestroyedHandleFailsHandleNotFound(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, "x")
	m, err := ctx.Match(p, "x", 0)
	require.NoError(t, err)
	require.True(t, ctx.Destroy(m))

	_, err = ctx.Value(m)
	assert.ErrorIs(t, err, rexbind.ErrHandleNotFound)
	_, err = ctx.Next(m)
	assert.ErrorIs(t, err, rexbind.ErrHandleNotFound)
}

func TestDestroyAll(t *testing.T) {
	ctx := rexbind.NewContext()
	p := newPattern(t, ctx, "x+")
	m, err := ctx.Match(p, "xx", 0)
	require.NoError(t, err)
	seq, err := ctx.Matches(p, "x x", 0)
	require.NoError(t, err)

	ctx.DestroyAll()

	for _, h := range []rexbind.Handle{p, m, seq} {
		_, err := ctx.Index(h)
		assert.ErrorIs(t, err, rexbind.ErrHandleNotFound)
	}

	// The index space restarts from the smallest index.
	assert.Equal(t, rexbind.Handle(0), newPattern(t, ctx, "y"))
	assert.Equal(t, rexbind.Handle(1), newPattern(t, ctx, "z"))

	// Idempotent.
	ctx.DestroyAll()
	ctx.DestroyAll()
	assert.Equal(t, rexbind.Handle(0), newPattern(t, ctx, "y"))
}

// graph builds one live handle of every variant.
func graph(t *testing.T) (ctx *rexbind.Context, pattern, match, group, capture, matchSeq, stringSeq rexbind.Handle) {
	t.Helper()
	ctx = rexbind.NewContext()
	var err error

	pattern = newPattern(t, ctx, `(a+)`)
	match, err = ctx.Match(pattern, "aa b a", 0)
	require.NoError(t, err)
	group, err = ctx.Group(match, 1)
	require.NoError(t, err)
	capture, err = ctx.Capture(group, 0)
	require.NoError(t, err)
	matchSeq, err = ctx.Matches(pattern, "aa b a", 0)
	require.NoError(t, err)
	stringSeq, err = ctx.Split(pattern, "aa b a", -1, 0)
	require.NoError(t, err)
	return
}

func TestTypeMismatchAcrossVariants(t *testing.T) {
	ctx, pattern, match, group, capture, matchSeq, stringSeq := graph(t)

	// Operations that demand one specific variant, probed with every other.
	type probe struct {
		name string
		call func(h rexbind.Handle) error
		ok   []rexbind.Handle
	}
	probes := []probe{
		{"Match", func(h rexbind.Handle) error {
			_, err := ctx.Match(h, "a", 0)
			return err
		}, []rexbind.Handle{pattern}},
		{"Next", func(h rexbind.Handle) error {
			_, err := ctx.Next(h)
			return err
		}, []rexbind.Handle{match}},
		{"Group", func(h rexbind.Handle) error {
			_, err := ctx.Group(h, 0)
			return err
		}, []rexbind.Handle{match}},
		{"Capture", func(h rexbind.Handle) error {
			_, err := ctx.Capture(h, 0)
			return err
		}, []rexbind.Handle{group}},
		{"Name", func(h rexbind.Handle) error {
			_, err := ctx.Name(h)
			return err
		}, []rexbind.Handle{group}},
		{"SeqLen", func(h rexbind.Handle) error {
			_, err := ctx.SeqLen(h)
			return err
		}, []rexbind.Handle{matchSeq, stringSeq}},
		{"MatchAt", func(h rexbind.Handle) error {
			_, err := ctx.MatchAt(h, 0)
			return err
		}, []rexbind.Handle{matchSeq}},
		{"StringAt", func(h rexbind.Handle) error {
			_, err := ctx.StringAt(h, 0)
			return err
		}, []rexbind.Handle{stringSeq}},
		{"SplitSize", func(h rexbind.Handle) error {
			_, err := ctx.SplitSize(h)
			return err
		}, []rexbind.Handle{stringSeq}},
		{"Value", func(h rexbind.Handle) error {
			_, err := ctx.Value(h)
			return err
		}, []rexbind.Handle{match, group, capture}},
		{"Success", func(h rexbind.Handle) error {
			_, err := ctx.Success(h)
			return err
		}, []rexbind.Handle{match, group}},
	}

	all := []rexbind.Handle{pattern, match, group, capture, matchSeq, stringSeq}
	for _, p := range probes {
		t.Run(p.name, func(t *testing.T) {
			for _, h := range all {
				err := p.call(h)
				allowed := false
				for _, okH := range p.ok {
					if h == okH {
						allowed = true
					}
				}
				if allowed {
					assert.NoError(t, err, "handle %d", h)
				} else {
					assert.ErrorIs(t, err, rexbind.ErrTypeMismatch, "handle %d", h)
				}
			}
		})
	}
}
