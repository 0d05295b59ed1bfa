package rexbind_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexbind/rexbind"
)

func splitSeq(t *testing.T, ctx *rexbind.Context, expr, input string, n int) rexbind.Handle {
	t.Helper()
	p := newPattern(t, ctx, expr)
	seq, err := ctx.Split(p, input, n, 0)
	require.NoError(t, err)
	return seq
}

func TestSplitPieces(t *testing.T) {
	ctx := rexbind.NewContext()
	seq := splitSeq(t, ctx, `,`, "a,b,c", -1)

	n, err := ctx.SeqLen(seq)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	var got []string
	for i := range n {
		s, err := ctx.StringAt(seq, i)
		require.NoError(t, err)
		got = append(got, s)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("pieces mismatch (-want +got):\n%s", diff)
	}

	_, err = ctx.StringAt(seq, 3)
	assert.ErrorIs(t, err, rexbind.ErrNotFound)
}

func TestSplitCountLimit(t *testing.T) {
	ctx := rexbind.NewContext()

	seq := splitSeq(t, ctx, `,`, "a,b,c", 2)
	n, err := ctx.SeqLen(seq)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	last, err := ctx.StringAt(seq, 1)
	require.NoError(t, err)
	assert.Equal(t, "b,c", last)

	// A zero limit yields an empty sequence.
	seq = splitSeq(t, ctx, `,`, "a,b,c", 0)
	n, err = ctx.SeqLen(seq)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSplitNoMatchKeepsWholeInput(t *testing.T) {
	ctx := rexbind.NewContext()
	seq := splitSeq(t, ctx, `;`, "a,b,c", -1)

	n, err := ctx.SeqLen(seq)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	s, err := ctx.StringAt(seq, 0)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", s)
}

func TestSplitSizeLaw(t *testing.T) {
	ctx := rexbind.NewContext()

	cases := []struct {
		expr, input string
		want        []string
	}{
		{`,`, "a,b,c", []string{"a", "b", "c"}},
		{`,`, ",x,", []string{"", "x", ""}},
		{`\s+`, "naïve  café", []string{"naïve", "café"}},
		{`;`, "", []string{""}},
	}
	for _, tc := range cases {
		seq := splitSeq(t, ctx, tc.expr, tc.input, -1)

		wantSize := 0
		for _, s := range tc.want {
			wantSize += len(s) + 1
		}
		size, err := ctx.SplitSize(seq)
		require.NoError(t, err)
		assert.Equal(t, wantSize, size, "input %q", tc.input)
	}
}

func TestSplitFillWritesExactly(t *testing.T) {
	ctx := rexbind.NewContext()
	seq := splitSeq(t, ctx, `,`, "ab,,c", -1)

	size, err := ctx.SplitSize(seq)
	require.NoError(t, err)
	require.Equal(t, 6, size)

	// Canary bytes past the region must survive the fill untouched.
	buf := bytes.Repeat([]byte{0xAA}, size+4)
	require.NoError(t, ctx.SplitFill(seq, buf[:size]))
	assert.Equal(t, []byte("ab\x00\x00c\x00"), buf[:size])
	assert.Equal(t, bytes.Repeat([]byte{0xAA}, 4), buf[size:])
}

func TestSplitFillRejectsShortBuffer(t *testing.T) {
	ctx := rexbind.NewContext()
	seq := splitSeq(t, ctx, `,`, "a,b", -1)

	size, err := ctx.SplitSize(seq)
	require.NoError(t, err)

	err = ctx.SplitFill(seq, make([]byte, size-1))
	assert.ErrorIs(t, err, rexbind.ErrInvalidArgument)
}
