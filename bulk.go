package rexbind

import "fmt"

// Bulk transfer moves a whole string sequence through caller-owned memory in
// one call instead of one call per element. The protocol is two-phase: the
// host asks for the exact byte count, allocates, then has the region filled.
// Both phases read the byte length cached on the sequence at construction,
// so they can never disagree about the size.

// SplitSize returns the number of bytes [Context.SplitFill] will write for
// sequence h: the sum over every element of its byte length plus one
// terminator.
func (c *Context) SplitSize(h Handle) (int, error) {
	s, err := slotGet[*StringSeq](c, h)
	if err != nil {
		return 0, err
	}
	return s.byteLen, nil
}

// SplitFill writes every element of sequence h into dst, each followed by a
// single NUL byte, consecutively and without padding. dst must be at least
// SplitSize(h) bytes; a shorter destination fails with ErrInvalidArgument
// and nothing is written.
func (c *Context) SplitFill(h Handle, dst []byte) error {
	s, err := slotGet[*StringSeq](c, h)
	if err != nil {
		return err
	}
	return s.fill(dst)
}

func (s *StringSeq) fill(dst []byte) error {
	if len(dst) < s.byteLen {
		return fmt.Errorf("%w: destination is %d bytes, need %d",
			ErrInvalidArgument, len(dst), s.byteLen)
	}
	off := 0
	for _, item := range s.items {
		off += copy(dst[off:], item)
		dst[off] = 0
		off++
	}
	return nil
}
