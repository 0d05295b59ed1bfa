// exports.go provides the C API exports for librexbind.
// Build with: go build -buildmode=c-shared -o librexbind.so .
//
// Every result-producing call collapses into one of three outcomes:
// a non-negative handle or value, -1 (ran cleanly, produced nothing),
// or -2 (aborted by the pattern's time budget). No Go panic or error
// crosses the boundary.
package main

/*
#include <stdlib.h>
#include <stdint.h>
*/
import "C"

import (
	"errors"
	"time"
	"unsafe"

	"github.com/rexbind/rexbind"
)

const version = "1.0.0"

// Boundary sentinels. They never collide with a valid handle or count.
const (
	retNotFound = -1
	retTimedOut = -2
)

// The process-wide context lives here, in the outermost embedding layer;
// the core library itself has no global state.
var ctx = rexbind.NewContext()

// msToDuration converts a millisecond budget from the boundary; zero and
// negative values select the library default.
func msToDuration(ms C.int64_t) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// handleOrSentinel maps a (handle, error) pair onto the boundary convention.
// Contract violations (dead or mistyped handles) collapse into -1: the
// host misused a handle and gets the not-found sentinel rather than a fault.
func handleOrSentinel(h rexbind.Handle, err error) C.int64_t {
	if err != nil {
		if errors.Is(err, rexbind.ErrTimeout) {
			return retTimedOut
		}
		return retNotFound
	}
	return C.int64_t(h)
}

func countOrSentinel(n int, err error) C.int64_t {
	if err != nil {
		return retNotFound
	}
	return C.int64_t(n)
}

// stringOrEmpty returns s as a C string the caller must free with
// RexbindFreeString; failures of any kind yield an empty string.
func stringOrEmpty(s string, err error) *C.char {
	if err != nil {
		return C.CString("")
	}
	return C.CString(s)
}

//export RexbindVersion
func RexbindVersion() *C.char {
	return C.CString(version)
}

// -----------------------------------------------------------------------------
// Pattern lifecycle
// -----------------------------------------------------------------------------

//export RexbindCreate
func RexbindCreate(pattern *C.char, patternLen C.int, flags C.int64_t, timeoutMs C.int64_t) C.int64_t {
	expr := C.GoStringN(pattern, patternLen)
	h, err := ctx.CreatePattern(expr, rexbind.Options(flags), msToDuration(timeoutMs))
	if err != nil {
		return retNotFound
	}
	return C.int64_t(h)
}

//export RexbindDestroy
func RexbindDestroy(h C.int64_t) C.int {
	if ctx.Destroy(rexbind.Handle(h)) {
		return 1
	}
	return 0
}

//export RexbindDestroyAll
func RexbindDestroyAll() C.int {
	ctx.DestroyAll()
	return 1
}

// -----------------------------------------------------------------------------
// Search
// -----------------------------------------------------------------------------

//export RexbindMatch
func RexbindMatch(h C.int64_t, input *C.char, inputLen C.int, start C.int64_t) C.int64_t {
	s := C.GoStringN(input, inputLen)
	return handleOrSentinel(ctx.Match(rexbind.Handle(h), s, int(start)))
}

//export RexbindMatches
func RexbindMatches(h C.int64_t, input *C.char, inputLen C.int, start C.int64_t) C.int64_t {
	s := C.GoStringN(input, inputLen)
	return handleOrSentinel(ctx.Matches(rexbind.Handle(h), s, int(start)))
}

//export RexbindIsMatch
func RexbindIsMatch(h C.int64_t, input *C.char, inputLen C.int, start C.int64_t) C.int {
	s := C.GoStringN(input, inputLen)
	ok, err := ctx.IsMatch(rexbind.Handle(h), s, int(start))
	switch {
	case errors.Is(err, rexbind.ErrTimeout):
		return retTimedOut
	case err != nil:
		return retNotFound
	case ok:
		return 1
	default:
		return 0
	}
}

// -----------------------------------------------------------------------------
// Navigation
// -----------------------------------------------------------------------------

//export RexbindNext
func RexbindNext(h C.int64_t) C.int64_t {
	return handleOrSentinel(ctx.Next(rexbind.Handle(h)))
}

//export RexbindGroupCount
func RexbindGroupCount(h C.int64_t) C.int64_t {
	return countOrSentinel(ctx.GroupCount(rexbind.Handle(h)))
}

//export RexbindGroup
func RexbindGroup(h C.int64_t, index C.int64_t) C.int64_t {
	return handleOrSentinel(ctx.Group(rexbind.Handle(h), int(index)))
}

//export RexbindGroupByName
func RexbindGroupByName(h C.int64_t, name *C.char) C.int64_t {
	return handleOrSentinel(ctx.GroupByName(rexbind.Handle(h), C.GoString(name)))
}

//export RexbindCaptureCount
func RexbindCaptureCount(h C.int64_t) C.int64_t {
	return countOrSentinel(ctx.CaptureCount(rexbind.Handle(h)))
}

//export RexbindCapture
func RexbindCapture(h C.int64_t, index C.int64_t) C.int64_t {
	return handleOrSentinel(ctx.Capture(rexbind.Handle(h), int(index)))
}

//export RexbindSeqLength
func RexbindSeqLength(h C.int64_t) C.int64_t {
	return countOrSentinel(ctx.SeqLen(rexbind.Handle(h)))
}

//export RexbindSeqMatch
func RexbindSeqMatch(h C.int64_t, index C.int64_t) C.int64_t {
	return handleOrSentinel(ctx.MatchAt(rexbind.Handle(h), int(index)))
}

//export RexbindSeqString
func RexbindSeqString(h C.int64_t, index C.int64_t) *C.char {
	return stringOrEmpty(ctx.StringAt(rexbind.Handle(h), int(index)))
}

// -----------------------------------------------------------------------------
// Scalar accessors
// -----------------------------------------------------------------------------

//export RexbindIndex
func RexbindIndex(h C.int64_t) C.int64_t {
	return countOrSentinel(ctx.Index(rexbind.Handle(h)))
}

//export RexbindLength
func RexbindLength(h C.int64_t) C.int64_t {
	return countOrSentinel(ctx.Length(rexbind.Handle(h)))
}

//export RexbindSuccess
func RexbindSuccess(h C.int64_t) C.int {
	ok, err := ctx.Success(rexbind.Handle(h))
	switch {
	case err != nil:
		return retNotFound
	case ok:
		return 1
	default:
		return 0
	}
}

//export RexbindValue
func RexbindValue(h C.int64_t) *C.char {
	return stringOrEmpty(ctx.Value(rexbind.Handle(h)))
}

//export RexbindName
func RexbindName(h C.int64_t) *C.char {
	return stringOrEmpty(ctx.Name(rexbind.Handle(h)))
}

// -----------------------------------------------------------------------------
// Structured retrieval
// -----------------------------------------------------------------------------

//export RexbindToJSON
func RexbindToJSON(h C.int64_t, flags C.int64_t) *C.char {
	return stringOrEmpty(ctx.ToJSON(rexbind.Handle(h), rexbind.SerializeFlags(flags)))
}

//export RexbindMatchJSON
func RexbindMatchJSON(h C.int64_t, input *C.char, inputLen C.int, start C.int64_t, flags C.int64_t) *C.char {
	s := C.GoStringN(input, inputLen)
	return stringOrEmpty(ctx.MatchJSON(rexbind.Handle(h), s, int(start), rexbind.SerializeFlags(flags)))
}

//export RexbindMatchesJSON
func RexbindMatchesJSON(h C.int64_t, input *C.char, inputLen C.int, start C.int64_t, flags C.int64_t) *C.char {
	s := C.GoStringN(input, inputLen)
	return stringOrEmpty(ctx.MatchesJSON(rexbind.Handle(h), s, int(start), rexbind.SerializeFlags(flags)))
}

//export RexbindSplitJSON
func RexbindSplitJSON(h C.int64_t, input *C.char, inputLen C.int, maxCount C.int64_t, start C.int64_t) *C.char {
	s := C.GoStringN(input, inputLen)
	return stringOrEmpty(ctx.SplitJSON(rexbind.Handle(h), s, int(maxCount), int(start)))
}

// -----------------------------------------------------------------------------
// Split and bulk transfer
// -----------------------------------------------------------------------------

//export RexbindSplit
func RexbindSplit(h C.int64_t, input *C.char, inputLen C.int, maxCount C.int64_t, start C.int64_t) C.int64_t {
	s := C.GoStringN(input, inputLen)
	return handleOrSentinel(ctx.Split(rexbind.Handle(h), s, int(maxCount), int(start)))
}

//export RexbindSplitSize
func RexbindSplitSize(h C.int64_t) C.int64_t {
	return countOrSentinel(ctx.SplitSize(rexbind.Handle(h)))
}

// RexbindSplitFill writes the sequence into caller-allocated memory: each
// element's bytes, then one NUL, consecutively. dest must point at a region
// of at least RexbindSplitSize(h) bytes; the size call is mandatory, both
// read the same stored byte count. The caller must not destroy h until the
// fill has returned.
//
//export RexbindSplitFill
func RexbindSplitFill(h C.int64_t, dest unsafe.Pointer) C.int {
	if dest == nil {
		return 0
	}
	size, err := ctx.SplitSize(rexbind.Handle(h))
	if err != nil {
		return 0
	}
	dst := unsafe.Slice((*byte)(dest), size)
	if err := ctx.SplitFill(rexbind.Handle(h), dst); err != nil {
		return 0
	}
	return 1
}

// -----------------------------------------------------------------------------
// Replace
// -----------------------------------------------------------------------------

//export RexbindReplace
func RexbindReplace(h C.int64_t, input *C.char, inputLen C.int,
	replacement *C.char, replacementLen C.int, maxCount C.int64_t, start C.int64_t) *C.char {
	s := C.GoStringN(input, inputLen)
	tmpl := C.GoStringN(replacement, replacementLen)
	return stringOrEmpty(ctx.Replace(rexbind.Handle(h), s, tmpl, int(maxCount), int(start)))
}

// -----------------------------------------------------------------------------
// Cache tuning
// -----------------------------------------------------------------------------

//export RexbindGetCacheSize
func RexbindGetCacheSize() C.int64_t {
	return C.int64_t(ctx.CacheCapacity())
}

//export RexbindSetCacheSize
func RexbindSetCacheSize(n C.int64_t) C.int {
	if err := ctx.SetCacheCapacity(int(n)); err != nil {
		return 0
	}
	return 1
}

// -----------------------------------------------------------------------------
// Memory management
// -----------------------------------------------------------------------------

//export RexbindFreeString
func RexbindFreeString(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

func main() {}
