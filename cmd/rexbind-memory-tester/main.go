package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rexbind/rexbind"
)

// memStats holds memory statistics for a point in time
type memStats struct {
	alloc      uint64 // bytes allocated and still in use
	totalAlloc uint64 // bytes allocated (even if freed)
	sys        uint64 // bytes obtained from system
	numGC      uint32 // number of completed GC cycles
}

func getMemStats() memStats {
	runtime.GC() // Force GC to get accurate measurement
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return memStats{
		alloc:      m.Alloc,
		totalAlloc: m.TotalAlloc,
		sys:        m.Sys,
		numGC:      m.NumGC,
	}
}

func (m memStats) String() string {
	return fmt.Sprintf("Alloc: %6d KB, TotalAlloc: %6d KB, Sys: %6d KB, NumGC: %d",
		m.alloc/1024, m.totalAlloc/1024, m.sys/1024, m.numGC)
}

// iteration drives one full protocol round trip: create, search, navigate,
// serialize, split with bulk transfer, then destroy everything it created.
// With explicit destruction the slot table must not grow across rounds.
func iteration(ctx *rexbind.Context, buf []byte) error {
	p, err := ctx.CreatePattern(`(?P<word>\w+)=(\d+)`, 0, time.Second)
	if err != nil {
		return err
	}
	input := "a=1 b=22 c=333 d=4444"

	m, err := ctx.Match(p, input, 0)
	if err != nil {
		return err
	}
	g, err := ctx.GroupByName(m, "word")
	if err != nil {
		return err
	}
	if _, err := ctx.Value(g); err != nil {
		return err
	}
	if _, err := ctx.ToJSON(m, rexbind.IncludeGroups|rexbind.IncludeCaptures); err != nil {
		return err
	}

	seq, err := ctx.Matches(p, input, 0)
	if err != nil {
		return err
	}
	n, err := ctx.SeqLen(seq)
	if err != nil {
		return err
	}
	if n != 4 {
		return fmt.Errorf("expected 4 matches, got %d", n)
	}

	split, err := ctx.Split(p, input, -1, 0)
	if err != nil {
		return err
	}
	size, err := ctx.SplitSize(split)
	if err != nil {
		return err
	}
	if err := ctx.SplitFill(split, buf[:size]); err != nil {
		return err
	}

	for _, h := range []rexbind.Handle{g, m, seq, split, p} {
		if !ctx.Destroy(h) {
			return fmt.Errorf("destroy %d failed", h)
		}
	}
	return nil
}

func main() {
	ctx := rexbind.NewContext()
	buf := make([]byte, 4096)

	const iterations = 10000
	const reportInterval = 1000

	// Get baseline memory stats
	startMem := getMemStats()
	fmt.Println("Start:", startMem)

	for i := 0; i < iterations; i++ {
		if err := iteration(ctx, buf); err != nil {
			fmt.Fprintf(os.Stderr, "iteration %d: %v\n", i, err)
			os.Exit(1)
		}
		if i%reportInterval == 0 && i > 0 {
			fmt.Printf("Iteration %5d: %s\n", i, getMemStats())
		}
	}

	endMem := getMemStats()
	fmt.Println("End:  ", endMem)

	allocGrowth := int64(endMem.alloc) - int64(startMem.alloc)
	bytesPerIteration := float64(allocGrowth) / float64(iterations)
	fmt.Printf("\nMemory growth: %d KB (%.2f bytes/iteration)\n",
		allocGrowth/1024, bytesPerIteration)

	// With every handle destroyed each round, growth per iteration should be
	// noise. Allow some slack for GC lag.
	const maxBytesPerIter = 50.0
	if bytesPerIteration > maxBytesPerIter {
		fmt.Fprintf(os.Stderr, "FAIL: slot table or result graph is leaking\n")
		fmt.Fprintf(os.Stderr, "  Bytes/iteration: %.2f (threshold: %.2f)\n",
			bytesPerIteration, maxBytesPerIter)
		os.Exit(1)
	}
	fmt.Println("PASS: No memory leaks detected")
}
