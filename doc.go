// Package rexbind fronts a regular-expression engine through a narrow
// integer-and-string call surface, for hosts that cannot hold native object
// references.
//
// # Handles
//
// A [Context] owns a slot table mapping small integer handles to typed
// result values. Every value a host can see — compiled patterns, matches,
// groups, captures, and the two sequence kinds — lives in a slot, and every
// operation re-derives typed access from the handle alone. A destroyed
// handle's index is recycled oldest-first; the table never shrinks behind
// the host's back, and nothing is garbage collected for it: the host owns
// every handle's lifetime explicitly.
//
// # Result graph
//
// A search materializes an immutable graph: a Match owns its Groups (group
// 0 is the whole match), a Group owns its Captures, and a bulk search
// produces an ordered Match sequence. The graph copies everything it needs
// out of the engine at construction, including the state required to resume
// matching, so it stays valid however long its handles live.
//
//	ctx := rexbind.NewContext()
//	p, _ := ctx.CreatePattern(`(?P<user>\w+)@(\w+)`, 0, time.Second)
//	m, err := ctx.Match(p, "mail: who@example", 0)
//	if err == nil {
//	    v, _ := ctx.Value(m) // "who@example"
//	    g, _ := ctx.GroupByName(m, "user")
//	    u, _ := ctx.Value(g) // "who"
//	}
//
// # Retrieval
//
// Besides walking the graph handle by handle, a host can retrieve any node
// in one call as a deterministic JSON blob ([Context.ToJSON] and the
// search-and-serialize variants), or pull a whole string sequence through
// the two-phase bulk transfer protocol ([Context.SplitSize] then
// [Context.SplitFill]).
//
// # Failure
//
// Expected failures — no match, or a search exceeding its pattern's
// mandatory time budget — are reported as [ErrNotFound] and [ErrTimeout].
// Dead or mistyped handles fail with [ErrHandleNotFound] and
// [ErrTypeMismatch]; those are host-side contract violations. No operation
// panics, and an embedding boundary layer (see cmd/librexbind) maps every
// error onto its fixed sentinel convention.
package rexbind
