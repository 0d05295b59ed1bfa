//go:build wasip1

// Command rexbind-wasm is the WASI (wasip1) entrypoint for hosts without a
// C FFI. It speaks one JSON request/response per invocation; the result
// graph is always returned serialized, since a one-shot process has no use
// for handles.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "op": "match"|"matches"|"split"|"replace"|"ismatch",
//	          "pattern": "...", "flags": "imsU", "timeout_ms": 1000,
//	          "input": "...", "start": 0, "count": -1,
//	          "template": "...", "groups": true, "captures": true }
//	stdout: { "result": <op-specific value> }   on success
//	        { "error":  "<message>" }           on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o rexbind.wasm ./cmd/rexbind-wasm/
package main

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/rexbind/rexbind"
)

type request struct {
	Op        string `json:"op"`
	Pattern   string `json:"pattern"`
	Flags     string `json:"flags"`
	TimeoutMS int64  `json:"timeout_ms"`
	Input     string `json:"input"`
	Start     int    `json:"start"`
	Count     *int   `json:"count"`
	Template  string `json:"template"`
	Groups    bool   `json:"groups"`
	Captures  bool   `json:"captures"`
}

type response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func fail(msg string) {
	writeResponse(response{Error: msg}, 1)
}

func parseFlags(s string) (rexbind.Options, error) {
	var o rexbind.Options
	for _, c := range s {
		switch c {
		case 'i':
			o |= rexbind.OptIgnoreCase
		case 'm':
			o |= rexbind.OptMultiline
		case 's':
			o |= rexbind.OptDotAll
		case 'U':
			o |= rexbind.OptUngreedy
		default:
			return 0, errors.New("unknown flag " + string(c))
		}
	}
	return o, nil
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fail("invalid request JSON: " + err.Error())
	}

	opts, err := parseFlags(req.Flags)
	if err != nil {
		fail(err.Error())
	}
	ctx := rexbind.NewContext()
	p, err := ctx.CreatePattern(req.Pattern, opts, time.Duration(req.TimeoutMS)*time.Millisecond)
	if err != nil {
		fail(err.Error())
	}

	var flags rexbind.SerializeFlags
	if req.Groups {
		flags |= rexbind.IncludeGroups
	}
	if req.Captures {
		flags |= rexbind.IncludeCaptures
	}
	count := -1
	if req.Count != nil {
		count = *req.Count
	}

	var result string
	switch req.Op {
	case "match":
		result, err = ctx.MatchJSON(p, req.Input, req.Start, flags)
		if errors.Is(err, rexbind.ErrNotFound) {
			result, err = "null", nil
		}
	case "matches":
		result, err = ctx.MatchesJSON(p, req.Input, req.Start, flags)
	case "split":
		result, err = ctx.SplitJSON(p, req.Input, count, req.Start)
	case "replace":
		var out string
		out, err = ctx.Replace(p, req.Input, req.Template, count, req.Start)
		if err == nil {
			b, _ := json.Marshal(out)
			result = string(b)
		}
	case "ismatch":
		var ok bool
		ok, err = ctx.IsMatch(p, req.Input, req.Start)
		if err == nil {
			if ok {
				result = "1"
			} else {
				result = "0"
			}
		}
	default:
		fail("unknown op " + req.Op)
	}
	if err != nil {
		fail(err.Error())
	}
	writeResponse(response{Result: json.RawMessage(result)}, 0)
}
