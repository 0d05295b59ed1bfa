// rexbind-tester drives the rexbind call surface interactively. Every
// boundary family (pattern lifecycle, search, navigation, accessors, JSON
// retrieval, split with bulk transfer, replace, cache tuning) has a command,
// so the whole protocol can be exercised from a terminal or scripted through
// a pipe.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rexbind/rexbind"
)

type session struct {
	ctx *rexbind.Context
}

type command struct {
	usage string
	help  string
	run   func(s *session, args []string) (string, error)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"create": {
			usage: "create PATTERN [FLAGS] [TIMEOUT_MS]",
			help:  "compile a pattern; FLAGS is a subset of imsU",
			run:   cmdCreate,
		},
		"destroy": {
			usage: "destroy HANDLE",
			help:  "destroy one handle",
			run:   cmdDestroy,
		},
		"destroy-all": {
			usage: "destroy-all",
			help:  "destroy every handle",
			run: func(s *session, args []string) (string, error) {
				s.ctx.DestroyAll()
				return "ok", nil
			},
		},
		"match": {
			usage: "match HANDLE INPUT [START]",
			help:  "find the first match, returns a match handle",
			run:   cmdMatch,
		},
		"matches": {
			usage: "matches HANDLE INPUT [START]",
			help:  "find all matches, returns a sequence handle",
			run:   cmdMatches,
		},
		"ismatch": {
			usage: "ismatch HANDLE INPUT [START]",
			help:  "report 0/1 without registering anything",
			run:   cmdIsMatch,
		},
		"next": {
			usage: "next MATCH",
			help:  "resume matching after a match",
			run:   cmdNext,
		},
		"group": {
			usage: "group MATCH INDEX|NAME",
			help:  "get a group handle by index or name",
			run:   cmdGroup,
		},
		"groups": {
			usage: "groups MATCH",
			help:  "number of groups (group 0 is the whole match)",
			run:   cmdGroups,
		},
		"capture": {
			usage: "capture GROUP INDEX",
			help:  "get a capture handle",
			run:   cmdCapture,
		},
		"captures": {
			usage: "captures GROUP",
			help:  "number of captures",
			run:   cmdCaptures,
		},
		"index":   {usage: "index HANDLE", help: "start offset", run: cmdIndex},
		"length":  {usage: "length HANDLE", help: "matched length", run: cmdLength},
		"value":   {usage: "value HANDLE", help: "matched text", run: cmdValue},
		"success": {usage: "success HANDLE", help: "participation flag", run: cmdSuccess},
		"name":    {usage: "name HANDLE", help: "group name", run: cmdName},
		"json": {
			usage: "json HANDLE [FLAGS]",
			help:  "serialize a result handle; FLAGS is a subset of gc",
			run:   cmdJSON,
		},
		"matchjson": {
			usage: "matchjson HANDLE INPUT [START] [FLAGS]",
			help:  "search and serialize in one call",
			run:   cmdMatchJSON,
		},
		"split": {
			usage: "split HANDLE INPUT [N] [START]",
			help:  "split input, returns a string sequence handle",
			run:   cmdSplit,
		},
		"seqlen": {
			usage: "seqlen HANDLE",
			help:  "element count of a sequence",
			run:   cmdSeqLen,
		},
		"seqmatch": {
			usage: "seqmatch SEQ INDEX",
			help:  "get a match handle from a match sequence",
			run:   cmdSeqMatch,
		},
		"seqstr": {
			usage: "seqstr SEQ INDEX",
			help:  "get one string from a string sequence",
			run:   cmdSeqStr,
		},
		"splitsize": {
			usage: "splitsize SEQ",
			help:  "byte count the bulk fill will write",
			run:   cmdSplitSize,
		},
		"splitfill": {
			usage: "splitfill SEQ",
			help:  "run the bulk fill and show the region, NULs as \\0",
			run:   cmdSplitFill,
		},
		"replace": {
			usage: "replace HANDLE INPUT TEMPLATE [N] [START]",
			help:  "replace matches; template supports $0-$9, ${name}, $$",
			run:   cmdReplace,
		},
		"cache": {
			usage: "cache [CAPACITY]",
			help:  "get or set the compiled-pattern cache capacity",
			run:   cmdCache,
		},
	}
}

func main() {
	s := &session{ctx: rexbind.NewContext()}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		runREPL(s)
		return
	}
	runScript(s)
}

func runScript(s *session) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out, err := execute(s, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(out)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}
}

func execute(s *session, line string) (string, error) {
	args, err := splitFields(line)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", nil
	}
	name := args[0]
	switch name {
	case "help":
		return helpText(), nil
	case "quit", "exit":
		os.Exit(0)
	}
	cmd, ok := commands[name]
	if !ok {
		return "", fmt.Errorf("unknown command %q (try help)", name)
	}
	return cmd.run(s, args[1:])
}

func helpText() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(&b, "%-45s %s\n", cmd.usage, cmd.help)
	}
	b.WriteString("help                                          this text\n")
	b.WriteString("quit                                          leave")
	return b.String()
}

// splitFields splits a command line on spaces, honoring double quotes with
// \" and \\ escapes inside them.
func splitFields(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote := false
	started := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(line):
			i++
			switch line[i] {
			case '"', '\\':
				cur.WriteByte(line[i])
			case 'n':
				cur.WriteByte('\n')
			case 't':
				cur.WriteByte('\t')
			default:
				cur.WriteByte('\\')
				cur.WriteByte(line[i])
			}
		case c == '"':
			inQuote = !inQuote
			started = true
		case c == ' ' && !inQuote:
			if started || cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteByte(c)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started || cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

// -----------------------------------------------------------------------------
// Command implementations
// -----------------------------------------------------------------------------

func needArgs(args []string, min int, usage string) error {
	if len(args) < min {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func parseHandle(s string) (rexbind.Handle, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad handle %q", s)
	}
	return rexbind.Handle(n), nil
}

func parseIntArg(args []string, i, fallback int) int {
	if i >= len(args) {
		return fallback
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return fallback
	}
	return n
}

func parseOptions(s string) (rexbind.Options, error) {
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
		case '-':
		default:
			return 0, fmt.Errorf("unknown flag %q (want i, m, s, U)", c)
		}
	}
	return o, nil
}

func parseSerializeFlags(s string) (rexbind.SerializeFlags, error) {
	var f rexbind.SerializeFlags
	for _, c := range s {
		switch c {
		case 'g':
			f |= rexbind.IncludeGroups
		case 'c':
			f |= rexbind.IncludeCaptures
		case '-':
		default:
			return 0, fmt.Errorf("unknown flag %q (want g, c)", c)
		}
	}
	return f, nil
}

func cmdCreate(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["create"].usage); err != nil {
		return "", err
	}
	var opts rexbind.Options
	var err error
	if len(args) > 1 {
		opts, err = parseOptions(args[1])
		if err != nil {
			return "", err
		}
	}
	timeout := time.Duration(parseIntArg(args, 2, 0)) * time.Millisecond
	h, err := s.ctx.CreatePattern(args[0], opts, timeout)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(int(h)), nil
}

func cmdDestroy(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["destroy"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	if s.ctx.Destroy(h) {
		return "1", nil
	}
	return "0", nil
}

// searchArgs extracts the common HANDLE INPUT [START] triple.
func searchArgs(args []string, usage string) (rexbind.Handle, string, int, error) {
	if err := needArgs(args, 2, usage); err != nil {
		return 0, "", 0, err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return 0, "", 0, err
	}
	return h, args[1], parseIntArg(args, 2, 0), nil
}

func cmdMatch(s *session, args []string) (string, error) {
	h, input, start, err := searchArgs(args, commands["match"].usage)
	if err != nil {
		return "", err
	}
	return formatHandle(s.ctx.Match(h, input, start)), nil
}

func cmdMatches(s *session, args []string) (string, error) {
	h, input, start, err := searchArgs(args, commands["matches"].usage)
	if err != nil {
		return "", err
	}
	return formatHandle(s.ctx.Matches(h, input, start)), nil
}

func cmdIsMatch(s *session, args []string) (string, error) {
	h, input, start, err := searchArgs(args, commands["ismatch"].usage)
	if err != nil {
		return "", err
	}
	ok, err := s.ctx.IsMatch(h, input, start)
	if err != nil {
		return formatHandle(0, err), nil
	}
	if ok {
		return "1", nil
	}
	return "0", nil
}

// formatHandle renders a (handle, error) pair the way the C boundary would:
// the handle, -1 for not found, -2 for timed out.
func formatHandle(h rexbind.Handle, err error) string {
	switch {
	case errors.Is(err, rexbind.ErrTimeout):
		return "-2"
	case err != nil:
		return "-1"
	default:
		return strconv.Itoa(int(h))
	}
}

func cmdNext(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["next"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	return formatHandle(s.ctx.Next(h)), nil
}

func cmdGroup(s *session, args []string) (string, error) {
	if err := needArgs(args, 2, commands["group"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	if i, convErr := strconv.Atoi(args[1]); convErr == nil {
		return formatHandle(s.ctx.Group(h, i)), nil
	}
	return formatHandle(s.ctx.GroupByName(h, args[1])), nil
}

func cmdGroups(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["groups"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	n, err := s.ctx.GroupCount(h)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

func cmdCapture(s *session, args []string) (string, error) {
	if err := needArgs(args, 2, commands["capture"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	i, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("bad index %q", args[1])
	}
	return formatHandle(s.ctx.Capture(h, i)), nil
}

func cmdCaptures(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["captures"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	n, err := s.ctx.CaptureCount(h)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

func cmdIndex(s *session, args []string) (string, error) {
	return intAccessor(s, args, "index", s.ctx.Index)
}

func cmdLength(s *session, args []string) (string, error) {
	return intAccessor(s, args, "length", s.ctx.Length)
}

func intAccessor(s *session, args []string, name string, f func(rexbind.Handle) (int, error)) (string, error) {
	if err := needArgs(args, 1, commands[name].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	n, err := f(h)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

func cmdValue(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["value"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	return s.ctx.Value(h)
}

func cmdSuccess(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["success"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	ok, err := s.ctx.Success(h)
	if err != nil {
		return "", err
	}
	if ok {
		return "1", nil
	}
	return "0", nil
}

func cmdName(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["name"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	return s.ctx.Name(h)
}

func cmdJSON(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["json"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	var flags rexbind.SerializeFlags
	if len(args) > 1 {
		flags, err = parseSerializeFlags(args[1])
		if err != nil {
			return "", err
		}
	}
	return s.ctx.ToJSON(h, flags)
}

func cmdMatchJSON(s *session, args []string) (string, error) {
	h, input, start, err := searchArgs(args, commands["matchjson"].usage)
	if err != nil {
		return "", err
	}
	var flags rexbind.SerializeFlags
	if len(args) > 3 {
		flags, err = parseSerializeFlags(args[3])
		if err != nil {
			return "", err
		}
	}
	out, err := s.ctx.MatchJSON(h, input, start, flags)
	if err != nil {
		// Empty blob is the boundary convention for a clean miss or timeout.
		if errors.Is(err, rexbind.ErrNotFound) || errors.Is(err, rexbind.ErrTimeout) {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

func cmdSplit(s *session, args []string) (string, error) {
	if err := needArgs(args, 2, commands["split"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	n := parseIntArg(args, 2, -1)
	start := parseIntArg(args, 3, 0)
	return formatHandle(s.ctx.Split(h, args[1], n, start)), nil
}

func cmdSeqLen(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["seqlen"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	n, err := s.ctx.SeqLen(h)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

func cmdSeqMatch(s *session, args []string) (string, error) {
	if err := needArgs(args, 2, commands["seqmatch"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	i, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("bad index %q", args[1])
	}
	return formatHandle(s.ctx.MatchAt(h, i)), nil
}

func cmdSeqStr(s *session, args []string) (string, error) {
	if err := needArgs(args, 2, commands["seqstr"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	i, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("bad index %q", args[1])
	}
	return s.ctx.StringAt(h, i)
}

func cmdSplitSize(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["splitsize"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	n, err := s.ctx.SplitSize(h)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

func cmdSplitFill(s *session, args []string) (string, error) {
	if err := needArgs(args, 1, commands["splitfill"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	size, err := s.ctx.SplitSize(h)
	if err != nil {
		return "", err
	}
	buf := make([]byte, size)
	if err := s.ctx.SplitFill(h, buf); err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(buf), "\x00", `\0`), nil
}

func cmdReplace(s *session, args []string) (string, error) {
	if err := needArgs(args, 3, commands["replace"].usage); err != nil {
		return "", err
	}
	h, err := parseHandle(args[0])
	if err != nil {
		return "", err
	}
	n := parseIntArg(args, 3, -1)
	start := parseIntArg(args, 4, 0)
	out, err := s.ctx.Replace(h, args[1], args[2], n, start)
	if errors.Is(err, rexbind.ErrTimeout) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

func cmdCache(s *session, args []string) (string, error) {
	if len(args) == 0 {
		return strconv.Itoa(s.ctx.CacheCapacity()), nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("bad capacity %q", args[0])
	}
	if err := s.ctx.SetCacheCapacity(n); err != nil {
		return "0", nil
	}
	return "1", nil
}
