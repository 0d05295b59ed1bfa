package rexbind

import (
	"errors"
	"time"
)

// findAt runs one engine search over input[start:] and rebases the returned
// index pairs to absolute offsets. The deadline is hard: the engine call runs
// on a worker raced against a timer, so a pathological input cannot block the
// caller past the budget. The engine itself is linear-time, so a worker that
// loses the race finishes shortly after and its result is discarded.
//
// Anchors are relative to start: a search with an offset runs on the suffix,
// so ^ matches at the offset.
func (p *Pattern) findAt(input string, start int, deadline time.Time) ([]int, error) {
	if start < 0 {
		start = 0
	}
	if start > len(input) {
		return nil, ErrNotFound
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		debugf("pattern %q: budget exhausted before search", p.expr)
		return nil, ErrTimeout
	}

	ch := make(chan []int, 1)
	go func() {
		ch <- p.re.FindStringSubmatchIndex(input[start:])
	}()

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case loc := <-ch:
		if loc == nil {
			return nil, ErrNotFound
		}
		for i, v := range loc {
			if v >= 0 {
				loc[i] = v + start
			}
		}
		return loc, nil
	case <-timer.C:
		debugf("pattern %q: search timed out after %v", p.expr, p.timeout)
		return nil, ErrTimeout
	}
}

// matchAt returns the first match at or after start, or ErrNotFound.
func (p *Pattern) matchAt(input string, start int, deadline time.Time) (*Match, error) {
	loc, err := p.findAt(input, start, deadline)
	if err != nil {
		return nil, err
	}
	return newMatch(p, input, loc), nil
}

// next resumes matching after m. The resume position is m's end, or one rune
// past m's start when m was zero-length; a resume position at or past the
// input end is exhausted.
func (m *Match) next(deadline time.Time) (*Match, error) {
	if m.nextPos >= len(m.input) {
		return nil, ErrNotFound
	}
	return m.pat.matchAt(m.input, m.nextPos, deadline)
}

// findAll enumerates all non-overlapping matches from start to input end
// under one shared deadline, using the same advance rule as next. The
// deadline is re-checked on every step, so enumeration never overruns the
// budget by more than one engine call. A timeout discards all partial work.
func (p *Pattern) findAll(input string, start int, deadline time.Time) ([]*Match, error) {
	var out []*Match
	pos := start
	for {
		m, err := p.matchAt(input, pos, deadline)
		if errors.Is(err, ErrNotFound) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, m)
		pos = m.nextPos
		if pos >= len(input) {
			return out, nil
		}
	}
}

// split cuts input[start:] at every match. n limits the number of pieces
// (the final piece carries the unsplit rest); n < 0 means no limit, n == 0
// produces an empty sequence.
func (p *Pattern) split(input string, n, start int, deadline time.Time) ([]string, error) {
	if n == 0 {
		return nil, nil
	}
	if start < 0 {
		start = 0
	}
	if start > len(input) {
		start = len(input)
	}
	s := input[start:]

	matches, err := p.findAll(s, 0, deadline)
	if err != nil {
		return nil, err
	}

	pieces := make([]string, 0, len(matches)+1)
	lastEnd := 0
	for _, m := range matches {
		if n > 0 && len(pieces) >= n-1 {
			break
		}
		pieces = append(pieces, s[lastEnd:m.index])
		lastEnd = m.index + m.length
	}
	pieces = append(pieces, s[lastEnd:])
	return pieces, nil
}

// replace substitutes the expanded template for up to n matches of p in
// input, starting the search at start. n < 0 means replace all; n == 0
// returns input unchanged. Text before start is never searched but is kept
// in the output.
func (p *Pattern) replace(input, template string, n, start int, deadline time.Time) (string, error) {
	if n == 0 {
		return input, nil
	}
	if start < 0 {
		start = 0
	}
	if start > len(input) {
		start = len(input)
	}

	var out []byte
	lastEnd := 0
	pos := start
	count := 0
	for pos <= len(input) {
		loc, err := p.findAt(input, pos, deadline)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return "", err
		}
		out = append(out, input[lastEnd:loc[0]]...)
		out = p.expand(out, template, input, loc)
		lastEnd = loc[1]

		count++
		if n > 0 && count >= n {
			break
		}
		pos = resumePos(input, loc[0], loc[1])
		if pos >= len(input) {
			break
		}
	}
	out = append(out, input[lastEnd:]...)
	return string(out), nil
}

// expand appends template to dst, substituting $0-$9 with the corresponding
// group text, ${name} and ${number} with the named or numbered group, and
// $$ with a literal dollar. Unmatched groups expand to nothing; any other
// $ sequence is kept literally.
func (p *Pattern) expand(dst []byte, template, src string, loc []int) []byte {
	appendGroup := func(dst []byte, i int) []byte {
		if 2*i+1 < len(loc) && loc[2*i] >= 0 {
			dst = append(dst, src[loc[2*i]:loc[2*i+1]]...)
		}
		return dst
	}

	i := 0
	for i < len(template) {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			dst = append(dst, c)
			i++
			continue
		}
		next := template[i+1]

		switch {
		case next == '$':
			dst = append(dst, '$')
			i += 2

		case next >= '0' && next <= '9':
			dst = appendGroup(dst, int(next-'0'))
			i += 2

		case next == '{':
			end := i + 2
			for end < len(template) && template[end] != '}' {
				end++
			}
			if end >= len(template) {
				dst = append(dst, '$')
				i++
				break
			}
			ref := template[i+2 : end]
			if g, ok := p.refIndex(ref); ok {
				dst = appendGroup(dst, g)
			}
			i = end + 1

		default:
			dst = append(dst, '$')
			i++
		}
	}
	return dst
}

// refIndex resolves a ${...} reference to a group index, by name first and
// then as a decimal number.
func (p *Pattern) refIndex(ref string) (int, bool) {
	if ref == "" {
		return 0, false
	}
	for i, name := range p.names {
		if name != "" && name == ref {
			return i, true
		}
	}
	n := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
