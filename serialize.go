package rexbind

import (
	"strconv"
	"strings"
)

// serialize encodes any node of the result graph as JSON with a fixed field
// order, so the same value always produces byte-identical output. The flags
// select nesting depth: IncludeGroups nests a match's group array,
// IncludeCaptures nests each group's capture array.
func serialize(v slotValue, flags SerializeFlags) string {
	var b strings.Builder
	writeValue(&b, v, flags)
	return b.String()
}

func writeValue(b *strings.Builder, v slotValue, flags SerializeFlags) {
	switch t := v.(type) {
	case *Match:
		writeMatch(b, t, flags)
	case *Group:
		writeGroup(b, t, flags)
	case *Capture:
		writeCapture(b, t)
	case *MatchSeq:
		b.WriteByte('[')
		for i, m := range t.matches {
			if i > 0 {
				b.WriteByte(',')
			}
			writeMatch(b, m, flags)
		}
		b.WriteByte(']')
	case *StringSeq:
		b.WriteByte('[')
		for i, s := range t.items {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, s)
		}
		b.WriteByte(']')
	}
}

// Match shape: {index, length, success, value[, groups]}.
func writeMatch(b *strings.Builder, m *Match, flags SerializeFlags) {
	b.WriteString(`{"index":`)
	b.WriteString(strconv.Itoa(m.index))
	b.WriteString(`,"length":`)
	b.WriteString(strconv.Itoa(m.length))
	b.WriteString(`,"success":1,"value":`)
	writeJSONString(b, m.value)
	if flags&IncludeGroups != 0 {
		b.WriteString(`,"groups":[`)
		for i, g := range m.groups {
			if i > 0 {
				b.WriteByte(',')
			}
			writeGroup(b, g, flags)
		}
		b.WriteByte(']')
	}
	b.WriteByte('}')
}

// Group shape: {index, length, success, name, value[, captures]}.
func writeGroup(b *strings.Builder, g *Group, flags SerializeFlags) {
	b.WriteString(`{"index":`)
	b.WriteString(strconv.Itoa(g.index))
	b.WriteString(`,"length":`)
	b.WriteString(strconv.Itoa(g.length))
	b.WriteString(`,"success":`)
	if g.success {
		b.WriteByte('1')
	} else {
		b.WriteByte('0')
	}
	b.WriteString(`,"name":`)
	writeJSONString(b, g.name)
	b.WriteString(`,"value":`)
	writeJSONString(b, g.value)
	if flags&IncludeCaptures != 0 {
		b.WriteString(`,"captures":[`)
		for i, c := range g.caps {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCapture(b, c)
		}
		b.WriteByte(']')
	}
	b.WriteByte('}')
}

// Capture shape: {index, length, value}.
func writeCapture(b *strings.Builder, c *Capture) {
	b.WriteString(`{"index":`)
	b.WriteString(strconv.Itoa(c.index))
	b.WriteString(`,"length":`)
	b.WriteString(strconv.Itoa(c.length))
	b.WriteString(`,"value":`)
	writeJSONString(b, c.value)
	b.WriteByte('}')
}

const hexDigits = "0123456789abcdef"

// writeJSONString writes s as a JSON string literal. Quote, backslash, and
// control characters are escaped, so matched text can never produce a
// malformed blob.
func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xf])
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}
