package lexer

import "strings"

// Depth is a delimiter nesting counter. It is the single state machine behind
// brace matching, statement splitting and top-level comma splitting.
type Depth struct {
	opens  string
	closes string
	clamp  bool
	level  int
}

// NewDepth creates a counter that increments on any byte in opens and decrements
// on any byte in closes. When clamp is set the level never drops below zero.
func NewDepth(opens, closes string, clamp bool) *Depth {
	return &Depth{opens: opens, closes: closes, clamp: clamp}
}

// BraceDepth counts curly braces, clamped at zero.
func BraceDepth() *Depth {
	return NewDepth("{", "}", true)
}

// BracketDepth counts angle, round, square and curly brackets, clamped at zero.
func BracketDepth() *Depth {
	return NewDepth("<([{", ">)]}", true)
}

// Step applies c and returns the resulting level.
func (d *Depth) Step(c byte) int {
	switch {
	case strings.IndexByte(d.opens, c) >= 0:
		d.level++
	case strings.IndexByte(d.closes, c) >= 0:
		d.level--
		if d.clamp && d.level < 0 {
			d.level = 0
		}
	}
	return d.level
}

// Level returns the current nesting level.
func (d *Depth) Level() int {
	return d.level
}

// Reset returns the counter to level zero.
func (d *Depth) Reset() {
	d.level = 0
}

// MatchBlock returns the offset of the delimiter that closes the block opened at
// text[open]. The second result is false when the block never closes before the
// end of text.
func MatchBlock(text string, open int) (int, bool) {
	if open < 0 || open >= len(text) {
		return 0, false
	}
	d := NewDepth(text[open:open+1], closerFor(text[open]), false)
	for i := open; i < len(text); i++ {
		before := d.Level()
		if d.Step(text[i]) == 0 && before > 0 {
			return i, true
		}
	}
	return 0, false
}

func closerFor(c byte) string {
	switch c {
	case '(':
		return ")"
	case '[':
		return "]"
	case '<':
		return ">"
	default:
		return "}"
	}
}

// SplitTopLevel splits s on sep wherever the bracket depth is zero. Parts are
// trimmed and empty parts dropped.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	d := BracketDepth()
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		d.Step(c)
		if c == sep && d.Level() == 0 {
			if p := strings.TrimSpace(s[start:i]); p != "" {
				parts = append(parts, p)
			}
			start = i + 1
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}
