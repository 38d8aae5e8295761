// Package lexer blanks string literals and comments out of C#-style source text.
//
// Every function in this package preserves byte length and line structure: removed
// content is replaced by spaces and newlines are kept, so offsets and line numbers
// computed on the output are valid for the input.
package lexer

type state int

const (
	stateCode state = iota
	stateLineComment
	stateBlockComment
	stateString   // "..." and $"..." with backslash escapes
	stateVerbatim // @"...", $@"..." and @$"..." with doubled-quote escapes
	stateRaw      // """...""" and $"""...""", closed by as many quotes as opened it
	stateChar     // '.'
)

// literal describes the string literal being scanned. A hole is an
// interpolation expression; the literal is resumed when the hole closes.
type literal struct {
	st      state
	dollars int // 0 for non-interpolated literals
	quotes  int // raw literals only
	depth   int // brace depth inside the open hole
}

// Normalize replaces every literal and every comment with whitespace.
func Normalize(text string) string {
	return scan(text, true, true)
}

// StripComments replaces line and block comments with whitespace.
// Literals are recognized (so "//" inside a string is not a comment) but kept.
func StripComments(text string) string {
	return scan(text, true, false)
}

// StripLiterals replaces string and character literals with whitespace.
func StripLiterals(text string) string {
	return scan(text, false, true)
}

// scan runs the normalizer state machine over text. Block comments do not nest;
// the first "*/" closes the comment. Unterminated literals and comments are
// blanked up to the end of the line (regular strings, chars) or end of input
// (verbatim and raw strings, block comments). Interpolation holes are scanned
// as code, so literals nested in them are matched, and blanked with their
// enclosing literal.
func scan(text string, comments, literals bool) string {
	out := []byte(text)
	st := stateCode
	n := len(out)

	var cur literal
	var holes []literal

	blank := func(i int, on bool) {
		if on && out[i] != '\n' {
			out[i] = ' '
		}
	}
	blankRange := func(from, to int, on bool) {
		for k := from; k < to; k++ {
			blank(k, on)
		}
	}
	openHole := func(i, width int) {
		blankRange(i, i+width, literals)
		holes = append(holes, cur)
		st = stateCode
	}

	for i := 0; i < n; i++ {
		c := text[i]
		inHole := len(holes) > 0
		switch st {
		case stateCode:
			switch {
			case c == '/' && i+1 < n && text[i+1] == '/':
				st = stateLineComment
				blankRange(i, i+2, comments || literals && inHole)
				i++
			case c == '/' && i+1 < n && text[i+1] == '*':
				st = stateBlockComment
				blankRange(i, i+2, comments || literals && inHole)
				i++
			case c == '\'':
				st = stateChar
				blank(i, literals)
			case c == '"' || c == '@' || c == '$':
				lit, width := literalStart(text, i)
				if width == 0 {
					blank(i, literals && inHole)
					continue
				}
				cur = lit
				st = lit.st
				blankRange(i, i+width, literals)
				i += width - 1
			case inHole && c == '{':
				holes[len(holes)-1].depth++
				blank(i, literals)
			case inHole && c == '}':
				top := &holes[len(holes)-1]
				if top.depth > 0 {
					top.depth--
					blank(i, literals)
					continue
				}
				width := 1
				for width < top.dollars && i+width < n && text[i+width] == '}' {
					width++
				}
				blankRange(i, i+width, literals)
				i += width - 1
				cur = *top
				cur.depth = 0
				holes = holes[:len(holes)-1]
				st = cur.st
			default:
				blank(i, literals && inHole)
			}

		case stateLineComment:
			if c == '\n' {
				st = stateCode
				continue
			}
			blank(i, comments || literals && inHole)

		case stateBlockComment:
			if c == '*' && i+1 < n && text[i+1] == '/' {
				blankRange(i, i+2, comments || literals && inHole)
				i++
				st = stateCode
				continue
			}
			blank(i, comments || literals && inHole)

		case stateChar:
			switch {
			case c == '\n':
				st = stateCode
				holes = holes[:0]
			case c == '\\' && i+1 < n && text[i+1] != '\n':
				blankRange(i, i+2, literals)
				i++
			case c == '\'':
				blank(i, literals)
				st = stateCode
			default:
				blank(i, literals)
			}

		case stateString:
			switch {
			case c == '\n':
				// unterminated; any hole it sat in cannot close either
				st = stateCode
				holes = holes[:0]
			case c == '\\' && i+1 < n && text[i+1] != '\n':
				blankRange(i, i+2, literals)
				i++
			case c == '"':
				blank(i, literals)
				st = stateCode
			case c == '{' && cur.dollars > 0:
				if i+1 < n && text[i+1] == '{' {
					blankRange(i, i+2, literals)
					i++
					continue
				}
				openHole(i, 1)
			default:
				blank(i, literals)
			}

		case stateVerbatim:
			switch {
			case c == '"' && i+1 < n && text[i+1] == '"':
				blankRange(i, i+2, literals)
				i++
			case c == '"':
				blank(i, literals)
				st = stateCode
			case c == '{' && cur.dollars > 0:
				if i+1 < n && text[i+1] == '{' {
					blankRange(i, i+2, literals)
					i++
					continue
				}
				openHole(i, 1)
			default:
				blank(i, literals)
			}

		case stateRaw:
			switch {
			case c == '"':
				run := runLength(text, i, '"')
				blankRange(i, i+run, literals)
				i += run - 1
				if run >= cur.quotes {
					st = stateCode
				}
			case c == '{' && cur.dollars > 0:
				run := runLength(text, i, '{')
				if run < cur.dollars {
					blankRange(i, i+run, literals)
					i += run - 1
					continue
				}
				// the last dollars braces open the hole, earlier ones are content
				blankRange(i, i+run-cur.dollars, literals)
				openHole(i+run-cur.dollars, cur.dollars)
				i += run - 1
			default:
				blank(i, literals)
			}
		}
	}

	return string(out)
}

// literalStart recognizes a string literal opening at i: optional "$" runs and
// an "@" in either order, then the opening quotes. It returns the literal and
// the width of its opening, or a zero width when text[i] does not start a
// string literal (a verbatim identifier such as @class).
func literalStart(text string, i int) (literal, int) {
	j := i
	dollars, verbatim := 0, false
loop:
	for ; j < len(text); j++ {
		switch {
		case text[j] == '$':
			dollars++
		case text[j] == '@' && !verbatim:
			verbatim = true
		default:
			break loop
		}
	}
	if j >= len(text) || text[j] != '"' {
		return literal{}, 0
	}
	if quotes := runLength(text, j, '"'); quotes >= 3 && !verbatim {
		return literal{st: stateRaw, dollars: dollars, quotes: quotes}, j - i + quotes
	}
	lit := literal{st: stateString, dollars: dollars}
	if verbatim {
		lit.st = stateVerbatim
	}
	return lit, j - i + 1
}

// runLength counts the consecutive c bytes starting at i.
func runLength(text string, i int, c byte) int {
	n := 0
	for i+n < len(text) && text[i+n] == c {
		n++
	}
	return n
}
