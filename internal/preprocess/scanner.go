package preprocess

import "strings"

// Comment delimiters recognized in template source.
const (
	inlineOpen  = "{#"
	inlineClose = "#}"
	tagOpen     = "{%"
	tagClose    = "%}"

	commentKeyword    = "comment"
	endCommentKeyword = "endcomment"
)

type occurrenceKind int

const (
	kindInline occurrenceKind = iota
	kindBlock
)

// occurrence is one comment span in the source, delimiters included.
// Occurrences are produced in strictly increasing start order and never
// overlap.
type occurrence struct {
	kind  occurrenceKind
	start int // offset of the opening delimiter
	end   int // offset just past the closing delimiter

	// hasNote reports whether the block form carried a quoted argument.
	// A present-but-empty note ({% comment "" %}) sets hasNote with an
	// empty note string.
	hasNote bool
	note    string

	// body is the raw text between the delimiters, unexamined.
	body string
}

// scan walks the source once, left to right, collecting every well formed
// comment occurrence. Whichever delimiter form opens first claims the span:
// an inline comment cannot straddle a block comment's delimiters and vice
// versa. An opener with no matching closer is not an error; it is treated as
// ordinary text and scanning resumes immediately after it.
func scan(src string) []occurrence {
	var occs []occurrence
	i := 0
	for {
		p := strings.IndexByte(src[i:], '{')
		if p < 0 {
			break
		}
		p += i

		switch {
		case strings.HasPrefix(src[p:], inlineOpen):
			rel := strings.Index(src[p+len(inlineOpen):], inlineClose)
			if rel < 0 {
				i = p + len(inlineOpen)
				continue
			}
			bodyStart := p + len(inlineOpen)
			occs = append(occs, occurrence{
				kind:  kindInline,
				start: p,
				end:   bodyStart + rel + len(inlineClose),
				body:  src[bodyStart : bodyStart+rel],
			})
			i = bodyStart + rel + len(inlineClose)

		case strings.HasPrefix(src[p:], tagOpen):
			open, ok := parseBlockOpen(src, p)
			if !ok {
				i = p + len(tagOpen)
				continue
			}
			closeStart, closeEnd, found := findBlockClose(src, open.end)
			if !found {
				i = p + len(tagOpen)
				continue
			}
			occs = append(occs, occurrence{
				kind:    kindBlock,
				start:   p,
				end:     closeEnd,
				hasNote: open.hasNote,
				note:    open.note,
				body:    src[open.end:closeStart],
			})
			i = closeEnd

		default:
			i = p + 1
		}
	}
	return occs
}

// blockOpen describes a parsed {% comment %} opening tag.
type blockOpen struct {
	end     int // offset just past the closing %}
	hasNote bool
	note    string
}

// parseBlockOpen matches {% comment %} at p, with flexible whitespace and an
// optional quoted note: {%  comment  "note"  %} or single quotes. The note
// may not contain either quote character. Anything that does not fit the
// grammar is not an opener.
func parseBlockOpen(src string, p int) (blockOpen, bool) {
	j := skipSpace(src, p+len(tagOpen))
	if !strings.HasPrefix(src[j:], commentKeyword) {
		return blockOpen{}, false
	}
	j += len(commentKeyword)

	var open blockOpen
	k := skipSpace(src, j)
	if k > j && k < len(src) && (src[k] == '"' || src[k] == '\'') {
		quote := src[k]
		m := k + 1
		for m < len(src) && src[m] != '"' && src[m] != '\'' {
			m++
		}
		if m >= len(src) || src[m] != quote {
			return blockOpen{}, false
		}
		open.hasNote = true
		open.note = src[k+1 : m]
		j = m + 1
		k = skipSpace(src, j)
	}
	if !strings.HasPrefix(src[k:], tagClose) {
		return blockOpen{}, false
	}
	open.end = k + len(tagClose)
	return open, true
}

// findBlockClose locates the first {% endcomment %} tag at or after from.
// Block comments do not nest; the first closer wins.
func findBlockClose(src string, from int) (start, end int, found bool) {
	i := from
	for {
		rel := strings.Index(src[i:], tagOpen)
		if rel < 0 {
			return 0, 0, false
		}
		p := i + rel
		j := skipSpace(src, p+len(tagOpen))
		if strings.HasPrefix(src[j:], endCommentKeyword) {
			j = skipSpace(src, j+len(endCommentKeyword))
			if strings.HasPrefix(src[j:], tagClose) {
				return p, j + len(tagClose), true
			}
		}
		i = p + len(tagOpen)
	}
}

// skipSpace advances past ASCII whitespace starting at i.
func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
