package preprocess

import "strings"

// Marker directives recognized at the start of a comment's argument or body.
// Each is a fixed, case-sensitive literal behind the '!' sentinel.
const (
	markerHide   = "!hide"
	markerRender = "!render"
)

// markerSet records which directives a comment's leading token run carried.
// It is derived per comment, never stored.
type markerSet struct {
	hide   bool
	render bool
}

// splitMarkers strips recognized marker tokens off the front of s and
// returns the set found plus the residual text. The loop runs to a fixed
// point so the markers may appear in any order; the first non-marker token
// ends marker scanning. A residual of "" means the leading run held only
// markers and whitespace.
func splitMarkers(s string) (markerSet, string) {
	var ms markerSet
	rest := s
	for {
		rest = trimLeftSpace(rest)
		switch {
		case strings.HasPrefix(rest, markerHide):
			ms.hide = true
			rest = rest[len(markerHide):]
		case strings.HasPrefix(rest, markerRender):
			ms.render = true
			rest = rest[len(markerRender):]
		default:
			return ms, rest
		}
	}
}

func trimLeftSpace(s string) string {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return s[i:]
}
