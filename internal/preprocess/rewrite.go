package preprocess

import "strings"

// parsedComment is an occurrence with its directives extracted.
type parsedComment struct {
	occ     occurrence
	markers markerSet

	// note is the block form's residual argument text, markers stripped.
	// Inline comments never carry a note.
	note string

	// content is the text destined for the emitted HTML comment: the inline
	// body with leading markers stripped, or the block body unchanged.
	content string
}

// parseComment extracts markers from an occurrence. For the inline form the
// markers lead the body itself; for the block form they live only in the
// quoted argument, and the body passes through untouched.
func parseComment(occ occurrence) parsedComment {
	pc := parsedComment{occ: occ}
	switch occ.kind {
	case kindInline:
		pc.markers, pc.content = splitMarkers(occ.body)
	case kindBlock:
		if occ.hasNote {
			pc.markers, pc.note = splitMarkers(occ.note)
		}
		pc.content = occ.body
	}
	return pc
}

type outcomeKind int

const (
	// outcomeRemoved drops the comment: nothing is emitted.
	outcomeRemoved outcomeKind = iota
	// outcomeLiteral emits an HTML comment the host engine must not evaluate.
	outcomeLiteral
	// outcomeProcessed emits an HTML comment whose embedded template syntax
	// the host engine evaluates on its own pass.
	outcomeProcessed
)

// decide picks the rewrite outcome for one comment. !hide dominates !render
// regardless of the order the tokens appeared in, and a disabled transform
// removes everything. The returned text is the assembled comment body for
// the two emitting outcomes.
func decide(pc parsedComment, enabled bool) (outcomeKind, string) {
	if !enabled || pc.markers.hide {
		return outcomeRemoved, ""
	}
	text := commentText(pc.note, pc.content)
	if pc.markers.render {
		return outcomeProcessed, text
	}
	return outcomeLiteral, text
}

// commentText joins the optional note and the content into the emitted
// comment body: "[note] content" when a note is present, just the content
// otherwise. Both parts are whitespace-trimmed and escaped.
func commentText(note, content string) string {
	content = escapeComment(strings.TrimSpace(content))
	note = strings.TrimSpace(note)
	if note != "" {
		return "[" + escapeComment(note) + "] " + content
	}
	return content
}

// escapeComment replaces "--" with "- -". HTML comments cannot contain two
// consecutive hyphens without closing early.
func escapeComment(s string) string {
	return strings.ReplaceAll(s, "--", "- -")
}
