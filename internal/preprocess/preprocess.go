// Package preprocess rewrites Django template comments into HTML comments.
//
// The transform locates inline comments ({# ... #}) and block comments
// ({% comment %}...{% endcomment %}, with an optional quoted note) in raw
// template source and, when enabled, re-emits them as <!-- ... --> markup so
// they stay visible in browser developer tools. Comments carrying the !hide
// marker are stripped, and comments carrying the !render marker are emitted
// without the verbatim wrapper so the template engine evaluates any embedded
// syntax inside them. When disabled, every comment is stripped outright.
//
// The pipeline is a single pass over the source: the scanner produces ordered
// comment occurrences, the marker parser extracts directives from each
// occurrence's leading tokens, the rewrite step decides between removal,
// literal emission, and processed emission, and the assembler splices the
// replacements between untouched source segments. Non-comment text is never
// modified. The whole transform is pure and safe for concurrent use.
package preprocess

import (
	"strings"

	"github.com/sean-reed/django-render-comments/internal/engine"
)

// Transform converts every template comment in source into an HTML comment
// using the default Django host engine. When enabled is false all comment
// spans are removed instead, matching the engine's own stripping behavior.
func Transform(source string, enabled bool) string {
	return TransformWith(source, enabled, engine.Django{})
}

// TransformWith is Transform with an explicit host engine. The host supplies
// the single primitive the rewrite needs: wrapping literal output in an
// opaque region the engine will not evaluate.
func TransformWith(source string, enabled bool, host engine.Engine) string {
	occs := scan(source)
	if len(occs) == 0 {
		return source
	}

	var b strings.Builder
	b.Grow(len(source))
	last := 0
	for _, occ := range occs {
		b.WriteString(source[last:occ.start])

		pc := parseComment(occ)
		kind, text := decide(pc, enabled)
		switch kind {
		case outcomeRemoved:
			// nothing emitted
		case outcomeProcessed:
			b.WriteString(htmlComment(text))
		case outcomeLiteral:
			b.WriteString(host.Verbatim(htmlComment(text)))
		}

		last = occ.end
	}
	b.WriteString(source[last:])
	return b.String()
}

func htmlComment(text string) string {
	return "<!-- " + text + " -->"
}
