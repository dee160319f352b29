//go:build property
// +build property

package preprocess

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestTransformProperties tests invariant properties of the comment transform.
func TestTransformProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property 1: text without comment occurrences maps to itself, for both
	// values of the enabled flag.
	properties.Property("identity on comment-free text", prop.ForAll(
		func(s string) bool {
			if len(scan(s)) > 0 {
				return true // Only interested in comment-free inputs
			}
			return Transform(s, true) == s && Transform(s, false) == s
		},
		gen.AnyString(),
	))

	// Property 2: !hide dominates !render regardless of token order, in both
	// comment forms.
	properties.Property("hide dominates render", prop.ForAll(
		func(hideFirst bool, note string) bool {
			markers := "!hide !render"
			if !hideFirst {
				markers = "!render !hide"
			}
			arg := strings.TrimSpace(markers + " " + note)

			inline := "{# " + arg + " body #}"
			block := `{% comment "` + arg + `" %}body{% endcomment %}`
			return Transform(inline, true) == "" && Transform(block, true) == ""
		},
		gen.Bool(),
		gen.AlphaString(),
	))

	// Property 3: a disabled transform strips comment spans and leaves the
	// surrounding text byte-for-byte intact.
	properties.Property("disabled transform preserves non-comment text", prop.ForAll(
		func(prefix, body, suffix string) bool {
			src := prefix + "{# " + body + " #}" + suffix
			return Transform(src, false) == prefix+suffix
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	// Property 4: an enabled transform replaces exactly the comment span
	// with a verbatim-wrapped HTML comment.
	properties.Property("enabled transform rewrites only the comment span", prop.ForAll(
		func(prefix, body, suffix string) bool {
			src := prefix + "{# " + body + " #}" + suffix
			want := prefix +
				"{% verbatim %}<!-- " + strings.TrimSpace(body) + " -->{% endverbatim %}" +
				suffix
			return Transform(src, true) == want
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	// Property 5: marker splitting reaches a fixed point. The residual
	// never starts with a marker token.
	properties.Property("marker splitting reaches a fixed point", prop.ForAll(
		func(s string) bool {
			_, rest := splitMarkers(s)
			return !strings.HasPrefix(rest, markerHide) && !strings.HasPrefix(rest, markerRender)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
