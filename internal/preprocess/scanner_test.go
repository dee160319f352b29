package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanInline(t *testing.T) {
	src := "<div>{# hello #}</div>"
	occs := scan(src)

	require.Len(t, occs, 1)
	assert.Equal(t, kindInline, occs[0].kind)
	assert.Equal(t, "{# hello #}", src[occs[0].start:occs[0].end])
	assert.Equal(t, " hello ", occs[0].body)
	assert.False(t, occs[0].hasNote)
}

func TestScanInlineMultiline(t *testing.T) {
	occs := scan("{# line1\nline2 #}")
	require.Len(t, occs, 1)
	assert.Equal(t, " line1\nline2 ", occs[0].body)
}

func TestScanBlock(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		hasNote bool
		note    string
		body    string
	}{
		{"plain", "{% comment %}content{% endcomment %}", false, "", "content"},
		{"double quoted note", `{% comment "note" %}content{% endcomment %}`, true, "note", "content"},
		{"single quoted note", `{% comment 'note' %}content{% endcomment %}`, true, "note", "content"},
		{"empty note", `{% comment "" %}content{% endcomment %}`, true, "", "content"},
		{"flexible whitespace", "{%  comment  %}content{%  endcomment  %}", false, "", "content"},
		{"tight tags", "{%comment%}content{%endcomment%}", false, "", "content"},
		{"multiline body", "{% comment %}\nline 1\nline 2\n{% endcomment %}", false, "", "\nline 1\nline 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occs := scan(tt.src)
			require.Len(t, occs, 1)
			assert.Equal(t, kindBlock, occs[0].kind)
			assert.Equal(t, 0, occs[0].start)
			assert.Equal(t, len(tt.src), occs[0].end)
			assert.Equal(t, tt.hasNote, occs[0].hasNote)
			assert.Equal(t, tt.note, occs[0].note)
			assert.Equal(t, tt.body, occs[0].body)
		})
	}
}

func TestScanOrderingAndSpans(t *testing.T) {
	src := "{# a #}text{% comment %}b{% endcomment %}{# c #}"
	occs := scan(src)

	require.Len(t, occs, 3)
	for i := 1; i < len(occs); i++ {
		assert.Greater(t, occs[i].start, occs[i-1].start, "occurrences must be in increasing start order")
		assert.GreaterOrEqual(t, occs[i].start, occs[i-1].end, "occurrences must not overlap")
	}
	assert.Equal(t, kindInline, occs[0].kind)
	assert.Equal(t, kindBlock, occs[1].kind)
	assert.Equal(t, kindInline, occs[2].kind)
}

func TestScanFirstOpenerWins(t *testing.T) {
	// The block opener comes first, so the inline delimiters inside it are
	// plain body text.
	occs := scan("{% comment %}{# inner #}{% endcomment %}")
	require.Len(t, occs, 1)
	assert.Equal(t, kindBlock, occs[0].kind)
	assert.Equal(t, "{# inner #}", occs[0].body)

	// And the other way around: the inline opener comes first, but an inline
	// comment closes at the first #}, before the block would open.
	occs = scan("{# a #}{% comment %}b{% endcomment %}")
	require.Len(t, occs, 2)
	assert.Equal(t, kindInline, occs[0].kind)
	assert.Equal(t, kindBlock, occs[1].kind)
}

func TestScanBlockDoesNotNest(t *testing.T) {
	src := "{% comment %}outer{% comment %}inner{% endcomment %}{% endcomment %}"
	occs := scan(src)

	require.Len(t, occs, 1)
	assert.Equal(t, "outer{% comment %}inner", occs[0].body)
	// The trailing {% endcomment %} is left as ordinary text.
	assert.Equal(t, len(src)-len("{% endcomment %}"), occs[0].end)
}

func TestScanUnterminated(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"inline opener without closer", "text {# dangling", 0},
		{"block opener without closer", "{% comment %}dangling", 0},
		{"block closer without opener", "text {% endcomment %}", 0},
		{"unterminated note quote", `{% comment "broken %}x{% endcomment %}`, 0},
		{"comment after dangling inline opener", "{# {% comment %}x{% endcomment %}", 1},
		{"comment after dangling block opener", "{% comment %}{# x #}", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, scan(tt.src), tt.want)
		})
	}
}

func TestScanNonCommentTags(t *testing.T) {
	assert.Empty(t, scan("{% if x %}{{ y }}{% endif %}"))
	assert.Empty(t, scan("{% commentary %}x{% endcomment %}"))
	assert.Empty(t, scan("plain text, no templates"))
	assert.Empty(t, scan(""))
	assert.Empty(t, scan("{ # not a comment # }"))
}

func TestScanNoteMayNotMixQuotes(t *testing.T) {
	// A note opened with one quote character cannot be closed by the other.
	assert.Empty(t, scan(`{% comment "note' %}x{% endcomment %}`))
}
