// Package engine abstracts the host template engine's cooperation point.
//
// The preprocessor owns comment rewriting but not template evaluation: the
// host engine decides whether emitted text is evaluated on its subsequent
// parse. The one primitive the preprocessor needs from the host is "treat
// this span as opaque", exposed here as Verbatim.
package engine

// Engine is the host template engine contract.
type Engine interface {
	// Verbatim wraps s so the host engine renders it literally, without
	// evaluating any template syntax it contains.
	Verbatim(s string) string
}

// Django wraps literal regions in {% verbatim %} tags, Django's primitive
// for suppressing template evaluation.
type Django struct{}

func (Django) Verbatim(s string) string {
	return "{% verbatim %}" + s + "{% endverbatim %}"
}
