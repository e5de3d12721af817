package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer scrubs rendered HTML before it reaches layouts.
type Sanitizer interface {
	Sanitize(html []byte) []byte
}

// HTMLSanitizer applies a bluemonday UGC policy extended with the class
// attributes goldmark emits for fenced code blocks, so language tags like
// `language-rust` survive sanitisation.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

var codeLanguagePattern = regexp.MustCompile(`^language-[a-zA-Z0-9_+-]+$`)

// NewHTMLSanitizer builds the default sanitiser used when ParseOptions.Sanitize
// is set.
func NewHTMLSanitizer() *HTMLSanitizer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(codeLanguagePattern).OnElements("code")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^footnote(s|-ref|-backref)?$`)).OnElements("a", "li", "section")
	return &HTMLSanitizer{policy: policy}
}

// Sanitize returns html with disallowed elements and attributes removed.
func (s *HTMLSanitizer) Sanitize(html []byte) []byte {
	if s == nil || s.policy == nil {
		return html
	}
	return s.policy.SanitizeBytes(html)
}
