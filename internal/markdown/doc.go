// Package markdown turns source files into documents: it splits the leading
// metadata block from the body, decodes the block into typed front matter,
// and renders the body to HTML through goldmark. Directory loads follow a
// partial-failure policy where a malformed file is reported and skipped while
// its siblings keep flowing.
package markdown
