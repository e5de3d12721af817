package markdown

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. The metadata block must open on the first line with a
// recognised delimiter (`+++` for TOML, `---` for YAML, `;;;` for JSON) and
// close with the same delimiter; a document without a block yields empty
// metadata and the full source as body. Malformed blocks return a ParseError
// carrying the offending line when the decoder can attribute one.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	if err := scanUnterminated(source); err != nil {
		return interfaces.FrontMatter{}, nil, err
	}

	var env frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return interfaces.FrontMatter{}, nil, &ParseError{
			Line: frontMatterLine(err),
			Err:  fmt.Errorf("%w: %w", ErrFrontMatterInvalid, err),
		}
	}

	// Decode a second time into a plain map so unknown keys survive verbatim.
	// The typed envelope drops them; the raw mapping keeps the block
	// round-trippable.
	raw := map[string]any{}
	if _, err := frontmatter.Parse(bytes.NewReader(source), &raw); err != nil {
		return interfaces.FrontMatter{}, nil, &ParseError{
			Line: frontMatterLine(err),
			Err:  fmt.Errorf("%w: %w", ErrFrontMatterInvalid, err),
		}
	}

	fm, err := envelopeToFrontMatter(env, raw)
	if err != nil {
		return interfaces.FrontMatter{}, nil, &ParseError{Err: err}
	}
	return fm, body, nil
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// section, raw content, and modification time. BodyHTML is intentionally left
// empty so callers can render lazily.
func BuildDocument(path string, section string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
			return nil, perr
		}
		return nil, &ParseError{Path: path, Err: err}
	}

	return &interfaces.Document{
		FilePath:     path,
		Section:      section,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
	}, nil
}

// EncodeFrontMatter serialises metadata back into a delimited TOML block.
// Keys come out sorted, so encoding the result of ParseFrontMatter and
// parsing again yields an equivalent mapping.
func EncodeFrontMatter(fm interfaces.FrontMatter) ([]byte, error) {
	var block bytes.Buffer
	if len(fm.Raw) > 0 {
		if err := toml.NewEncoder(&block).Encode(fm.Raw); err != nil {
			return nil, fmt.Errorf("markdown encode front matter: %w", err)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("+++\n")
	if content := bytes.TrimRight(block.Bytes(), "\n"); len(content) > 0 {
		buf.Write(content)
		buf.WriteString("\n")
	}
	buf.WriteString("+++\n")
	return buf.Bytes(), nil
}

// frontMatterEnvelope captures the keys the pipeline acts on. Tags and Draft
// are deliberately strict so a mistyped value (`draft = "yes"`) fails at parse
// time instead of leaking downstream. Date stays loose because the block may
// carry either a native datetime or a formatted string.
type frontMatterEnvelope struct {
	Title    string   `yaml:"title" toml:"title"`
	Subtitle string   `yaml:"subtitle" toml:"subtitle"`
	Slug     string   `yaml:"slug" toml:"slug"`
	Summary  string   `yaml:"summary" toml:"summary"`
	Layout   string   `yaml:"layout" toml:"layout"`
	Tags     []string `yaml:"tags" toml:"tags"`
	Author   string   `yaml:"author" toml:"author"`
	Date     any      `yaml:"date" toml:"date"`
	Draft    bool     `yaml:"draft" toml:"draft"`
}

var reservedFrontMatterKeys = map[string]struct{}{
	"title":    {},
	"subtitle": {},
	"slug":     {},
	"summary":  {},
	"layout":   {},
	"tags":     {},
	"author":   {},
	"date":     {},
	"draft":    {},
}

func envelopeToFrontMatter(env frontMatterEnvelope, raw map[string]any) (interfaces.FrontMatter, error) {
	date, err := normalizeDate(env.Date)
	if err != nil {
		return interfaces.FrontMatter{}, err
	}

	custom := map[string]any{}
	for key, value := range raw {
		if _, ok := reservedFrontMatterKeys[strings.ToLower(key)]; ok {
			continue
		}
		custom[key] = value
	}

	return interfaces.FrontMatter{
		Title:    env.Title,
		Subtitle: env.Subtitle,
		Slug:     env.Slug,
		Summary:  env.Summary,
		Layout:   env.Layout,
		Tags:     append([]string(nil), env.Tags...),
		Author:   env.Author,
		Date:     date,
		Draft:    env.Draft,
		Custom:   custom,
		Raw:      cloneMap(raw),
	}, nil
}

// dateFormats lists the accepted layouts for string dates, most specific
// first.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02 Jan 2006",
}

func normalizeDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		return parseDateString(v)
	default:
		return time.Time{}, fmt.Errorf("%w: date must be a datetime or string, got %T", ErrFrontMatterInvalid, value)
	}
}

func parseDateString(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", ErrFrontMatterInvalid, value)
}

var frontMatterDelims = []string{"+++", "---", ";;;"}

// scanUnterminated flags an opening delimiter that never closes. The decoder
// alone cannot catch this: an unterminated block looks like a document with no
// front matter at all, which would silently publish the metadata as body text.
func scanUnterminated(source []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return nil
	}

	first := strings.TrimRight(scanner.Text(), "\r")
	var delim string
	for _, candidate := range frontMatterDelims {
		if first == candidate {
			delim = candidate
			break
		}
	}
	if delim == "" {
		return nil
	}

	for scanner.Scan() {
		if strings.TrimRight(scanner.Text(), "\r") == delim {
			return nil
		}
	}
	return &ParseError{Line: 1, Err: ErrFrontMatterUnterminated}
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// frontMatterLine recovers the document line a decode failure points at. Both
// decoders report lines relative to the block content, so the opening
// delimiter line is added back.
func frontMatterLine(err error) int {
	var tomlErr toml.ParseError
	if errors.As(err, &tomlErr) {
		if tomlErr.Position.Line > 0 {
			return tomlErr.Position.Line + 1
		}
		if tomlErr.Line > 0 {
			return tomlErr.Line + 1
		}
	}
	if match := yamlLinePattern.FindStringSubmatch(err.Error()); len(match) == 2 {
		if line, convErr := strconv.Atoi(match[1]); convErr == nil && line > 0 {
			return line + 1
		}
	}
	return 0
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
