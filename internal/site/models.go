package site

import (
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

// Page is the renderable unit derived from one source document. Fields are
// resolved once during Build; consumers treat pages as read-only.
type Page struct {
	ID         uuid.UUID
	Document   *interfaces.Document
	Title      string
	Slug       string
	Section    string
	Layout     string
	Permalink  string
	OutputPath string
	Summary    string
	Author     string
	Tags       []Tag
	Date       time.Time
	Draft      bool
}

// Tag labels zero or more pages. Name keeps the first-seen casing; Slug is
// the normalized identity used for grouping and URLs.
type Tag struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	Permalink string
}

// TagIndex groups the listed pages carrying one tag.
type TagIndex struct {
	Tag
	Pages []*Page
}

// Section groups the listed pages under one top-level content directory.
type Section struct {
	Name      string
	Permalink string
	Pages     []*Page
}

// Meta carries the site-wide values layouts and feeds read.
type Meta struct {
	Title       string
	Description string
	Author      string
	Language    string
	BaseURL     string
}
