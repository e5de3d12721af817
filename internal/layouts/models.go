package layouts

import (
	"time"

	"github.com/google/uuid"
)

// Layout describes a named template a document can select through its front
// matter. Name is the registry key ("default", "about-alternative"); Template
// is the renderer-facing template name, usually the file base name including
// its extension.
type Layout struct {
	ID        uuid.UUID
	Name      string
	Set       string
	Variant   string
	Template  string
	Path      string
	Partial   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RegisterLayoutInput carries the fields required to register a layout.
type RegisterLayoutInput struct {
	ID       uuid.UUID
	Name     string
	Set      string
	Variant  string
	Template string
	Path     string
	Partial  bool
}
