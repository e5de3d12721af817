package layouts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"

	"github.com/goliatone/go-sitegen/internal/identity"
)

// Service exposes layout registration and resolution.
type Service interface {
	RegisterLayout(ctx context.Context, input RegisterLayoutInput) (*Layout, error)
	GetLayout(ctx context.Context, id uuid.UUID) (*Layout, error)
	GetLayoutByName(ctx context.Context, name string) (*Layout, error)
	ListLayouts(ctx context.Context) ([]*Layout, error)

	// Resolve maps a front-matter layout name onto a registered layout. An
	// empty name falls back to the configured default; a name that matches
	// nothing fails with ErrLayoutNotFound.
	Resolve(ctx context.Context, name string) (*Layout, error)
	DefaultLayout() string

	// Selection reports the active theme manifest selection, nil when the
	// layout directory carries no manifest.
	Selection() *gotheme.Selection
	// Assets lists manifest-declared static files relative to the layout
	// directory.
	Assets() []string
}

var (
	ErrLayoutRepositoryRequired = errors.New("layouts: layout repository required")
	ErrDefaultLayoutRequired    = errors.New("layouts: default layout name required")

	ErrLayoutNameRequired     = errors.New("layouts: name required")
	ErrLayoutTemplateRequired = errors.New("layouts: template required")
	ErrLayoutExists           = errors.New("layouts: layout already exists")
	ErrLayoutNotFound         = errors.New("layouts: layout not found")
)

// IDGenerator produces identifiers for layouts registered without one.
type IDGenerator func(set, name string) uuid.UUID

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithLayoutIDGenerator overrides the default deterministic ID generator.
func WithLayoutIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSelection attaches a theme manifest selection resolved during discovery.
func WithSelection(selection *gotheme.Selection) ServiceOption {
	return func(s *service) {
		s.selection = selection
	}
}

type service struct {
	layouts       LayoutRepository
	defaultLayout string
	id            IDGenerator
	now           func() time.Time
	selection     *gotheme.Selection
}

// NewService constructs a layout service instance.
func NewService(repo LayoutRepository, defaultLayout string, opts ...ServiceOption) (Service, error) {
	if repo == nil {
		return nil, ErrLayoutRepositoryRequired
	}
	defaultLayout = strings.TrimSpace(defaultLayout)
	if defaultLayout == "" {
		return nil, ErrDefaultLayoutRequired
	}

	s := &service{
		layouts:       repo,
		defaultLayout: defaultLayout,
		id:            defaultLayoutID,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func defaultLayoutID(set, name string) uuid.UUID {
	if set == "" {
		return identity.LayoutUUID(identity.LayoutSetUUID("standalone"), name)
	}
	return identity.LayoutUUID(identity.LayoutSetUUID(set), name)
}

func (s *service) RegisterLayout(ctx context.Context, input RegisterLayoutInput) (*Layout, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrLayoutNameRequired
	}
	tpl := strings.TrimSpace(input.Template)
	if tpl == "" {
		return nil, ErrLayoutTemplateRequired
	}

	if existing, err := s.layouts.GetByName(ctx, name); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %q", ErrLayoutExists, name)
	} else if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	id := input.ID
	if id == uuid.Nil {
		id = s.id(strings.TrimSpace(input.Set), name)
	}

	record := &Layout{
		ID:        id,
		Name:      name,
		Set:       strings.TrimSpace(input.Set),
		Variant:   strings.TrimSpace(input.Variant),
		Template:  tpl,
		Path:      strings.TrimSpace(input.Path),
		Partial:   input.Partial,
		CreatedAt: s.now().UTC(),
		UpdatedAt: s.now().UTC(),
	}

	created, err := s.layouts.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return cloneLayout(created), nil
}

func (s *service) GetLayout(ctx context.Context, id uuid.UUID) (*Layout, error) {
	if id == uuid.Nil {
		return nil, ErrLayoutNotFound
	}
	layout, err := s.layouts.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, ErrLayoutNotFound)
	}
	return cloneLayout(layout), nil
}

func (s *service) GetLayoutByName(ctx context.Context, name string) (*Layout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLayoutNotFound
	}
	layout, err := s.layouts.GetByName(ctx, name)
	if err != nil {
		return nil, translateRepoError(err, ErrLayoutNotFound)
	}
	return cloneLayout(layout), nil
}

func (s *service) ListLayouts(ctx context.Context) ([]*Layout, error) {
	records, err := s.layouts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Layout, len(records))
	for i, record := range records {
		out[i] = cloneLayout(record)
	}
	return out, nil
}

func (s *service) Resolve(ctx context.Context, name string) (*Layout, error) {
	resolved := strings.TrimSpace(name)
	if resolved == "" {
		resolved = s.defaultLayout
	}

	layout, err := s.layouts.GetByName(ctx, resolved)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("%w: %q", ErrLayoutNotFound, resolved)
		}
		return nil, err
	}
	if layout.Partial {
		return nil, fmt.Errorf("%w: %q is a partial", ErrLayoutNotFound, resolved)
	}
	return cloneLayout(layout), nil
}

func (s *service) DefaultLayout() string {
	return s.defaultLayout
}

func (s *service) Selection() *gotheme.Selection {
	return s.selection
}

func (s *service) Assets() []string {
	return manifestAssets(s.selection)
}

func translateRepoError(err error, fallback error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return fallback
	}
	return err
}
