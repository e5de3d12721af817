package layouts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// LayoutRepository exposes persistence operations for layouts.
type LayoutRepository interface {
	Create(ctx context.Context, layout *Layout) (*Layout, error)
	Update(ctx context.Context, layout *Layout) (*Layout, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Layout, error)
	GetByName(ctx context.Context, name string) (*Layout, error)
	List(ctx context.Context) ([]*Layout, error)
}

// NotFoundError is returned when a layout cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
