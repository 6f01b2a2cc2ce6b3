package ports

import (
	"context"

	"github.com/openprobity/crosswalk/pkg/domain"
	"github.com/openprobity/crosswalk/pkg/schema"
)

// DefinitionStore persists frozen definition documents. Definitions are
// created and edited interactively, then saved (frozen) before execution;
// stores never mutate a saved document in place.
type DefinitionStore interface {
	// SaveSchema persists a schema definition under its name.
	SaveSchema(ctx context.Context, s *schema.Schema) error

	// LoadSchema retrieves a schema definition by name.
	// Returns domain.ErrDefinitionNotFound if absent.
	LoadSchema(ctx context.Context, name string) (*schema.Schema, error)

	// SaveCrosswalk persists a crosswalk definition under its name.
	SaveCrosswalk(ctx context.Context, c *domain.Crosswalk) error

	// LoadCrosswalk retrieves a crosswalk definition by name.
	// Returns domain.ErrDefinitionNotFound if absent.
	LoadCrosswalk(ctx context.Context, name string) (*domain.Crosswalk, error)

	// SaveTransform persists a transform audit record under its name.
	SaveTransform(ctx context.Context, t *domain.Transform) error

	// LoadTransform retrieves a transform audit record by name.
	// Returns domain.ErrDefinitionNotFound if absent.
	LoadTransform(ctx context.Context, name string) (*domain.Transform, error)

	// List returns the names of stored definitions of one kind
	// ("schema", "crosswalk", or "transform").
	List(ctx context.Context, kind string) ([]string, error)
}
