package readmodel

import (
	"fmt"
	"slices"
	"strings"
)

// TypeRegistry owns the discriminator to shape-descriptor mapping.
// It is built eagerly at startup and immutable afterward, which makes it
// safe for unsynchronized concurrent reads on the request path.
type TypeRegistry struct {
	byDiscriminator map[string]ShapeDescriptor
}

// NewTypeRegistry builds a TypeRegistry from the supplied descriptors.
// Registration fails fast on an empty or (case-insensitively) duplicate
// discriminator; late registration is not supported.
func NewTypeRegistry(descriptor ShapeDescriptor, descriptors ...ShapeDescriptor) (TypeRegistry, error) {
	all := append([]ShapeDescriptor{descriptor}, descriptors...)
	byDiscriminator := make(map[string]ShapeDescriptor, len(all))

	for _, desc := range all {
		if desc.Discriminator == "" {
			return TypeRegistry{}, ErrEmptyDiscriminator
		}

		key := strings.ToLower(desc.Discriminator)
		if _, exists := byDiscriminator[key]; exists {
			return TypeRegistry{}, fmt.Errorf("%w: %q", ErrDuplicateDiscriminator, desc.Discriminator)
		}

		byDiscriminator[key] = desc
	}

	return TypeRegistry{byDiscriminator: byDiscriminator}, nil
}

// Resolve returns the descriptor registered for the discriminator.
// The lookup is case-insensitive to tolerate client casing variance.
func (r TypeRegistry) Resolve(discriminator string) (ShapeDescriptor, error) {
	desc, found := r.byDiscriminator[strings.ToLower(discriminator)]
	if !found {
		return ShapeDescriptor{}, fmt.Errorf(
			"%w: %q (known: %s)",
			ErrUnknownQueryType, discriminator, strings.Join(r.Discriminators(), ", "))
	}

	return desc, nil
}

// Discriminators lists all registered discriminators in their registered
// casing, sorted alphabetically.
func (r TypeRegistry) Discriminators() []string {
	discriminators := make([]string, 0, len(r.byDiscriminator))
	for _, desc := range r.byDiscriminator {
		discriminators = append(discriminators, desc.Discriminator)
	}
	slices.Sort(discriminators)

	return discriminators
}
