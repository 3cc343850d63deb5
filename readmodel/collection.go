package readmodel

import (
	"fmt"
	"slices"
	"strings"
)

// CollectionDescriptor identifies one target set of stored records:
// the canonical data-type name, the storage table holding the documents,
// the whitelist of sortable document fields with their kinds, and the
// default single-key ordering used when a caller supplies none.
//
// Collections are the "what are we querying" axis and are independent of
// query shapes; a handler picks a collection and must validate it matches
// the one the caller resolved.
type CollectionDescriptor struct {
	Name         string
	Aliases      []string
	Table        string
	Sortable     map[string]FieldKind
	DefaultOrder OrderClause
}

// Is reports whether name matches the collection's canonical name,
// case-insensitively. Handlers use it for their collection check.
func (cd CollectionDescriptor) Is(name string) bool {
	return strings.EqualFold(cd.Name, name)
}

// SortableField returns the canonical field name and kind for a sortable
// field, matched case-insensitively against the whitelist.
func (cd CollectionDescriptor) SortableField(name string) (string, FieldKind, bool) {
	for field, kind := range cd.Sortable {
		if strings.EqualFold(field, name) {
			return field, kind, true
		}
	}

	return "", FieldString, false
}

// SortKind returns the kind to use when ordering by field, falling back to
// string comparison for fields outside the whitelist (only the default
// ordering field can legitimately be one of those).
func (cd CollectionDescriptor) SortKind(field string) FieldKind {
	if _, kind, found := cd.SortableField(field); found {
		return kind
	}

	return FieldString
}

// CollectionResolver owns the data-type name to collection mapping.
// Like TypeRegistry it is built eagerly at startup, immutable afterward,
// and safe for unsynchronized concurrent reads.
type CollectionResolver struct {
	byName map[string]CollectionDescriptor
}

// NewCollectionResolver builds a CollectionResolver from the supplied
// descriptors. Every name and alias must be unique case-insensitively, and
// every collection must declare a default ordering so pagination stays
// deterministic under blank or malformed orderBy input.
func NewCollectionResolver(descriptor CollectionDescriptor, descriptors ...CollectionDescriptor) (CollectionResolver, error) {
	all := append([]CollectionDescriptor{descriptor}, descriptors...)
	byName := make(map[string]CollectionDescriptor, len(all))

	for _, desc := range all {
		if desc.Name == "" {
			return CollectionResolver{}, ErrEmptyCollectionName
		}

		if desc.DefaultOrder.Field == "" {
			return CollectionResolver{}, fmt.Errorf("%w: %q", ErrMissingDefaultOrder, desc.Name)
		}

		for _, name := range append([]string{desc.Name}, desc.Aliases...) {
			key := strings.ToLower(name)
			if _, exists := byName[key]; exists {
				return CollectionResolver{}, fmt.Errorf("%w: %q", ErrDuplicateCollection, name)
			}

			byName[key] = desc
		}
	}

	return CollectionResolver{byName: byName}, nil
}

// Resolve returns the collection registered under the data-type name or one
// of its aliases. The lookup is case-insensitive.
func (r CollectionResolver) Resolve(dataTypeName string) (CollectionDescriptor, error) {
	desc, found := r.byName[strings.ToLower(dataTypeName)]
	if !found {
		return CollectionDescriptor{}, fmt.Errorf(
			"%w: %q (known: %s)",
			ErrUnknownDataType, dataTypeName, strings.Join(r.Names(), ", "))
	}

	return desc, nil
}

// Names lists all registered canonical collection names, sorted.
func (r CollectionResolver) Names() []string {
	seen := make(map[string]struct{}, len(r.byName))
	names := make([]string, 0, len(r.byName))

	for _, desc := range r.byName {
		if _, dup := seen[desc.Name]; dup {
			continue
		}
		seen[desc.Name] = struct{}{}
		names = append(names, desc.Name)
	}
	slices.Sort(names)

	return names
}
