package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/querymill/readmodel-go/readmodel"
)

// ErrUnknownFieldKind is returned when a collections file declares a sortable
// field with a kind outside string, int, decimal, bool, date.
var ErrUnknownFieldKind = errors.New("unknown field kind in collections file")

// collectionsFile is the YAML schema for collection descriptors, so a
// deployment can register collections without recompiling.
type collectionsFile struct {
	Collections []collectionEntry `yaml:"collections"`
}

type collectionEntry struct {
	Name         string            `yaml:"name"`
	Aliases      []string          `yaml:"aliases"`
	Table        string            `yaml:"table"`
	Sortable     map[string]string `yaml:"sortable"`
	DefaultOrder orderEntry        `yaml:"defaultOrder"`
}

type orderEntry struct {
	Field      string `yaml:"field"`
	Descending bool   `yaml:"descending"`
}

// LoadCollectionsFile reads collection descriptors from a YAML file.
func LoadCollectionsFile(path string) ([]readmodel.CollectionDescriptor, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("reading collections file: %w", readErr)
	}

	var file collectionsFile
	if unmarshalErr := yaml.Unmarshal(data, &file); unmarshalErr != nil {
		return nil, fmt.Errorf("parsing collections file: %w", unmarshalErr)
	}

	descriptors := make([]readmodel.CollectionDescriptor, 0, len(file.Collections))

	for _, entry := range file.Collections {
		sortable := make(map[string]readmodel.FieldKind, len(entry.Sortable))
		for field, kindName := range entry.Sortable {
			kind, kindErr := fieldKindFromName(kindName)
			if kindErr != nil {
				return nil, fmt.Errorf("collection %q, field %q: %w", entry.Name, field, kindErr)
			}
			sortable[field] = kind
		}

		descriptors = append(descriptors, readmodel.CollectionDescriptor{
			Name:     entry.Name,
			Aliases:  entry.Aliases,
			Table:    entry.Table,
			Sortable: sortable,
			DefaultOrder: readmodel.OrderClause{
				Field:      entry.DefaultOrder.Field,
				Descending: entry.DefaultOrder.Descending,
			},
		})
	}

	return descriptors, nil
}

func fieldKindFromName(name string) (readmodel.FieldKind, error) {
	switch name {
	case "string":
		return readmodel.FieldString, nil
	case "int":
		return readmodel.FieldInt, nil
	case "decimal":
		return readmodel.FieldDecimal, nil
	case "bool":
		return readmodel.FieldBool, nil
	case "date":
		return readmodel.FieldDate, nil
	}

	return readmodel.FieldString, fmt.Errorf("%w: %q", ErrUnknownFieldKind, name)
}
