// pkg/catalog/catalog.go - the compiled-in list of packages to provision.

package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed packages.yaml
var defaultCatalog []byte

// ErrEmptyIdentifier is returned for entries without a package identifier.
var ErrEmptyIdentifier = errors.New("catalog entry has no identifier")

// Item is one package handed to the package manager.
type Item struct {
	Identifier  string
	DisplayName string
}

// ParseItem reads an "identifier|displayName" entry. A missing or blank
// display name resolves to the identifier.
func ParseItem(entry string) (Item, error) {
	id, name, _ := strings.Cut(entry, "|")
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Item{}, fmt.Errorf("%w: %q", ErrEmptyIdentifier, entry)
	}
	return NewItem(id, name), nil
}

// NewItem builds an Item, defaulting the display name to the identifier.
func NewItem(identifier, displayName string) Item {
	if displayName == "" {
		displayName = identifier
	}
	return Item{Identifier: identifier, DisplayName: displayName}
}

// String renders the item in its catalog form.
func (i Item) String() string {
	if i.DisplayName == "" || i.DisplayName == i.Identifier {
		return i.Identifier
	}
	return i.Identifier + "|" + i.DisplayName
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (i *Item) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: cannot unmarshal %v into catalog item", node.Line, node.Kind)
	}
	item, err := ParseItem(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*i = item
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (i Item) MarshalYAML() (interface{}, error) {
	return i.String(), nil
}

// Catalog holds the ordered application list and the runtime redistributables.
type Catalog struct {
	Packages         []Item   `yaml:"packages"`
	Redistributables []string `yaml:"redistributables"`
}

// Load parses a catalog document. Package order is kept as written.
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for idx, id := range c.Redistributables {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("redistributable %d: %w", idx, ErrEmptyIdentifier)
		}
		c.Redistributables[idx] = id
	}
	return &c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Load(defaultCatalog)
}
