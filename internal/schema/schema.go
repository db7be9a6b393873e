// SPDX-License-Identifier: MPL-2.0

package schema

type (
	// Schema is the ordered list of configuration groups.
	Schema struct {
		Groups []Group
	}

	// Group is a named collection of items presented together.
	Group struct {
		ID          string
		Name        string
		Description string
		Items       []Item
	}

	// Item is a single typed configuration value tied to one variable in one
	// env file.
	Item struct {
		// Name is unique within the item's group.
		Name   string
		Kind   Kind
		EnvVar EnvVar
		// Default is the value declared in the schema document, or the empty
		// value of Kind when the document declares none.
		Default Value
	}

	// EnvVar binds an item to a variable name inside the env file registered
	// under the logical key File.
	EnvVar struct {
		File string
		Name string
	}
)

// Group returns the group with the given ID.
func (s *Schema) Group(id string) (*Group, bool) {
	for i := range s.Groups {
		if s.Groups[i].ID == id {
			return &s.Groups[i], true
		}
	}
	return nil, false
}

// Item returns the named item of the group.
func (g *Group) Item(name string) (*Item, bool) {
	for i := range g.Items {
		if g.Items[i].Name == name {
			return &g.Items[i], true
		}
	}
	return nil, false
}

// FileKeys returns the distinct logical file keys referenced by items, in
// first-seen order.
func (s *Schema) FileKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, g := range s.Groups {
		for _, it := range g.Items {
			if !seen[it.EnvVar.File] {
				seen[it.EnvVar.File] = true
				keys = append(keys, it.EnvVar.File)
			}
		}
	}
	return keys
}

// ItemCount returns the number of items across all groups.
func (s *Schema) ItemCount() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Items)
	}
	return n
}
