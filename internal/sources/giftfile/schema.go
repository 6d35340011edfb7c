package giftfile

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// File is the parsed import file.
//
// Two layouts are accepted. A flat list:
//
//	- name: Faqueiro de Prata
//	  image_url: https://...
//	  category: Cozinha
//	- Jogo de Toalhas
//
// or entries grouped by category:
//
//	Cozinha:
//	  - Panelas
//	  - name: Faqueiro de Prata
//
// JSON documents with the same shapes parse too.
type File struct {
	Entries []Entry
}

// Entry is one gift line. A bare string is shorthand for {name: ...}.
type Entry struct {
	Name     string `yaml:"name" json:"name"`
	ImageURL string `yaml:"image_url" json:"image_url"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
}

func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Name = node.Value
		return nil
	}

	type plain Entry
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

func (f *File) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&f.Entries)

	case yaml.MappingNode:
		// Content alternates key, value; keep the file's category order.
		for i := 0; i+1 < len(node.Content); i += 2 {
			category := node.Content[i].Value

			var group []Entry
			if err := node.Content[i+1].Decode(&group); err != nil {
				return fmt.Errorf("category %q: %w", category, err)
			}
			for _, e := range group {
				if e.Category == "" {
					e.Category = category
				}
				f.Entries = append(f.Entries, e)
			}
		}
		return nil

	default:
		return fmt.Errorf("line %d: expected a list or a map of categories", node.Line)
	}
}
