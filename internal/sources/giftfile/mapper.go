package giftfile

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/giftlist/internal/registry"
)

// ToItems converts entries to registry input, skipping blank names.
func ToItems(f File) ([]registry.NewItem, error) {
	items := make([]registry.NewItem, 0, len(f.Entries))
	for _, e := range f.Entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		items = append(items, registry.NewItem{
			Name:     name,
			ImageURL: strings.TrimSpace(e.ImageURL),
			Category: strings.TrimSpace(e.Category),
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid gifts found in gift file")
	}
	return items, nil
}
