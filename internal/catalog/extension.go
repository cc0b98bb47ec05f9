package catalog

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"example.com/subscription-reaper/backend/internal/models"
)

// Extension lists providers and aliases added on top of a catalog.
type Extension struct {
	Providers []ExtensionEntry `toml:"provider"`
	Aliases   map[string]string `toml:"aliases"`
}

type ExtensionEntry struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	LogoURL     string `toml:"logo_url"`
	Category    string `toml:"category"`
	DefaultIcon string `toml:"default_icon"`
}

// LoadExtension reads extra providers and aliases from a TOML file and merges them over the built-in table.
//
//	[[provider]]
//	id = "facebook"
//	name = "Meta Verified"
//	category = "Other"
//
//	[aliases]
//	meta = "facebook"
func LoadExtension(path string) (*Catalog, error) {
	var file Extension
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decode catalog extension %s: %w", path, err)
	}

	return Extend(Default(), file)
}

// Extend returns a copy of base with the extension applied.
func Extend(base *Catalog, file Extension) (*Catalog, error) {
	entries := base.Entries()
	for i, raw := range file.Providers {
		id := normalize(raw.ID)
		if id == "" {
			return nil, fmt.Errorf("provider %d: id is required", i)
		}
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			return nil, fmt.Errorf("provider %s: name is required", id)
		}

		category := models.CategoryOther
		if strings.TrimSpace(raw.Category) != "" {
			parsed, err := models.ParseCategory(raw.Category)
			if err != nil {
				return nil, fmt.Errorf("provider %s: %w", id, err)
			}
			category = parsed
		}

		icon := strings.TrimSpace(raw.DefaultIcon)
		if icon == "" {
			icon = "creditcard.fill"
		}

		entries = append(entries, Entry{
			ID:          id,
			Name:        name,
			LogoURL:     strings.TrimSpace(raw.LogoURL),
			Category:    category,
			DefaultIcon: icon,
		})
	}

	aliases := make(map[string]string, len(base.aliases)+len(file.Aliases))
	for alias, target := range base.aliases {
		aliases[alias] = target
	}
	for alias, target := range file.Aliases {
		aliases[alias] = target
	}

	return New(entries, aliases), nil
}
