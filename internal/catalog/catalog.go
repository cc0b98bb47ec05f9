package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"example.com/subscription-reaper/backend/internal/models"
)

// MaxResults bounds every Lookup result.
const MaxResults = 8

// Entry is a known subscription provider.
type Entry struct {
	ID          string          `json:"id" toml:"id"`
	Name        string          `json:"name" toml:"name"`
	LogoURL     string          `json:"logo_url" toml:"logo_url"`
	Category    models.Category `json:"category" toml:"category"`
	DefaultIcon string          `json:"default_icon" toml:"default_icon"`
}

// Catalog is an immutable provider table with an alias index.
type Catalog struct {
	entries map[string]Entry
	order   []string
	names   map[string]string
	aliases map[string]string
}

// New builds a catalog from entries and aliases. Later entries replace earlier ones with the same id.
func New(entries []Entry, aliases map[string]string) *Catalog {
	c := &Catalog{
		entries: make(map[string]Entry, len(entries)),
		names:   make(map[string]string, len(entries)),
		aliases: make(map[string]string, len(aliases)),
	}

	for _, entry := range entries {
		id := normalize(entry.ID)
		if id == "" {
			continue
		}
		entry.ID = id
		c.entries[id] = entry
		c.names[id] = strings.ToLower(entry.Name)
	}

	for alias, target := range aliases {
		key := normalize(alias)
		if key == "" {
			continue
		}
		c.aliases[key] = normalize(target)
	}

	c.order = make([]string, 0, len(c.entries))
	for id := range c.entries {
		c.order = append(c.order, id)
	}
	sort.Strings(c.order)

	return c
}

// Default returns the built-in provider table.
func Default() *Catalog {
	return New(builtinEntries(), builtinAliases())
}

// Len returns the number of providers.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Entries returns every provider ordered by id.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// GetByID returns the provider with the given id.
func (c *Catalog) GetByID(id string) (Entry, bool) {
	entry, ok := c.entries[normalize(id)]
	return entry, ok
}

// Resolve maps an alias to its canonical id. Unknown input is returned normalized.
func (c *Catalog) Resolve(query string) string {
	normalized := normalize(query)
	if target, ok := c.aliases[normalized]; ok {
		return target
	}
	return normalized
}

// Lookup returns up to MaxResults providers matching query.
// An exact id match comes first, followed by id or name substring matches in id order.
func (c *Catalog) Lookup(query string) []Entry {
	if normalize(query) == "" {
		return []Entry{}
	}

	resolved := c.Resolve(query)
	matches := make([]Entry, 0, MaxResults)

	if exact, ok := c.entries[resolved]; ok {
		matches = append(matches, exact)
	}

	for _, id := range c.order {
		if len(matches) >= MaxResults {
			break
		}
		if id == resolved {
			continue
		}
		if strings.Contains(id, resolved) || strings.Contains(c.names[id], resolved) {
			matches = append(matches, c.entries[id])
		}
	}

	return matches
}

// Suggest returns up to limit provider ids closest to query by edit distance.
func (c *Catalog) Suggest(query string, limit int) []string {
	resolved := c.Resolve(query)
	if resolved == "" || limit <= 0 {
		return []string{}
	}

	type candidate struct {
		id       string
		distance int
	}

	maxDistance := len(resolved) / 2
	if maxDistance < 1 {
		maxDistance = 1
	}

	candidates := make([]candidate, 0)
	for _, id := range c.order {
		distance := levenshtein.ComputeDistance(resolved, id)
		if byName := levenshtein.ComputeDistance(resolved, c.names[id]); byName < distance {
			distance = byName
		}
		if distance <= maxDistance {
			candidates = append(candidates, candidate{id: id, distance: distance})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	out := make([]string, 0, limit)
	for _, cand := range candidates {
		if len(out) == limit {
			break
		}
		out = append(out, cand.id)
	}
	return out
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
