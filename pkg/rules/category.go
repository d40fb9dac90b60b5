package rules

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// CategoryEntry maps one category hint to per-platform category names, plus
// optional keyword synonyms that also resolve to this entry.
type CategoryEntry struct {
	Hint      string
	Platforms map[domain.Platform]string
	Keywords  []string
}

// CategoryMap resolves free-text category hints to platform-specific
// category names. Entries keep the order of the source file: the keyword
// fallback scans entries in that order and the first match wins. Loaded once
// at startup and read-only afterward.
type CategoryMap struct {
	entries []CategoryEntry
	byHint  map[string]int
}

// LoadCategoryMap reads a category map from a JSON file. The file is an
// object keyed by lowercase hint; each value maps platform names to category
// strings and may carry a "keywords" list of synonyms.
func LoadCategoryMap(path string) (*CategoryMap, error) {
	file, err := os.Open(path) //nolint:gosec // category map path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("opening category map: %w", err)
	}
	defer file.Close()

	cm, err := ParseCategoryMap(file)
	if err != nil {
		return nil, fmt.Errorf("parsing category map %s: %w", path, err)
	}
	return cm, nil
}

// ParseCategoryMap decodes a category map from JSON, preserving the entry
// order of the document. encoding/json maps would randomize iteration
// order, so the top-level object is walked token by token.
func ParseCategoryMap(r io.Reader) (*CategoryMap, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("category map must be a JSON object")
	}

	cm := &CategoryMap{byHint: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		hint, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}

		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("entry %q: %w", hint, err)
		}

		entry, err := buildEntry(strings.ToLower(hint), raw)
		if err != nil {
			return nil, err
		}
		if _, dup := cm.byHint[entry.Hint]; !dup {
			cm.byHint[entry.Hint] = len(cm.entries)
		}
		cm.entries = append(cm.entries, entry)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return cm, nil
}

func buildEntry(hint string, raw map[string]any) (CategoryEntry, error) {
	entry := CategoryEntry{Hint: hint, Platforms: make(map[domain.Platform]string)}
	for key, value := range raw {
		if key == "keywords" {
			list, ok := value.([]any)
			if !ok {
				return entry, fmt.Errorf("entry %q: keywords must be a list", hint)
			}
			for _, item := range list {
				kw, ok := item.(string)
				if !ok {
					return entry, fmt.Errorf("entry %q: keyword %v is not a string", hint, item)
				}
				entry.Keywords = append(entry.Keywords, kw)
			}
			continue
		}
		category, ok := value.(string)
		if !ok {
			return entry, fmt.Errorf("entry %q: category for %q is not a string", hint, key)
		}
		entry.Platforms[domain.Platform(key)] = category
	}
	return entry, nil
}

// Len returns the number of entries.
func (m *CategoryMap) Len() int {
	return len(m.entries)
}

// Resolve maps a category hint to the category name for one platform.
// Resolution is two-tier exact matching: a direct hint lookup first, then a
// scan of every entry's keyword synonyms in table order. Returns "" when
// nothing matches; the caller turns that into a validation failure.
func (m *CategoryMap) Resolve(hint string, platform domain.Platform) string {
	hintKey := strings.TrimSpace(strings.ToLower(hint))
	if hintKey == "" {
		return ""
	}

	if idx, ok := m.byHint[hintKey]; ok {
		if category, ok := m.entries[idx].Platforms[platform]; ok && category != "" {
			return category
		}
	}

	for _, entry := range m.entries {
		for _, keyword := range entry.Keywords {
			if strings.TrimSpace(strings.ToLower(keyword)) != hintKey {
				continue
			}
			if category, ok := entry.Platforms[platform]; ok && category != "" {
				return category
			}
		}
	}
	return ""
}
