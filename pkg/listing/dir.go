package listing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	domain "github.com/jdevries/crosslister/pkg/types"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ParseDirectory builds a payload from a listing directory containing an
// info.txt (title on line one, price on line two, description on the rest)
// and image files alongside it.
func ParseDirectory(dir string) (*domain.Payload, error) {
	infoPath := filepath.Join(dir, "info.txt")
	data, err := os.ReadFile(infoPath) //nolint:gosec // listing dir from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading info.txt in %s: %w", dir, err)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 3 {
		return nil, fmt.Errorf("info.txt requires at least three lines (title, price, description)")
	}

	title := strings.TrimSpace(lines[0])
	price, err := strconv.ParseFloat(strings.TrimSpace(lines[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("parsing price from info.txt: %w", err)
	}

	descLines := make([]string, 0, len(lines)-2)
	for _, line := range lines[2:] {
		descLines = append(descLines, strings.TrimSpace(line))
	}
	description := strings.TrimSpace(strings.Join(descLines, "\n"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing directory %s: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)

	payload := domain.NewPayload()
	payload.Set("title", title)
	payload.Set("price", price)
	payload.Set("description", description)
	payload.Set("images", images)
	return payload, nil
}

// LoadDirectory wraps ParseDirectory into a single ListingRecord with no
// platform overrides. The directory name serves as the identifier.
func LoadDirectory(dir string) (*domain.ListingRecord, error) {
	payload, err := ParseDirectory(dir)
	if err != nil {
		return nil, err
	}
	return &domain.ListingRecord{
		Identifier: filepath.Base(filepath.Clean(dir)),
		Base:       payload,
		Overrides:  map[domain.Platform]*domain.Payload{},
	}, nil
}
