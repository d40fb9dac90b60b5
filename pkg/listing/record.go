package listing

import (
	"fmt"
	"strings"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// Cell is one named cell of a raw input row.
type Cell struct {
	Key   string
	Value string
}

// RawRow is an ordered raw input row. Order matters: it determines payload
// field order and last-wins semantics for duplicate columns.
type RawRow []Cell

// identifierFields are checked in priority order when deriving a listing
// identifier.
var identifierFields = []string{"id", "sku", "identifier", "title"}

// BuildListing assembles one ListingRecord from a raw row. Cells whose key
// carries a platform prefix ("vinted_price") are routed into that platform's
// override payload with the prefix stripped; the first matching platform in
// iteration order wins. Cells named exactly "images" bypass prefix routing
// and are resolved against the images directory. Empty cell values are
// dropped entirely.
func BuildListing(
	rowIndex int,
	row RawRow,
	imagesDir string,
	platforms []domain.Platform,
) *domain.ListingRecord {
	base := domain.NewPayload()
	overrides := make(map[domain.Platform]*domain.Payload, len(platforms))
	for _, platform := range platforms {
		overrides[platform] = domain.NewPayload()
	}

	var imagesValue string
	var hasImages bool

	for _, cell := range row {
		key := strings.TrimSpace(cell.Key)
		if key == "" {
			continue
		}
		value := strings.TrimSpace(cell.Value)
		if value == "" {
			continue
		}

		keyLower := strings.ToLower(key)
		if keyLower == "images" {
			imagesValue = value
			hasImages = true
			continue
		}

		handled := false
		for _, platform := range platforms {
			prefix := string(platform) + "_"
			if strings.HasPrefix(keyLower, prefix) {
				fieldName := keyLower[len(prefix):]
				overrides[platform].Set(fieldName, CastValue(fieldName, value))
				handled = true
				break
			}
		}
		if handled {
			continue
		}

		base.Set(keyLower, CastValue(keyLower, value))
	}

	if hasImages {
		base.Set("images", ResolveImages(imagesValue, imagesDir))
	}
	NormalizeStructure(base)

	finalOverrides := make(map[domain.Platform]*domain.Payload)
	for platform, payload := range overrides {
		if images, ok := payload.Get("images"); ok {
			payload.Set("images", ResolveImages(images, imagesDir))
		}
		if payload.Len() == 0 {
			continue
		}
		NormalizeStructure(payload)
		finalOverrides[platform] = payload
	}

	identifier := extractIdentifier(base, fmt.Sprintf("listing_%d", rowIndex))
	return &domain.ListingRecord{
		Identifier: identifier,
		Base:       base,
		Overrides:  finalOverrides,
	}
}

// extractIdentifier returns the first non-empty string value among the
// identifier fields, else the positional fallback.
func extractIdentifier(payload *domain.Payload, fallback string) string {
	for _, field := range identifierFields {
		value, ok := payload.Get(field)
		if !ok {
			continue
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return fallback
}
