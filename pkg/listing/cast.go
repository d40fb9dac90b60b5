// Package listing turns raw spreadsheet rows into structured listing
// records: typed value casting, image path resolution, structural grouping
// of flattened columns, and assembly of base plus per-platform override
// payloads.
package listing

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Field sets that drive typed casting. Any field not listed passes through
// as a string.
var (
	floatFields = map[string]bool{
		"price":          true,
		"original_price": true,
	}

	intFields = map[string]bool{
		"quantity": true,
	}

	boolFields = map[string]bool{
		"shipping_pickup":              true,
		"shipping_buyer_pays_shipping": true,
		"allow_bids":                   true,
		"allow_offers":                 true,
	}

	listFields = map[string]bool{
		"color":             true,
		"shipping_carriers": true,
		"tags":              true,
	}
)

var listSeparator = regexp.MustCompile(`[|;,]`)

var truthyValues = map[string]bool{
	"1":    true,
	"true": true,
	"yes":  true,
	"y":    true,
	"ja":   true,
}

// CastValue converts a raw cell value into a typed value based on the field
// name. A value that cannot be coerced is logged and returned unchanged as a
// string; downstream validation treats the type mismatch as a hard failure.
//
// Float parsing only swaps the comma decimal separator for a dot. Thousands
// separators are not stripped, so "1.234,56" fails to parse and passes
// through raw.
func CastValue(field, value string) any {
	field = strings.ToLower(field)

	switch {
	case floatFields[field]:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
		if err != nil {
			slog.Warn("unable to cast value to float", "field", field, "value", value)
			return value
		}
		return parsed

	case intFields[field]:
		parsed, err := strconv.Atoi(value)
		if err != nil {
			slog.Warn("unable to cast value to int", "field", field, "value", value)
			return value
		}
		return parsed

	case boolFields[field]:
		return truthyValues[strings.ToLower(strings.TrimSpace(value))]

	case listFields[field]:
		return splitList(value)

	default:
		return value
	}
}

// splitList breaks a raw cell on the list separators, trimming segments and
// dropping empty ones.
func splitList(value string) []string {
	segments := listSeparator.Split(value, -1)
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		trimmed := strings.TrimSpace(segment)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ResolveImages turns a raw images value into a list of image paths.
// Absolute segments are kept as-is; relative segments are resolved against
// the images directory. Already-listified values pass through untouched.
func ResolveImages(value any, imagesDir string) []string {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		resolved := []string{}
		for _, name := range splitList(v) {
			if filepath.IsAbs(name) {
				resolved = append(resolved, filepath.Clean(name))
				continue
			}
			joined := filepath.Join(imagesDir, name)
			if abs, err := filepath.Abs(joined); err == nil {
				joined = abs
			}
			resolved = append(resolved, joined)
		}
		return resolved
	default:
		return []string{}
	}
}
