// Package rules holds the static business rules for listing validation:
// condition vocabulary, per-platform display wording, postcode formats,
// currency, image caps, and the category map. All tables are process-wide
// and read-only after load.
package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// Field limits shared by every platform.
const (
	TitleMaxLength       = 80
	DescriptionMinLength = 10
	MaxColors            = 3
)

// ValidCurrency is the single accepted currency, matched case-insensitively.
const ValidCurrency = "eur"

// MaxImages caps the number of photos per platform.
var MaxImages = map[domain.Platform]int{
	domain.PlatformFacebook:    10,
	domain.PlatformVinted:      20,
	domain.PlatformMarktplaats: 24,
	domain.PlatformTweedehands: 24,
}

// Postcode formats per country code.
var (
	nlPostcodeRe = regexp.MustCompile(`^[1-9][0-9]{3}[A-Z]{2}$`)
	bePostcodeRe = regexp.MustCompile(`^[1-9][0-9]{3}$`)
)

// conditionVocabulary maps normalized raw condition spellings to canonical
// condition keys. Raw values are lowercased and have spaces and hyphens
// collapsed to underscores before lookup.
var conditionVocabulary = map[string]domain.ConditionKey{
	"nieuw_met_kaartje":    domain.ConditionNewWithTags,
	"nieuw_met_label":      domain.ConditionNewWithTags,
	"nieuw_met_tags":       domain.ConditionNewWithTags,
	"nieuw_met_tag":        domain.ConditionNewWithTags,
	"nieuw_met_prijskaart": domain.ConditionNewWithTags,
	"nieuw_met_labeltje":   domain.ConditionNewWithTags,
	"nieuw":                domain.ConditionNewWithoutTags,
	"nieuw_zonder_kaartje": domain.ConditionNewWithoutTags,
	"nieuw_zonder_label":   domain.ConditionNewWithoutTags,
	"nieuw_zonder_tags":    domain.ConditionNewWithoutTags,
	"zeer_goed":            domain.ConditionVeryGood,
	"zo_goed_als_nieuw":    domain.ConditionVeryGood,
	"als_nieuw":            domain.ConditionVeryGood,
	"used_like_new":        domain.ConditionVeryGood,
	"used - like new":      domain.ConditionVeryGood,
	"used_like-new":        domain.ConditionVeryGood,
	"goed":                 domain.ConditionGood,
	"used_good":            domain.ConditionGood,
	"used - good":          domain.ConditionGood,
	"redelijk":             domain.ConditionFair,
	"satisfactory":         domain.ConditionFair,
}

// conditionPlatformMap maps canonical condition keys to the display string
// each platform expects in its condition selector.
var conditionPlatformMap = map[domain.ConditionKey]map[domain.Platform]string{
	domain.ConditionNewWithTags: {
		domain.PlatformVinted:      "Nieuw met kaartje",
		domain.PlatformTweedehands: "Nieuw",
		domain.PlatformMarktplaats: "Nieuw",
		domain.PlatformFacebook:    "New",
	},
	domain.ConditionNewWithoutTags: {
		domain.PlatformVinted:      "Nieuw zonder kaartje",
		domain.PlatformTweedehands: "Nieuw",
		domain.PlatformMarktplaats: "Nieuw",
		domain.PlatformFacebook:    "New",
	},
	domain.ConditionVeryGood: {
		domain.PlatformVinted:      "Zeer goed",
		domain.PlatformTweedehands: "Zo goed als nieuw",
		domain.PlatformMarktplaats: "Zo goed als nieuw",
		domain.PlatformFacebook:    "Used - Like New",
	},
	domain.ConditionGood: {
		domain.PlatformVinted:      "Goed",
		domain.PlatformTweedehands: "Goed",
		domain.PlatformMarktplaats: "Gebruikt",
		domain.PlatformFacebook:    "Used - Good",
	},
	domain.ConditionFair: {
		domain.PlatformVinted:      "Redelijk",
		domain.PlatformTweedehands: "Redelijk",
		domain.PlatformMarktplaats: "Gebruikt",
		domain.PlatformFacebook:    "Used - Fair",
	},
}

// NormalizeConditionKey maps a raw condition string to its canonical key.
// Matching is case-insensitive and tolerant of spaces and hyphens.
func NormalizeConditionKey(raw string) (domain.ConditionKey, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("listing is missing a condition value")
	}
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	if canonical, ok := conditionVocabulary[key]; ok {
		return canonical, nil
	}
	if _, ok := conditionPlatformMap[domain.ConditionKey(key)]; ok {
		return domain.ConditionKey(key), nil
	}
	return "", fmt.Errorf("unknown condition %q", raw)
}

// ConditionForPlatform maps a canonical condition key to the display string
// for one platform. Every built-in key has a value for every built-in
// platform; a miss here means the tables are incomplete.
func ConditionForPlatform(key domain.ConditionKey, platform domain.Platform) (string, error) {
	values, ok := conditionPlatformMap[key]
	if !ok {
		return "", fmt.Errorf("no mapping defined for condition %q", key)
	}
	display, ok := values[platform]
	if !ok {
		return "", fmt.Errorf("condition %q has no value for platform %q", key, platform)
	}
	return display, nil
}

// ValidatePostcode checks a postcode against the country-specific format.
// NL postcodes are matched uppercased (4 digits, first 1-9, then 2 letters);
// BE postcodes are 4 digits starting 1-9. Other countries are unsupported.
func ValidatePostcode(country, postcode string) error {
	switch strings.ToUpper(country) {
	case "NL":
		if !nlPostcodeRe.MatchString(strings.ToUpper(postcode)) {
			return fmt.Errorf("invalid Dutch postcode %q", postcode)
		}
		return nil
	case "BE":
		if !bePostcodeRe.MatchString(postcode) {
			return fmt.Errorf("invalid Belgian postcode %q", postcode)
		}
		return nil
	default:
		return fmt.Errorf("unsupported country for postcode validation: %s", strings.ToUpper(country))
	}
}

// EnsureCurrency validates a raw currency value and returns the canonical
// spelling "EUR".
func EnsureCurrency(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("currency missing; use EUR")
	}
	if strings.ToLower(strings.TrimSpace(raw)) != ValidCurrency {
		return "", fmt.Errorf("currency %q is not supported; use EUR", raw)
	}
	return "EUR", nil
}

// EnforceImageLimit truncates the image list to the platform maximum,
// keeping the first N in order. Truncation is a warning condition for the
// caller to log, signalled by the second return value.
func EnforceImageLimit(images []string, platform domain.Platform) ([]string, bool) {
	maximum, ok := MaxImages[platform]
	if !ok || len(images) <= maximum {
		return images, false
	}
	return images[:maximum], true
}

// LimitColors keeps the first three unique trimmed non-empty colors,
// preserving first-seen order. Distinctness is case-sensitive.
func LimitColors(colors []string) []string {
	unique := make([]string, 0, MaxColors)
	for _, color := range colors {
		trimmed := strings.TrimSpace(color)
		if trimmed == "" || slices.Contains(unique, trimmed) {
			continue
		}
		unique = append(unique, trimmed)
		if len(unique) == MaxColors {
			break
		}
	}
	return unique
}
