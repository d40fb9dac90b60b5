// Package prepare validates and transforms merged listing payloads into
// platform-conformant payloads ready to submit. Preparation is pure: it
// works on a clone of the input, touches no shared state, and given the
// same payload, platform, and category map always yields the same result.
package prepare

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jdevries/crosslister/pkg/rules"
	domain "github.com/jdevries/crosslister/pkg/types"
)

const facebookTitleMax = 100

// ValidationError marks a payload as illegal for one platform. The reason is
// human-readable and ends up in the results summary as "INVALID: <reason>".
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ForPlatform validates a merged payload for one platform and returns the
// prepared payload. Checks run in a fixed order and the first failure wins;
// the caller's payload is never mutated.
func ForPlatform(
	payload *domain.Payload,
	platform domain.Platform,
	categories *rules.CategoryMap,
) (*domain.Payload, error) {
	prepared := payload.Clone()

	if err := prepareTitle(prepared); err != nil {
		return nil, err
	}
	if err := prepareDescription(prepared); err != nil {
		return nil, err
	}
	if err := preparePrice(prepared); err != nil {
		return nil, err
	}
	if err := prepareCurrency(prepared); err != nil {
		return nil, err
	}
	if err := prepareQuantity(prepared); err != nil {
		return nil, err
	}
	prepareColors(prepared)
	if err := prepareCondition(prepared, platform); err != nil {
		return nil, err
	}
	if err := prepareLocation(prepared); err != nil {
		return nil, err
	}
	if err := prepareCategory(prepared, platform, categories); err != nil {
		return nil, err
	}
	if err := prepareImages(prepared, platform); err != nil {
		return nil, err
	}
	prepareShipping(prepared)
	if err := applyPlatformRules(prepared, platform); err != nil {
		return nil, err
	}

	return prepared, nil
}

func prepareTitle(prepared *domain.Payload) error {
	title := strings.TrimSpace(prepared.GetString("title"))
	if title == "" {
		return invalid("title missing")
	}
	if utf8.RuneCountInString(title) > rules.TitleMaxLength {
		slog.Warn("title exceeds maximum length; truncating",
			"max", rules.TitleMaxLength,
		)
		title = truncate(title, rules.TitleMaxLength)
	}
	prepared.Set("title", title)
	return nil
}

func prepareDescription(prepared *domain.Payload) error {
	description := strings.TrimSpace(prepared.GetString("description"))
	if utf8.RuneCountInString(description) < rules.DescriptionMinLength {
		return invalid("description too short; add more detail")
	}
	prepared.Set("description", description)
	return nil
}

func preparePrice(prepared *domain.Payload) error {
	value, ok := prepared.Get("price")
	if !ok {
		value = 0.0
	}
	price, ok := toFloat(value)
	if !ok {
		return invalid("price could not be converted to a number")
	}
	if price <= 0 {
		return invalid("price must be greater than zero")
	}
	prepared.Set("price", roundCents(price))
	return nil
}

func prepareCurrency(prepared *domain.Payload) error {
	raw := prepared.GetString("currency")
	if raw == "" {
		raw = "EUR"
	}
	currency, err := rules.EnsureCurrency(raw)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	prepared.Set("currency", currency)
	return nil
}

func prepareQuantity(prepared *domain.Payload) error {
	value, ok := prepared.Get("quantity")
	if !ok {
		value = 1
	}
	quantity, ok := toInt(value)
	if !ok {
		return invalid("quantity must be a whole number")
	}
	if quantity < 1 {
		return invalid("quantity must be at least 1")
	}
	prepared.Set("quantity", quantity)
	return nil
}

func prepareColors(prepared *domain.Payload) {
	value, ok := prepared.Get("color")
	if !ok {
		return
	}
	var colors []string
	switch v := value.(type) {
	case string:
		colors = []string{v}
	case []string:
		colors = v
	case []any:
		for _, item := range v {
			colors = append(colors, fmt.Sprint(item))
		}
	default:
		return
	}
	prepared.Set("color", rules.LimitColors(colors))
}

func prepareCondition(prepared *domain.Payload, platform domain.Platform) error {
	key, err := rules.NormalizeConditionKey(prepared.GetString("condition"))
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	display, err := rules.ConditionForPlatform(key, platform)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	prepared.Set("condition_key", string(key))
	prepared.Set("condition", display)
	return nil
}

func prepareLocation(prepared *domain.Payload) error {
	location := prepared.Location()
	if len(location) == 0 {
		return invalid("location details missing")
	}

	country := strings.ToUpper(strings.TrimSpace(stringAt(location, "country")))
	postcode := strings.TrimSpace(stringAt(location, "postcode"))
	city := strings.TrimSpace(stringAt(location, "city"))
	if country == "" || postcode == "" || city == "" {
		return invalid("location must include country, postcode and city")
	}

	if err := rules.ValidatePostcode(country, postcode); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	if country == "NL" {
		postcode = strings.ToUpper(postcode)
	}
	prepared.Set("postal_code", postcode)
	prepared.SetDefault("location_display", FormatLocationDisplay(location))
	return nil
}

func prepareCategory(
	prepared *domain.Payload,
	platform domain.Platform,
	categories *rules.CategoryMap,
) error {
	if prepared.GetString("category") != "" {
		return nil
	}
	hint := prepared.GetString("category_hint")
	category := categories.Resolve(hint, platform)
	if category == "" {
		return invalid("no category mapping found for hint '%s' on %s", hint, platform)
	}
	prepared.Set("category", category)
	return nil
}

func prepareImages(prepared *domain.Payload, platform domain.Platform) error {
	images := make([]string, 0, len(prepared.Images()))
	for _, path := range prepared.Images() {
		if path != "" {
			images = append(images, path)
		}
	}
	if len(images) == 0 {
		return invalid("at least one photo required")
	}

	limited, truncated := rules.EnforceImageLimit(images, platform)
	if truncated {
		slog.Warn("too many photos; keeping the first allowed",
			"platform", platform,
			"supplied", len(images),
			"kept", len(limited),
		)
	}
	prepared.Set("images", limited)
	return nil
}

func prepareShipping(prepared *domain.Payload) {
	shipping := prepared.Shipping()

	var carriers []string
	switch v := shipping["carriers"].(type) {
	case string:
		carriers = []string{v}
	case []string:
		carriers = v
	case []any:
		for _, item := range v {
			carriers = append(carriers, fmt.Sprint(item))
		}
	}
	kept := make([]string, 0, len(carriers))
	for _, carrier := range carriers {
		if carrier != "" {
			kept = append(kept, carrier)
		}
	}

	prepared.Set("shipping", map[string]any{
		"pickup":              truthy(shipping["pickup"], true),
		"buyer_pays_shipping": truthy(shipping["buyer_pays_shipping"], true),
		"carriers":            kept,
	})
}

func applyPlatformRules(prepared *domain.Payload, platform domain.Platform) error {
	switch platform {
	case domain.PlatformVinted:
		if prepared.GetString("brand") == "" {
			return invalid("vinted requires a brand value")
		}
		if prepared.GetString("size") == "" {
			return invalid("vinted requires a size value")
		}
	case domain.PlatformFacebook:
		// Facebook's own cap is 100 characters. Unreachable while the
		// general cap is 80, but kept as a second pass.
		title := prepared.GetString("title")
		if utf8.RuneCountInString(title) > facebookTitleMax {
			prepared.Set("title", truncate(title, facebookTitleMax))
		}
	}
	return nil
}

// FormatLocationDisplay derives a human-readable "city, region, country"
// string. Empty parts are omitted and the country only appears when it
// differs from both city and region; if city and region are both empty the
// display is just the country.
func FormatLocationDisplay(location map[string]any) string {
	city := strings.TrimSpace(stringAt(location, "city"))
	region := strings.TrimSpace(stringAt(location, "region"))
	country := strings.TrimSpace(stringAt(location, "country"))

	parts := make([]string, 0, 3)
	for _, part := range []string{city, region} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if country != "" && !slices.Contains(parts, country) {
		parts = append(parts, country)
	}
	if len(parts) == 0 {
		return country
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) > maxRunes {
		s = string(runes[:maxRunes])
	}
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func roundCents(v float64) float64 {
	cents, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return cents
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		return parsed, err == nil
	default:
		return 0, false
	}
}

// truthy interprets a loosely-typed flag value; absent values take the
// given default.
func truthy(v any, absent bool) bool {
	switch b := v.(type) {
	case nil:
		return absent
	case bool:
		return b
	case string:
		return b != ""
	case int:
		return b != 0
	case float64:
		return b != 0
	default:
		return true
	}
}

func stringAt(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
