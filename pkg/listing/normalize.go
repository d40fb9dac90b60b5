package listing

import (
	"strings"

	domain "github.com/jdevries/crosslister/pkg/types"
)

const (
	locationPrefix = "location_"
	shippingPrefix = "shipping_"
)

// NormalizeStructure groups flattened prefixed keys into nested structures,
// in place. location_* and shipping_* columns are folded into the location
// and shipping maps (new keys override same-named existing keys), a lone
// color string becomes a one-element list, and images are re-read through
// the payload accessor so the field is always a string list.
//
// The operation is idempotent and tolerates prefixed keys in any order;
// for duplicate sub-keys the last-processed value wins.
func NormalizeStructure(payload *domain.Payload) {
	locationUpdates := map[string]any{}
	shippingUpdates := map[string]any{}

	for _, key := range payload.Keys() {
		switch {
		case strings.HasPrefix(key, locationPrefix):
			value, _ := payload.Get(key)
			locationUpdates[key[len(locationPrefix):]] = value
			payload.Delete(key)
		case strings.HasPrefix(key, shippingPrefix):
			value, _ := payload.Get(key)
			shippingUpdates[key[len(shippingPrefix):]] = value
			payload.Delete(key)
		}
	}

	if len(locationUpdates) > 0 {
		location := payload.Location()
		for key, value := range locationUpdates {
			location[key] = value
		}
		payload.Set("location", location)
	}

	if len(shippingUpdates) > 0 {
		shipping := payload.Shipping()
		for key, value := range shippingUpdates {
			shipping[key] = value
		}
		payload.Set("shipping", shipping)
	}

	if color, ok := payload.Get("color"); ok {
		if s, isString := color.(string); isString {
			payload.Set("color", []string{s})
		}
	}

	if _, ok := payload.Get("images"); ok {
		payload.Set("images", payload.Images())
	}
}
