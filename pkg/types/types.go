// Package domain defines the core business types for the crosslister.
package domain

import "strings"

// Platform identifies a supported marketplace.
type Platform string

// Platform constants.
const (
	PlatformMarktplaats Platform = "marktplaats"
	PlatformTweedehands Platform = "tweedehands"
	PlatformFacebook    Platform = "facebook"
	PlatformVinted      Platform = "vinted"
)

// Platforms lists every supported platform in registry order. The order is
// also the tie-break order for platform prefix routing of CSV columns.
var Platforms = []Platform{
	PlatformMarktplaats,
	PlatformTweedehands,
	PlatformFacebook,
	PlatformVinted,
}

// ParsePlatform returns the Platform for a name, or false if unsupported.
func ParsePlatform(name string) (Platform, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Platforms {
		if string(p) == name {
			return p, true
		}
	}
	return "", false
}

// ConditionKey is the canonical internal vocabulary term for item condition,
// decoupled from any platform's display wording.
type ConditionKey string

// Condition key constants.
const (
	ConditionNewWithTags    ConditionKey = "nieuw_met_kaartje"
	ConditionNewWithoutTags ConditionKey = "nieuw_zonder_kaartje"
	ConditionVeryGood       ConditionKey = "zeer_goed"
	ConditionGood           ConditionKey = "goed"
	ConditionFair           ConditionKey = "redelijk"
)

// ConditionKeys lists the five canonical condition keys.
var ConditionKeys = []ConditionKey{
	ConditionNewWithTags,
	ConditionNewWithoutTags,
	ConditionVeryGood,
	ConditionGood,
	ConditionFair,
}

// Outcome values recorded per listing and platform. A successful submission
// records the resulting listing URL instead of one of these markers.
const (
	OutcomeMissingCredentials = "MISSING_CREDENTIALS"
	OutcomeError              = "ERROR"
	OutcomeInvalidPrefix      = "INVALID: "
)

// Credentials holds the login secrets for one platform.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ListingRecord is one listing row from the input: an identifier, the shared
// base payload, and platform-specific override payloads.
type ListingRecord struct {
	Identifier string
	Base       *Payload
	Overrides  map[Platform]*Payload
}

// ForPlatform returns the merged payload for one platform: a clone of the
// base with the platform override layered on top, override winning on key
// conflicts. The result is recomputed on every call and owned by the caller.
func (r *ListingRecord) ForPlatform(platform Platform) *Payload {
	payload := r.Base.Clone()
	if override, ok := r.Overrides[platform]; ok {
		payload.Merge(override.Clone())
	}
	return payload
}
