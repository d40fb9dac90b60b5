// Package credentials loads per-platform login credentials from a JSON file.
// The file maps platform names to username/password pairs; unknown platform
// keys are ignored so one file can serve multiple deployments.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// Set holds the credentials for every configured platform.
type Set map[domain.Platform]domain.Credentials

// For returns the credentials for a platform and whether they are present
// and complete. Entries with an empty username or password count as absent.
func (s Set) For(platform domain.Platform) (domain.Credentials, bool) {
	creds, ok := s[platform]
	if !ok || creds.Username == "" || creds.Password == "" {
		return domain.Credentials{}, false
	}
	return creds, true
}

// Load reads a credentials JSON file of the form
//
//	{"marktplaats": {"username": "...", "password": "..."}}
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path) //nolint:gosec // credentials path from trusted config
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	return Parse(data)
}

// Parse decodes credentials JSON. Platform names are matched
// case-insensitively; entries for unsupported platforms are skipped.
func Parse(data []byte) (Set, error) {
	var raw map[string]domain.Credentials
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing credentials JSON: %w", err)
	}

	set := make(Set, len(raw))
	for name, creds := range raw {
		platform, ok := domain.ParsePlatform(name)
		if !ok {
			continue
		}
		set[platform] = creds
	}
	return set, nil
}
