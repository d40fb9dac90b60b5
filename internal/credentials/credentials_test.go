package credentials_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdevries/crosslister/internal/credentials"
	domain "github.com/jdevries/crosslister/pkg/types"
)

func TestParse(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"marktplaats": {"username": "jan", "password": "geheim"},
		"Vinted": {"username": "jan", "password": "geheim"},
		"ebay": {"username": "ignored", "password": "ignored"}
	}`)

	set, err := credentials.Parse(data)
	require.NoError(t, err)

	creds, ok := set.For(domain.PlatformMarktplaats)
	require.True(t, ok)
	assert.Equal(t, "jan", creds.Username)
	assert.Equal(t, "geheim", creds.Password)

	// platform keys are matched case-insensitively
	_, ok = set.For(domain.PlatformVinted)
	assert.True(t, ok)

	// unsupported platforms are dropped, not errors
	assert.Len(t, set, 2)
}

func TestParse_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := credentials.Parse([]byte(`not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing credentials JSON")
}

func TestSet_For_IncompleteEntries(t *testing.T) {
	t.Parallel()

	set := credentials.Set{
		domain.PlatformMarktplaats: {Username: "jan"},
		domain.PlatformVinted:      {Password: "geheim"},
	}

	_, ok := set.For(domain.PlatformMarktplaats)
	assert.False(t, ok)
	_, ok = set.For(domain.PlatformVinted)
	assert.False(t, ok)
	_, ok = set.For(domain.PlatformFacebook)
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	content := `{"facebook": {"username": "jan@example.com", "password": "geheim"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	set, err := credentials.Load(path)
	require.NoError(t, err)

	creds, ok := set.For(domain.PlatformFacebook)
	require.True(t, ok)
	assert.Equal(t, "jan@example.com", creds.Username)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := credentials.Load("/nonexistent/credentials.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading credentials file")
}
