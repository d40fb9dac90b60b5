package poster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdevries/crosslister/internal/poster"
	domain "github.com/jdevries/crosslister/pkg/types"
)

func TestNew_AllPlatforms(t *testing.T) {
	t.Parallel()

	creds := domain.Credentials{Username: "jan", Password: "geheim"}
	for _, platform := range domain.Platforms {
		p, err := poster.New(platform, creds, t.TempDir())
		require.NoError(t, err, "platform %s", platform)
		assert.Equal(t, platform, p.Platform())
	}
}

func TestNew_UnknownPlatform(t *testing.T) {
	t.Parallel()

	_, err := poster.New(domain.Platform("ebay"), domain.Credentials{}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no poster registered")
}
