package rules_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdevries/crosslister/pkg/rules"
	domain "github.com/jdevries/crosslister/pkg/types"
)

const categoryMapJSON = `{
	"shoes": {
		"marktplaats": "Kleding | Schoenen",
		"vinted": "Schoenen",
		"keywords": ["sneakers", "footwear"]
	},
	"furniture": {
		"marktplaats": "Huis en Inrichting",
		"tweedehands": "Meubels",
		"keywords": ["chair", "table", "sneakers"]
	},
	"books": {
		"facebook": "Books"
	}
}`

func mustParse(t *testing.T, doc string) *rules.CategoryMap {
	t.Helper()
	cm, err := rules.ParseCategoryMap(strings.NewReader(doc))
	require.NoError(t, err)
	return cm
}

func TestCategoryMap_DirectLookup(t *testing.T) {
	t.Parallel()
	cm := mustParse(t, categoryMapJSON)

	assert.Equal(t, "Kleding | Schoenen", cm.Resolve("shoes", domain.PlatformMarktplaats))
	assert.Equal(t, "Schoenen", cm.Resolve("shoes", domain.PlatformVinted))
	// hint lookup is case-insensitive and trims
	assert.Equal(t, "Schoenen", cm.Resolve("  SHOES ", domain.PlatformVinted))
}

func TestCategoryMap_KeywordFallback(t *testing.T) {
	t.Parallel()
	cm := mustParse(t, categoryMapJSON)

	assert.Equal(t, "Schoenen", cm.Resolve("footwear", domain.PlatformVinted))
	assert.Equal(t, "Meubels", cm.Resolve("chair", domain.PlatformTweedehands))
}

// "sneakers" is a keyword of both shoes and furniture; the first entry in
// table order wins.
func TestCategoryMap_KeywordCollisionFirstEntryWins(t *testing.T) {
	t.Parallel()
	cm := mustParse(t, categoryMapJSON)

	assert.Equal(t, "Kleding | Schoenen", cm.Resolve("sneakers", domain.PlatformMarktplaats))
}

// A direct hit without a category for the requested platform falls back to
// the keyword scan, which may resolve through a different entry.
func TestCategoryMap_DirectMissFallsThroughToKeywords(t *testing.T) {
	t.Parallel()
	cm := mustParse(t, categoryMapJSON)

	// shoes has no tweedehands category; the furniture entry has the
	// sneakers keyword too and does map tweedehands.
	assert.Equal(t, "Meubels", cm.Resolve("sneakers", domain.PlatformTweedehands))
}

func TestCategoryMap_NoMatch(t *testing.T) {
	t.Parallel()
	cm := mustParse(t, categoryMapJSON)

	assert.Empty(t, cm.Resolve("electronics", domain.PlatformMarktplaats))
	assert.Empty(t, cm.Resolve("", domain.PlatformMarktplaats))
	assert.Empty(t, cm.Resolve("   ", domain.PlatformMarktplaats))
	// matching entry but no category for the platform
	assert.Empty(t, cm.Resolve("books", domain.PlatformVinted))
}

func TestParseCategoryMap_Errors(t *testing.T) {
	t.Parallel()

	_, err := rules.ParseCategoryMap(strings.NewReader(`["not","an","object"]`))
	require.Error(t, err)

	_, err = rules.ParseCategoryMap(strings.NewReader(`{"shoes": {"keywords": "not-a-list"}}`))
	require.Error(t, err)

	_, err = rules.ParseCategoryMap(strings.NewReader(`{"shoes": {"marktplaats": 42}}`))
	require.Error(t, err)
}

func TestParseCategoryMap_LowercasesHints(t *testing.T) {
	t.Parallel()

	cm := mustParse(t, `{"Shoes": {"vinted": "Schoenen"}}`)
	assert.Equal(t, 1, cm.Len())
	assert.Equal(t, "Schoenen", cm.Resolve("shoes", domain.PlatformVinted))
}
