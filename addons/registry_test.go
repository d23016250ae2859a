package addons

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAcceptsAliasesAndCanonicalNames(t *testing.T) {
	resolved, err := Resolve([]string{"CSP", "csp", "CSPRemoverAddon"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CSPRemoverAddon", "CSPRemoverAddon", "CSPRemoverAddon"}, resolved)
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	resolved, err := Resolve([]string{"coep", "Coop", "corsinserterforwebhooksaddon", "preflight"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"COEPRemoverAddon",
		"COOPRemoverAddon",
		"CORSInserterForWebhooksAddon",
		"CORSPreflightForWebhooksAddon",
	}, resolved)
}

func TestResolveEmptyInput(t *testing.T) {
	resolved, err := Resolve(nil)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestResolveSuggestsOnTypo(t *testing.T) {
	_, err := Resolve([]string{"CSQ"})
	require.Error(t, err)

	var unknown *UnknownIdentifierError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "CSQ", unknown.Name)
	assert.Equal(t, "CSP", unknown.Suggestion)
	assert.Contains(t, err.Error(), "did you mean CSP?")
}

func TestResolveEnumeratesAliasesWithoutCloseMatch(t *testing.T) {
	_, err := Resolve([]string{"no-such-addon"})
	require.Error(t, err)

	var unknown *UnknownIdentifierError
	require.True(t, errors.As(err, &unknown))
	assert.Empty(t, unknown.Suggestion)
	for _, alias := range Aliases() {
		assert.Contains(t, err.Error(), alias)
	}
}

func TestResolveFailsOnFirstUnknown(t *testing.T) {
	_, err := Resolve([]string{"CSP", "bogus", "also-bogus"})
	require.Error(t, err)

	var unknown *UnknownIdentifierError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "bogus", unknown.Name)
}

func TestRegistryIdentifiers(t *testing.T) {
	assert.Equal(t, []string{"CSP", "COEP", "COOP", "CORP", "CORS", "PREFLIGHT"}, Aliases())
	assert.Equal(t, []string{
		"CSPRemoverAddon",
		"COEPRemoverAddon",
		"COOPRemoverAddon",
		"CORPInserterAddon",
		"CORSInserterForWebhooksAddon",
		"CORSPreflightForWebhooksAddon",
	}, CanonicalNames())
}

func TestSimilarityRatio(t *testing.T) {
	assert.Equal(t, 1.0, similarity("CSP", "CSP"))
	assert.InDelta(t, 2.0/3.0, similarity("CSQ", "CSP"), 1e-9)
	assert.Less(t, similarity("ZZZZZZ", "CSP"), suggestionThreshold)
}
