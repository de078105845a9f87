package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourcesForKnownNetwork(t *testing.T) {
	aliases := DefaultSourceAliases()

	assert.ElementsMatch(t, []string{"adwords", "google"}, aliases.SourcesFor("Google Ads"))
	assert.ElementsMatch(t, []string{"adwords", "google"}, aliases.SourcesFor("  GOOGLE ADS  "))
	assert.ElementsMatch(t, []string{"facebook", "fb", "meta"}, aliases.SourcesFor("Meta"))
}

func TestSourcesForUnknownNetworkFallsBackToSelf(t *testing.T) {
	aliases := DefaultSourceAliases()

	assert.Equal(t, []string{"mystery dsp"}, aliases.SourcesFor("Mystery DSP"))
	assert.Nil(t, aliases.SourcesFor("   "))
}

func TestMatchesCaseInsensitive(t *testing.T) {
	aliases := DefaultSourceAliases()

	assert.True(t, aliases.Matches([]string{"Google Ads"}, "AdWords"))
	assert.True(t, aliases.Matches([]string{"google ads"}, "google"))
	assert.True(t, aliases.Matches([]string{"bing", "Google Ads"}, "microsoft"))
	assert.False(t, aliases.Matches([]string{"Google Ads"}, "bing"))
	assert.False(t, aliases.Matches(nil, "adwords"))
	assert.False(t, aliases.Matches([]string{"Google Ads"}, ""))
}

func TestMatchesFallbackNetwork(t *testing.T) {
	aliases := DefaultSourceAliases()

	// Networks missing from the table match their own name only.
	assert.True(t, aliases.Matches([]string{"Mystery DSP"}, "mystery dsp"))
	assert.False(t, aliases.Matches([]string{"Mystery DSP"}, "adwords"))
}
