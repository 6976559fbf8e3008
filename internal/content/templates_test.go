package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogParses(t *testing.T) {
	catalog := DefaultCatalog()
	require.NotNil(t, catalog)

	// Every shipped template must be complete
	assert.NotEmpty(t, catalog.Default.Subject)
	assert.NotEmpty(t, catalog.Default.Body)
	for tone, tpl := range catalog.Tones {
		assert.NotEmpty(t, tpl.Subject, "tone %s", tone)
		assert.NotEmpty(t, tpl.Body, "tone %s", tone)
	}
}

func TestFallback_SubstitutesCampaignName(t *testing.T) {
	catalog := DefaultCatalog()

	got := catalog.Fallback("Summer Launch", "")
	assert.Contains(t, got.Subject, "Summer Launch")
	assert.NotContains(t, got.Body, "{campaign}")
}

func TestFallback_UnknownToneUsesDefault(t *testing.T) {
	catalog := DefaultCatalog()

	fromUnknown := catalog.Fallback("Summer Launch", "sarcastic")
	fromDefault := catalog.Fallback("Summer Launch", "")
	assert.Equal(t, fromDefault, fromUnknown)
}

func TestFallback_ToneIsCaseInsensitive(t *testing.T) {
	catalog := DefaultCatalog()
	require.Contains(t, catalog.Tones, "urgent")

	upper := catalog.Fallback("Summer Launch", "URGENT")
	lower := catalog.Fallback("Summer Launch", "urgent")
	assert.Equal(t, lower, upper)
}

func TestLoadCatalog_RejectsMalformedYAML(t *testing.T) {
	_, err := LoadCatalog([]byte("default: [not a map"))
	assert.Error(t, err)
}
