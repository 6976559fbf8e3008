package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAdvance(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		to       Status
		expected Status
	}{
		{"draft to distributed", StatusDraft, StatusDistributed, StatusDistributed},
		{"draft to sent", StatusDraft, StatusSent, StatusSent},
		{"distributed to sent", StatusDistributed, StatusSent, StatusSent},
		{"sent stays sent on distribute", StatusSent, StatusDistributed, StatusSent},
		{"distributed stays on draft", StatusDistributed, StatusDraft, StatusDistributed},
		{"same status", StatusSent, StatusSent, StatusSent},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.from.Advance(test.to))
		})
	}
}

func TestValidChannel(t *testing.T) {
	assert.True(t, ValidChannel(ChannelEmail))
	assert.True(t, ValidChannel(ChannelLandingPage))
	assert.True(t, ValidChannel(ChannelDocs))
	assert.False(t, ValidChannel("sms"))
	assert.False(t, ValidChannel(""))
}

func TestChannelsHas(t *testing.T) {
	channels := Channels{ChannelEmail, ChannelDocs}

	assert.True(t, channels.Has(ChannelEmail))
	assert.True(t, channels.Has(ChannelDocs))
	assert.False(t, channels.Has(ChannelLandingPage))
	assert.False(t, Channels{}.Has(ChannelEmail))
}
