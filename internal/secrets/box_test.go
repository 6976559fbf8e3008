package secrets

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "5f2d8c4b1a9e7d6c3b5a8f2e1d4c7b6a9e8d7c6b5a4f3e2d1c0b9a8f7e6d5c4b"

func TestNewBox(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		box, err := NewBox(testKey)
		require.NoError(t, err)
		assert.NotNil(t, box)
	})

	t.Run("invalid hex", func(t *testing.T) {
		_, err := NewBox("not-hex")
		assert.Error(t, err)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := NewBox(hex.EncodeToString([]byte("short")))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "32 bytes")
	})
}

func TestBox_Roundtrip(t *testing.T) {
	box, err := NewBox(testKey)
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "api key", plaintext: "sk-abcdef0123456789"},
		{name: "empty string", plaintext: ""},
		{name: "unicode", plaintext: "tök-πρ-秘密"},
		{name: "long secret", plaintext: strings.Repeat("x", 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := box.Seal(tt.plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, tt.plaintext, sealed)

			opened, err := box.Open(sealed)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, opened)
		})
	}
}

func TestBox_Open_Tampered(t *testing.T) {
	box, err := NewBox(testKey)
	require.NoError(t, err)

	sealed, err := box.Seal("secret-value")
	require.NoError(t, err)

	// Flip a character in the encoded payload
	tampered := []byte(sealed)
	if tampered[10] == 'A' {
		tampered[10] = 'B'
	} else {
		tampered[10] = 'A'
	}

	_, err = box.Open(string(tampered))
	assert.Error(t, err)
}

func TestBox_Open_NotBase64(t *testing.T) {
	box, err := NewBox(testKey)
	require.NoError(t, err)

	_, err = box.Open("%%%not base64%%%")
	assert.Error(t, err)
}

func TestBox_Seal_UniqueNonces(t *testing.T) {
	box, err := NewBox(testKey)
	require.NoError(t, err)

	first, err := box.Seal("same-value")
	require.NoError(t, err)
	second, err := box.Seal("same-value")
	require.NoError(t, err)

	// Fresh nonce per seal means identical plaintexts never collide
	assert.NotEqual(t, first, second)
}
