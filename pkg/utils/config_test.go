package utils

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("with nil values", func(t *testing.T) {
		config := NewConfig(nil)
		require.NotNil(t, config)
		assert.Len(t, config.Keys(), 0)
	})

	t.Run("with values", func(t *testing.T) {
		values := map[string]string{
			"key1": "value1",
			"key2": "value2",
		}
		config := NewConfig(values)

		assert.Equal(t, "value1", config.Get("key1"))
		assert.Equal(t, "value2", config.Get("key2"))

		// Verify it's a copy, not a reference
		values["key1"] = "modified"
		assert.NotEqual(t, "modified", config.Get("key1"))
	})
}

func TestNewConfigFromEnv(t *testing.T) {
	// Create a temporary .env file for testing
	envContent := "TEST_KEY1=test_value1\nTEST_KEY2=test_value2\n"
	tmpFile, err := os.CreateTemp("", "test_env_*.env")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(envContent)
	require.NoError(t, err)
	tmpFile.Close()

	config := NewConfigFromEnv(tmpFile.Name())
	require.NotNil(t, config)
}

func TestConfigGetWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"existing": "value",
		"empty":    "",
	})

	t.Run("existing key", func(t *testing.T) {
		got := config.GetWithDefault("existing", "default")
		assert.Equal(t, "value", got)
	})

	t.Run("non-existing key", func(t *testing.T) {
		got := config.GetWithDefault("missing", "default")
		assert.Equal(t, "default", got)
	})

	t.Run("empty value key", func(t *testing.T) {
		got := config.GetWithDefault("empty", "default")
		assert.Equal(t, "default", got)
	})
}

func TestConfigGetBool(t *testing.T) {
	config := NewConfig(map[string]string{
		"true_bool":    "true",
		"false_bool":   "false",
		"true_1":       "1",
		"false_0":      "0",
		"true_yes":     "yes",
		"true_on":      "on",
		"true_enabled": "enabled",
		"invalid":      "invalid_bool",
		"empty":        "",
	})

	tests := []struct {
		key      string
		expected bool
	}{
		{"true_bool", true},
		{"false_bool", false},
		{"true_1", true},
		{"false_0", false},
		{"true_yes", true},
		{"true_on", true},
		{"true_enabled", true},
		{"invalid", false},
		{"empty", false},
		{"missing", false},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			got := config.GetBool(test.key)
			assert.Equal(t, test.expected, got, "GetBool(%s)", test.key)
		})
	}
}

func TestConfigGetBoolWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"true_bool": "true",
		"empty":     "",
	})

	t.Run("existing key", func(t *testing.T) {
		got := config.GetBoolWithDefault("true_bool", false)
		assert.True(t, got)
	})

	t.Run("non-existing key with default true", func(t *testing.T) {
		got := config.GetBoolWithDefault("missing", true)
		assert.True(t, got)
	})

	t.Run("empty value key", func(t *testing.T) {
		got := config.GetBoolWithDefault("empty", true)
		assert.False(t, got) // Expected false (parsed)
	})
}

func TestConfigGetInt(t *testing.T) {
	config := NewConfig(map[string]string{
		"valid_int":   "42",
		"negative":    "-10",
		"invalid_int": "not_a_number",
	})

	assert.Equal(t, 42, config.GetInt("valid_int"))
	assert.Equal(t, -10, config.GetInt("negative"))
	assert.Equal(t, 0, config.GetInt("invalid_int"))
	assert.Equal(t, 0, config.GetInt("missing"))
}

func TestConfigGetIntWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"valid_int": "42",
	})

	assert.Equal(t, 42, config.GetIntWithDefault("valid_int", 999))
	assert.Equal(t, 999, config.GetIntWithDefault("missing", 999))
}

func TestConfigSet(t *testing.T) {
	config := NewConfig(map[string]string{})

	config.Set("new_key", "new_value")
	assert.Equal(t, "new_value", config.Get("new_key"))

	// Test overwriting
	config.Set("new_key", "updated_value")
	assert.Equal(t, "updated_value", config.Get("new_key"))
}

func TestConfigHas(t *testing.T) {
	config := NewConfig(map[string]string{
		"existing": "value",
		"empty":    "",
	})

	assert.True(t, config.Has("existing"))
	assert.True(t, config.Has("empty"))
	assert.False(t, config.Has("missing"))
}

func TestConfigConcurrency(t *testing.T) {
	config := NewConfig(map[string]string{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			config.Set("shared", "value")
		}()
		go func() {
			defer wg.Done()
			_ = config.Get("shared")
		}()
	}
	wg.Wait()
}
