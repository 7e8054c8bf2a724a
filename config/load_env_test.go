package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetString(t *testing.T) {
	t.Setenv("CFG_TEST_STRING", "value")
	assert.Equal(t, "value", GetString("CFG_TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", GetString("CFG_TEST_STRING_UNSET", "fallback"))
}

func TestGetInt(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "42")
	t.Setenv("CFG_TEST_INT_BAD", "not a number")

	assert.Equal(t, 42, GetInt("CFG_TEST_INT", 7))
	assert.Equal(t, 7, GetInt("CFG_TEST_INT_BAD", 7))
	assert.Equal(t, 7, GetInt("CFG_TEST_INT_UNSET", 7))
}

func TestGetDurationReadsSeconds(t *testing.T) {
	t.Setenv("CFG_TEST_DURATION", "15")

	assert.Equal(t, 15*time.Second, GetDuration("CFG_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, GetDuration("CFG_TEST_DURATION_UNSET", time.Second))
}

func TestGeminiAPIKeysOrdered(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY_2", "key-two")
	t.Setenv("GOOGLE_API_KEY_1", "key-one")
	t.Setenv("GOOGLE_API_KEY_3", "  ")

	keys := GeminiAPIKeys()
	assert.Equal(t, []string{"key-one", "key-two"}, keys,
		"keys are ordered by variable name and blanks are dropped")
}
