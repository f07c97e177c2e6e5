package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****6789", MaskSecret("123456789"))
	assert.Equal(t, "tok_****wxyz", MaskSecret("tok_abcdwxyz"))
}

func TestMaskSensitive(t *testing.T) {
	in := map[string]any{
		"method":       "CARD",
		"access_token": "eyJhbGciOiJIUzI1NiJ9",
		"nested":       map[string]any{"password": "hunter22"},
		"":             "dropped",
	}

	out := MaskSensitive(in)

	assert.Equal(t, "CARD", out["method"])
	assert.Equal(t, "****NiJ9", out["access_token"])
	assert.Equal(t, map[string]any{"password": "****er22"}, out["nested"])
	assert.NotContains(t, out, "")
	assert.Equal(t, "eyJhbGciOiJIUzI1NiJ9", in["access_token"])
}
