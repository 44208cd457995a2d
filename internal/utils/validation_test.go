package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("shop@example.com"))
	assert.False(t, IsValidEmail("shop@"))
	assert.False(t, IsValidEmail("not an email"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "shop@example.com", NormalizeEmail("  Shop@Example.COM "))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Hello world", SanitizeString(" <b>Hello</b> world\x07 "))
}

func TestValidateUUID(t *testing.T) {
	assert.True(t, ValidateUUID("6f1c1b7e-3c1a-4e55-9d8e-2f3b4a5c6d7e"))
	assert.False(t, ValidateUUID("electronics"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c:\\d`, EscapeLike(`c:\d`))
}

func TestParseStringList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "  ", []string{}},
		{"json array", `["wifi", " bluetooth ", ""]`, []string{"wifi", "bluetooth"}},
		{"comma separated", "wifi, bluetooth,,", []string{"wifi", "bluetooth"}},
		{"malformed json falls back to csv", `[wifi`, []string{"[wifi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStringList(tt.raw))
		})
	}
}
