package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Already normalized", input: "#ff0000", expected: "#ff0000"},
		{name: "Missing hash", input: "ff0000", expected: "#ff0000"},
		{name: "Uppercase", input: "#FF8800", expected: "#ff8800"},
		{name: "Surrounding whitespace", input: "  e6dddb ", expected: "#e6dddb"},
		{name: "Empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHex(tt.input))
		})
	}
}

func TestValidHex(t *testing.T) {
	assert.True(t, ValidHex("#00ff88"))
	assert.True(t, ValidHex("00FF88"))
	assert.False(t, ValidHex(""))
	assert.False(t, ValidHex("#00ff8"))
	assert.False(t, ValidHex("#zzzzzz"))
	assert.False(t, ValidHex("#00ff8800"))
}

func TestMidpointHex(t *testing.T) {
	assert.Equal(t, "", MidpointHex(nil))
	assert.Equal(t, "#ff0000", MidpointHex([]string{"FF0000"}))

	mid := MidpointHex([]string{"#000000", "#ffffff"})
	assert.True(t, ValidHex(mid))
	assert.NotEqual(t, "#000000", mid)
	assert.NotEqual(t, "#ffffff", mid)

	// Unparseable stops fall back to the first stop
	assert.Equal(t, "#nothex", MidpointHex([]string{"nothex", "#ffffff"}))
}
