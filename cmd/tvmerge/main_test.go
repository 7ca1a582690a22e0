package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"merg", "merge"},
		{"mrege", "merge"},
		{"consolidat", "consolidate"},
		{"consoldiate", "consolidate"},
		{"exprot", "export"},
		{"expor", "export"},
		{"mpc", "mcp"},
		{"versio", "version"},
		{"hep", "help"},
		{"mergé", "merge"},
		{"version ", "version"},

		{"xyz", ""},
		{"foobar", ""},
		{"consolidation", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, suggestCommand(tt.input))
		})
	}
}

func TestRun(t *testing.T) {
	assert.Equal(t, 1, run(nil))
	assert.Equal(t, 0, run([]string{"version"}))
	assert.Equal(t, 0, run([]string{"help"}))
	assert.Equal(t, 1, run([]string{"bogus"}))
	assert.Equal(t, 1, run([]string{"merge"}))
	assert.Equal(t, 0, run([]string{"merge", "--help"}))
}
