package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestValidatePreset(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name         string
		file         string
		body         string
		wantValid    bool
		wantWarnings int
	}{
		{name: "valid", file: "quick.json", body: `{"name":"quick","description":"d","length":4,"max_attempts":10}`, wantValid: true},
		{name: "unnamed", file: "anon.json", body: `{"description":"d","length":5,"max_attempts":10}`, wantValid: true},
		{name: "tight attempts", file: "tight.json", body: `{"description":"d","length":4,"max_attempts":2}`, wantValid: true, wantWarnings: 1},
		{name: "no description", file: "bare.json", body: `{"length":4,"max_attempts":10}`, wantValid: true, wantWarnings: 1},
		{name: "bad json", file: "broken.json", body: `{"length":`, wantValid: false},
		{name: "too long", file: "long.json", body: `{"length":10,"max_attempts":10}`, wantValid: false},
		{name: "name mismatch", file: "one.json", body: `{"name":"two","length":4,"max_attempts":10}`, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validatePreset(writeFile(t, dir, tt.file, tt.body))
			assert.Equal(t, tt.wantValid, result.Valid, result.Errors)
			assert.Len(t, result.Warnings, tt.wantWarnings, result.Warnings)
			if !tt.wantValid {
				assert.NotEmpty(t, result.Errors)
			}
		})
	}

	result := validatePreset(filepath.Join(dir, "missing.json"))
	assert.False(t, result.Valid)
}

func TestValidateDir(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.json", `{"description":"d","length":4,"max_attempts":10}`)
		writeFile(t, dir, "b.json", `{"description":"d","length":6,"max_attempts":12}`)

		var out bytes.Buffer
		ok, err := validateDir(&out, dir)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Contains(t, out.String(), "All presets are valid!")
	})

	t.Run("one invalid", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.json", `{"description":"d","length":4,"max_attempts":10}`)
		writeFile(t, dir, "b.json", `{"length":3}`)

		var out bytes.Buffer
		ok, err := validateDir(&out, dir)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Contains(t, out.String(), "INVALID")
	})

	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		ok, err := validateDir(&out, t.TempDir())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Contains(t, out.String(), "No preset files")
	})
}

func TestBuiltinPresetsAreValid(t *testing.T) {
	var out bytes.Buffer
	ok, err := validateDir(&out, filepath.Join("..", "..", "game", "config", "presets"))
	require.NoError(t, err)
	assert.True(t, ok, out.String())
}
