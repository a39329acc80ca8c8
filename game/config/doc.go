// Package config provides game preset management for the bulls and cows server.
//
// The config package handles:
//   - Built-in presets embedded in the binary
//   - Loading additional presets from a directory of JSON files
//   - Preset validation
//   - Default preset selection
//
// Preset Format:
//
//	{
//	  "name": "classic",
//	  "description": "Four digits and ten attempts",
//	  "length": 4,
//	  "max_attempts": 10
//	}
//
// The file name without the .json extension is the preset identifier. A
// declared name must match it.
//
// Built-in Presets:
//
//   - classic: 4 digits, 10 attempts (default)
//   - hard: 6 digits, 12 attempts
//   - expert: 9 digits, 15 attempts
package config
