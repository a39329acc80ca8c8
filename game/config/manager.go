package config

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/bulls-and-cows/game/engine"
	"github.com/wricardo/bulls-and-cows/game/service"
)

// DefaultPreset is used when no default has been set
const DefaultPreset = "classic"

var ErrInvalidPreset = errors.New("invalid preset")

//go:embed presets/*.json
var builtin embed.FS

// Manager handles preset loading and caching. Built-in presets are always
// available and shadow files of the same name in presetDir.
type Manager struct {
	presetDir     string
	defaultPreset *service.Preset
	presets       map[string]*service.Preset
	mu            sync.RWMutex
}

// NewManager creates a new preset manager. An empty presetDir serves only
// the built-in presets.
func NewManager(presetDir string) (*Manager, error) {
	if presetDir != "" {
		if _, err := os.Stat(presetDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("preset directory does not exist: %s", presetDir)
		}
	}

	m := &Manager{
		presetDir: presetDir,
		presets:   make(map[string]*service.Preset),
	}

	if err := m.loadBuiltins(); err != nil {
		return nil, fmt.Errorf("failed to load built-in presets: %w", err)
	}

	if err := m.SetDefault(DefaultPreset); err != nil {
		return nil, fmt.Errorf("failed to load default preset: %w", err)
	}

	return m, nil
}

// LoadPreset loads a preset by name
func (m *Manager) LoadPreset(name string) (*service.Preset, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if preset, ok := m.presets[name]; ok {
		m.mu.RUnlock()
		return preset, nil
	}
	m.mu.RUnlock()

	if m.presetDir == "" || !validName(name) {
		return nil, fmt.Errorf("%q: %w", name, service.ErrPresetNotFound)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if preset, ok := m.presets[name]; ok {
		return preset, nil
	}

	data, err := os.ReadFile(filepath.Join(m.presetDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", name, service.ErrPresetNotFound)
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	preset, err := ParsePreset(data)
	if err != nil {
		return nil, err
	}
	switch preset.Name {
	case "":
		preset.Name = name
	case name:
	default:
		return nil, fmt.Errorf("%w: file %s.json declares name %q", ErrInvalidPreset, name, preset.Name)
	}

	m.presets[name] = preset
	return preset, nil
}

// ListPresets returns every available preset ordered by name. Invalid files
// in the preset directory are skipped.
func (m *Manager) ListPresets() ([]*service.Preset, error) {
	if m.presetDir != "" {
		entries, err := os.ReadDir(m.presetDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read preset directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			if _, err := m.LoadPreset(entry.Name()); err != nil {
				log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping preset")
			}
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	presets := make([]*service.Preset, 0, len(m.presets))
	for _, p := range m.presets {
		presets = append(presets, p)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *service.Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPreset
}

// SetDefault sets the default preset by name
func (m *Manager) SetDefault(name string) error {
	preset, err := m.LoadPreset(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPreset = preset
	return nil
}

// RefreshCache drops presets loaded from disk and restores the built-ins.
// The default preset is re-resolved by name.
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.presets = make(map[string]*service.Preset)
	name := DefaultPreset
	if m.defaultPreset != nil {
		name = m.defaultPreset.Name
	}
	m.mu.Unlock()

	if err := m.loadBuiltins(); err != nil {
		return err
	}
	return m.SetDefault(name)
}

func (m *Manager) loadBuiltins() error {
	files, err := fs.Glob(builtin, "presets/*.json")
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, file := range files {
		data, err := builtin.ReadFile(file)
		if err != nil {
			return err
		}
		preset, err := ParsePreset(data)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		m.presets[preset.Name] = preset
	}
	return nil
}

// ParsePreset decodes and validates a preset document
func ParsePreset(data []byte) (*service.Preset, error) {
	var preset service.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("%w: failed to parse preset: %v", ErrInvalidPreset, err)
	}
	if err := ValidatePreset(&preset); err != nil {
		return nil, err
	}
	return &preset, nil
}

// ValidatePreset checks that a preset describes a playable game
func ValidatePreset(p *service.Preset) error {
	if p == nil {
		return fmt.Errorf("%w: preset is nil", ErrInvalidPreset)
	}
	if p.Length < engine.MinSequenceLength || p.Length > engine.MaxSequenceLength {
		return fmt.Errorf("%w: length %d must be between %d and %d",
			ErrInvalidPreset, p.Length, engine.MinSequenceLength, engine.MaxSequenceLength)
	}
	if p.Name != "" && !validName(p.Name) {
		return fmt.Errorf("%w: name %q may only contain letters, digits, '-' and '_'", ErrInvalidPreset, p.Name)
	}
	return nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
