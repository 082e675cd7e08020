package levels

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/levels.yaml
var defaultLevelsYAML []byte

// fileConfig is the on-disk shape of a levels configuration file.
type fileConfig struct {
	Defaults defaultsYAML           `yaml:"defaults"`
	Levels   map[int]Override       `yaml:"levels"`
	Themes   map[string]ThemeConfig `yaml:"themes"`
}

// defaultsYAML mirrors LevelPolicy for the defaults section. Every field
// is optional; unset fields keep the hardcoded default.
type defaultsYAML struct {
	PathMode         *Mode        `yaml:"path_mode,omitempty"`
	AllowGeneration  *bool        `yaml:"allow_generation,omitempty"`
	PreserveLayout   *bool        `yaml:"preserve_layout,omitempty"`
	Theme            *string      `yaml:"theme,omitempty"`
	BalanceEnabled   *bool        `yaml:"balance_enabled,omitempty"`
	BalanceThreshold *float64     `yaml:"balance_threshold,omitempty"`
	Constraints      *Constraints `yaml:"constraints,omitempty"`
	TargetDifficulty *float64     `yaml:"target_difficulty,omitempty"`
}

// Load reads a levels configuration.
// Search order: customPath -> ~/.pathforge/configs/levels.yaml ->
// ./configs/levels.yaml -> embedded default.
func Load(customPath string) (*Table, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		table, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return table, nil
	}

	if userCfg := userConfigPath("levels.yaml"); userCfg != "" {
		if data, err := os.ReadFile(userCfg); err == nil {
			if table, err := parse(data); err == nil {
				return table, nil
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", "levels.yaml")); err == nil {
		if table, err := parse(data); err == nil {
			return table, nil
		}
	}

	table, err := parse(defaultLevelsYAML)
	if err != nil {
		// Fall back to hardcoded defaults if the embedded file is bad.
		return NewTable(), nil
	}
	return table, nil
}

// parse builds a Table from raw YAML.
func parse(data []byte) (*Table, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}

	table := NewTable()
	applyDefaults(&table.defaults, fc.Defaults)

	for id, ov := range fc.Levels {
		if id < 0 {
			return nil, fmt.Errorf("negative level id %d", id)
		}
		table.overrides[id] = ov
	}

	for name, theme := range fc.Themes {
		if err := theme.Validate(); err != nil {
			return nil, fmt.Errorf("theme %q: %w", name, err)
		}
		table.themes[name] = theme
	}
	return table, nil
}

func applyDefaults(p *LevelPolicy, d defaultsYAML) {
	if d.PathMode != nil {
		p.PathMode = *d.PathMode
	}
	if d.AllowGeneration != nil {
		p.AllowGeneration = *d.AllowGeneration
	}
	if d.PreserveLayout != nil {
		p.PreserveLayout = *d.PreserveLayout
	}
	if d.Theme != nil {
		p.Theme = *d.Theme
	}
	if d.BalanceEnabled != nil {
		p.BalanceEnabled = *d.BalanceEnabled
	}
	if d.BalanceThreshold != nil {
		p.BalanceThreshold = *d.BalanceThreshold
	}
	if d.Constraints != nil {
		p.Constraints = *d.Constraints
	}
	if d.TargetDifficulty != nil {
		p.TargetDifficulty = *d.TargetDifficulty
	}
}

// userConfigPath returns the path to a user config file, or empty if the
// home directory is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pathforge", "configs", filename)
}
