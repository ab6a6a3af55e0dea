// Package config resolves the workspace root and the paths of the persisted
// documents, with optional overrides from a global YAML config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults for the persisted document locations, relative to the workspace
// root. They match the original on-disk layout.
const (
	DefaultMetaFile = "db_meta.json"
	DefaultDataDir  = "data"
)

const (
	// RootEnv overrides the workspace root (default: current directory).
	RootEnv = "FLATDB_ROOT"

	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "flatdb"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yml"
)

// Global represents configuration stored in ~/.config/flatdb/config.yml.
// All fields are optional; empty fields fall back to the defaults.
type Global struct {
	MetaFile string `yaml:"meta_file,omitempty"`
	DataDir  string `yaml:"data_dir,omitempty"`
}

// globalCache caches the loaded global config.
var globalCache *Global

// GlobalConfigPath returns the path to the global config file. It respects
// XDG_CONFIG_HOME and defaults to ~/.config/flatdb/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobal loads the global configuration file. A missing file yields an
// empty config, not an error.
func LoadGlobal() (*Global, error) {
	if globalCache != nil {
		return globalCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &Global{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Global{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg Global
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalCache = &cfg
	return &cfg, nil
}

// ResetGlobalCache clears the cached global config. Useful for testing.
func ResetGlobalCache() {
	globalCache = nil
}

// Root returns the workspace root: FLATDB_ROOT when set, otherwise the
// current directory.
func Root() (string, error) {
	if root := os.Getenv(RootEnv); root != "" {
		return root, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}

// MetaPath returns the schema registry document path under root.
func (g *Global) MetaPath(root string) string {
	name := g.MetaFile
	if name == "" {
		name = DefaultMetaFile
	}
	return filepath.Join(root, name)
}

// DataPath returns the record document directory under root.
func (g *Global) DataPath(root string) string {
	dir := g.DataDir
	if dir == "" {
		dir = DefaultDataDir
	}
	return filepath.Join(root, dir)
}
