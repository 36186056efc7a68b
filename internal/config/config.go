// Package config loads the optional TOML configuration file. Command-line
// flags override anything set here.
package config

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// DBPath is the SQLite database file. Empty selects the in-memory store.
	DBPath string `toml:"db_path"`
	// WatchDir is the default directory for the watch command.
	WatchDir string `toml:"watch_dir"`
	// KeepPreGame emits a LOG_START_TO_STARTGAME action for the entries
	// before StartGame instead of discarding them.
	KeepPreGame bool `toml:"keep_pre_game"`
	Debug       bool `toml:"debug"`
}

func Default() Config {
	return Config{
		DBPath: filepath.Join(".", "soclog-tools.db"),
	}
}

// Load reads path over the defaults. A missing file is not an error when
// explicit is false, so the default config path may simply not exist.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	return filepath.Join(".", "soclog-tools.toml")
}
