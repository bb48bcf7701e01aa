package util

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	Version   string
	BuildDate string
	Commit    string
	RootPath  string
	SoliHome  string

	Database DatabaseConfig `toml:"database"`
}

// DatabaseConfig seeds the db builtins with a default connection so scripts
// can call db_connect() with no arguments.
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

const projectFile = "soli.toml"

// LoadProjectFile merges an optional soli.toml found under the root path
// into the configuration. A missing file is not an error.
func (c *Configuration) LoadProjectFile() error {
	path := filepath.Join(c.RootPath, projectFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return err
	}
	slog.Debug("loaded project file", slog.String("path", path))
	return nil
}
