package store

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config carries the user-tunable editor settings.
type Config interface {
	// DataPath is the directory holding snapshots and recent items.
	DataPath() string
	// Theme names the UI palette ("dark" or "light").
	Theme() string
	// AutoSave reports whether debounced autosave is enabled for
	// documents that have a path.
	AutoSave() bool
}

// LoadConfig resolves settings from a .docura config file and DOCURA_*
// environment variables.
func LoadConfig() (Config, error) {
	viper.SetDefault("path", "~/.local/share/docura")
	viper.SetDefault("theme", "dark")
	viper.SetDefault("autosave", true)
	viper.SetConfigName(".docura") // .yaml is implicit
	viper.SetEnvPrefix("DOCURA")
	viper.AutomaticEnv()

	if override := os.Getenv("DOCURA_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand data path: %w", err)
	}

	return &fileConfig{
		Path:       filepath.Clean(path),
		ThemeName:  viper.GetString("theme"),
		AutoSaveOn: viper.GetBool("autosave"),
	}, nil
}

type fileConfig struct {
	Path       string `json:"path"`
	ThemeName  string `json:"theme"`
	AutoSaveOn bool   `json:"autosave"`
}

func (f *fileConfig) DataPath() string { return f.Path }
func (f *fileConfig) Theme() string    { return f.ThemeName }
func (f *fileConfig) AutoSave() bool   { return f.AutoSaveOn }

// StaticConfig builds a Config from explicit values, used by tests and
// command-line overrides.
func StaticConfig(path, theme string, autosave bool) Config {
	return &fileConfig{Path: path, ThemeName: theme, AutoSaveOn: autosave}
}
