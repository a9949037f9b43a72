package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/tinydiff/internal/core/config"
	"github.com/colonyops/tinydiff/internal/core/kv"
	"github.com/colonyops/tinydiff/pkg/executil"
)

// Flags holds global flag values and the services the Before hook builds
// from them.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	NoPersist  bool

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Settings is opened in the Before hook and closed in After.
	Settings *kv.Settings

	// Exec runs git. Tests replace it with a recording executor.
	Exec executil.Executor
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tinydiff", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tinydiff")
}
