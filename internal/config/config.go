// Package config exposes strongly typed fogoctl configuration loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file fogoctl looks for in the working directory.
const DefaultFileName = "fogoctl.yaml"

const (
	// PythonBinEnvVar overrides the python interpreter used to create the venv.
	PythonBinEnvVar = "FOGOCTL_PYTHON"
	// VenvDirEnvVar overrides the virtual environment directory.
	VenvDirEnvVar = "FOGOCTL_VENV_DIR"
	// LogLevelEnvVar overrides the log level.
	LogLevelEnvVar = "FOGOCTL_LOG_LEVEL"
	// StatusAddrEnvVar overrides the status server bind address.
	StatusAddrEnvVar = "FOGOCTL_STATUS_ADDR"
)

// Python configures the interpreter and virtual environment locations.
type Python struct {
	// Bin forces a specific interpreter instead of auto-discovery.
	Bin     string `yaml:"bin"`
	VenvDir string `yaml:"venv_dir"`
}

// Bot describes the external program and the files it consumes.
type Bot struct {
	Entrypoint      string `yaml:"entrypoint"`
	ManifestPath    string `yaml:"manifest_path"`
	CredentialsPath string `yaml:"credentials_path"`
	ProxyPath       string `yaml:"proxy_path"`
}

// Launch tunes how fogoctl runs and supervises the bot.
type Launch struct {
	// Pause holds the terminal open after the bot exits (interactive runs only).
	Pause      bool   `yaml:"pause"`
	StatusAddr string `yaml:"status_addr"`
}

// Config collects every configuration leaf for fogoctl.
type Config struct {
	Python    Python `yaml:"python"`
	Bot       Bot    `yaml:"bot"`
	Launch    Launch `yaml:"launch"`
	LogLevel  string `yaml:"log_level"`
	StatePath string `yaml:"state_path"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Python: Python{
			VenvDir: "venv",
		},
		Bot: Bot{
			Entrypoint:      "main.py",
			ManifestPath:    "requirements.txt",
			CredentialsPath: "private_key.txt",
			ProxyPath:       "proxy.txt",
		},
		Launch: Launch{
			Pause: true,
		},
		LogLevel:  "info",
		StatePath: "fogoctl.db",
	}
}

// Load reads a YAML config file and applies environment variable overrides.
// If path is empty, the default file name is used and a missing file is not
// an error: the defaults apply. An explicitly given path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	optional := path == ""
	if optional {
		path = DefaultFileName
	}

	file, err := os.Open(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv applies environment variable overrides.
// Environment variables take precedence over file contents.
func (c *Config) applyEnv() {
	if v := os.Getenv(PythonBinEnvVar); v != "" {
		c.Python.Bin = v
	}
	if v := os.Getenv(VenvDirEnvVar); v != "" {
		c.Python.VenvDir = v
	}
	if v := os.Getenv(LogLevelEnvVar); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(StatusAddrEnvVar); v != "" {
		c.Launch.StatusAddr = v
	}
}
