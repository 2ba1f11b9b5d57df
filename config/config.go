// Package config handles klingseedd configuration.
//
// Settings come from, in increasing precedence: built-in defaults, the
// key = value config file in the data directory, and command-line flags.
// Key stretching parameters are not configurable.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds daemon runtime configuration.
type Config struct {
	DataDir string `conf:"datadir"`

	// RPC server
	RPC RPCConfig

	// Extra wordlists
	Wordlist WordlistConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"`      // Allowed CORS origins ("*" = all).
	MaxDerive   int      `conf:"rpc.maxderive"` // Concurrent key derivations (256 MiB each).
}

// WordlistConfig holds wordlist provisioning settings.
type WordlistConfig struct {
	// Dir holds <language>.txt files loaded at startup. Empty means
	// <datadir>/wordlists.
	Dir string `conf:"wordlist.dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingseed
//	macOS:   ~/Library/Application Support/Klingseed
//	Windows: %APPDATA%\Klingseed
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingseed"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Klingseed")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Klingseed")
		}
		return filepath.Join(home, "AppData", "Roaming", "Klingseed")
	default:
		return filepath.Join(home, ".klingseed")
	}
}

// WordlistDir returns the directory scanned for extra wordlists.
func (c *Config) WordlistDir() string {
	if c.Wordlist.Dir != "" {
		return c.Wordlist.Dir
	}
	return filepath.Join(c.DataDir, "wordlists")
}

// KeysDir returns the default directory for sealed key files.
func (c *Config) KeysDir() string {
	return filepath.Join(c.DataDir, "keys")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "klingseed.conf")
}
