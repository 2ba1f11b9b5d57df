package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/Klingon-tech/klingseed/config"
	klog "github.com/Klingon-tech/klingseed/internal/log"
	"github.com/Klingon-tech/klingseed/pkg/wordlist"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// qtSettings is the persistent configuration written to qt-settings.json.
type qtSettings struct {
	DataDir   string `json:"data_dir"`
	Language  string `json:"language"`
	WordCount int    `json:"word_count"`
}

// App manages application lifecycle and settings.
type App struct {
	ctx context.Context

	mu        sync.RWMutex
	dataDir   string
	language  string
	wordCount int

	seed *SeedService
}

// NewApp creates the application with default settings.
func NewApp() *App {
	app := &App{
		dataDir:   config.DefaultDataDir(),
		language:  string(wordlist.English),
		wordCount: 12,
	}
	app.seed = &SeedService{app: app}
	app.loadSettings()
	return app
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	cfg, err := config.LoadFromFile(a.GetDataDir())
	if err != nil {
		klog.Qt.Error().Err(err).Msg("Load config")
		return
	}
	logFile := filepath.Join(cfg.LogsDir(), "klingseed-qt.log")
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		klog.Qt.Warn().Err(err).Msg("Log file unavailable")
	}
	if dir := cfg.WordlistDir(); dirExists(dir) {
		loaded, err := wordlist.LoadDir(dir)
		if err != nil {
			klog.Qt.Error().Err(err).Str("dir", dir).Msg("Load wordlists")
		}
		for _, lang := range loaded {
			klog.Wordlist.Info().Str("language", lang.String()).Msg("Wordlist installed")
		}
	}
	klog.Qt.Info().Str("datadir", cfg.DataDir).Msg("Klingseed desktop started")
}

func (a *App) shutdown(_ context.Context) {
	klog.Qt.Info().Msg("Goodbye!")
}

// emit sends an event to the frontend. It is a no-op before startup.
func (a *App) emit(name string, data ...interface{}) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, name, data...)
}

// settingsPath returns the path to qt-settings.json.
func (a *App) settingsPath() string {
	return filepath.Join(a.GetDataDir(), "qt-settings.json")
}

// keysDir returns the directory sealed key files are written to.
func (a *App) keysDir() string {
	return filepath.Join(a.GetDataDir(), "keys")
}

// ── Settings persistence ─────────────────────────────────────────────

func (a *App) loadSettings() {
	data, err := os.ReadFile(a.settingsPath())
	if err != nil {
		return // first launch or missing file
	}
	var s qtSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if s.DataDir != "" {
		a.dataDir = s.DataDir
	}
	if lang, err := wordlist.ParseLanguage(s.Language); err == nil {
		a.language = string(lang)
	}
	if validWordCount(s.WordCount) {
		a.wordCount = s.WordCount
	}
}

func (a *App) saveSettings() {
	a.mu.RLock()
	s := qtSettings{
		DataDir:   a.dataDir,
		Language:  a.language,
		WordCount: a.wordCount,
	}
	a.mu.RUnlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(a.settingsPath()), 0700)
	if err := os.WriteFile(a.settingsPath(), data, 0600); err != nil {
		klog.Qt.Warn().Err(err).Msg("Save settings")
	}
}

// ── Getters / Setters (each setter persists) ─────────────────────────

// GetDataDir returns the current data directory.
func (a *App) GetDataDir() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dataDir
}

// SetDataDir updates the data directory.
func (a *App) SetDataDir(dir string) {
	a.mu.Lock()
	a.dataDir = dir
	a.mu.Unlock()
	a.saveSettings()
}

// GetLanguage returns the default mnemonic language.
func (a *App) GetLanguage() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.language
}

// SetLanguage updates the default mnemonic language.
func (a *App) SetLanguage(language string) error {
	lang, err := wordlist.ParseLanguage(language)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.language = string(lang)
	a.mu.Unlock()
	a.saveSettings()
	return nil
}

// GetWordCount returns the default mnemonic length.
func (a *App) GetWordCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.wordCount
}

// SetWordCount updates the default mnemonic length.
func (a *App) SetWordCount(n int) error {
	if !validWordCount(n) {
		return errInvalidWordCount(n)
	}
	a.mu.Lock()
	a.wordCount = n
	a.mu.Unlock()
	a.saveSettings()
	return nil
}

// GetVersion returns the application version.
func (a *App) GetVersion() string {
	return config.Version
}
