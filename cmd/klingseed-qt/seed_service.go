package main

import (
	"context"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Klingon-tech/klingseed/internal/keyfile"
	klog "github.com/Klingon-tech/klingseed/internal/log"
	"github.com/Klingon-tech/klingseed/internal/masterkey"
	"github.com/Klingon-tech/klingseed/internal/wordsearch"
	"github.com/Klingon-tech/klingseed/pkg/wordlist"
)

// Events emitted while a derivation runs.
const (
	eventDeriveStarted  = "derive:started"
	eventDeriveFinished = "derive:finished"
)

var errDeriveBusy = errors.New("a derivation is already running")

// deriver is satisfied by *masterkey.Deriver.
type deriver interface {
	DeriveMasterKeyContext(ctx context.Context, mnemonic, passphrase string) (string, error)
}

// SeedService exposes mnemonic and master key operations to the frontend.
// Everything runs in-process; each bound call resolves a JavaScript promise.
type SeedService struct {
	app *App

	deriveOnce sync.Once
	deriver    deriver
	deriveMu   sync.Mutex // one 256 MiB derivation at a time
}

// ValidationInfo is returned by ValidateMnemonic.
type ValidationInfo struct {
	Valid     bool   `json:"valid"`
	Language  string `json:"language,omitempty"`
	WordCount int    `json:"word_count"`
}

// KeyInfo describes a master key without revealing it.
type KeyInfo struct {
	Version     int    `json:"version"`
	Compressed  bool   `json:"compressed"`
	PublicKey   string `json:"public_key"`
	Fingerprint string `json:"fingerprint"`
	Display     string `json:"display"` // fingerprint in groups of four
}

// LanguageInfo describes one supported language.
type LanguageInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Words     int    `json:"words"`
}

// KeyFileInfo is returned after a key file is written.
type KeyFileInfo struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

func (s *SeedService) getDeriver() deriver {
	s.deriveOnce.Do(func() {
		if s.deriver == nil {
			s.deriver = masterkey.NewDeriver()
		}
	})
	return s.deriver
}

// GenerateMnemonic creates a new mnemonic. Zero wordCount and empty
// language fall back to the saved defaults.
func (s *SeedService) GenerateMnemonic(wordCount int, language string) (string, error) {
	if wordCount == 0 {
		wordCount = s.app.GetWordCount()
	}
	if language == "" {
		language = s.app.GetLanguage()
	}
	return masterkey.GenerateMnemonic(wordCount, language)
}

// ValidateMnemonic checks a mnemonic and reports its language.
func (s *SeedService) ValidateMnemonic(mnemonic string) (*ValidationInfo, error) {
	m, err := masterkey.ParseMnemonic(mnemonic)
	if errors.Is(err, masterkey.ErrInvalidMnemonic) {
		return &ValidationInfo{WordCount: len(strings.Fields(mnemonic))}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ValidationInfo{Valid: true, Language: m.Language.String(), WordCount: len(m.Words)}, nil
}

// DeriveMasterKey derives the encoded master key. The call takes seconds;
// the frontend receives derive:started and derive:finished events.
func (s *SeedService) DeriveMasterKey(mnemonic, passphrase string) (string, error) {
	if !s.deriveMu.TryLock() {
		return "", errDeriveBusy
	}
	defer s.deriveMu.Unlock()

	ctx := s.app.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	s.app.emit(eventDeriveStarted)
	start := time.Now()
	key, err := s.getDeriver().DeriveMasterKeyContext(ctx, mnemonic, passphrase)
	s.app.emit(eventDeriveFinished, err == nil)
	if err != nil {
		if masterkey.IsInternal(err) {
			klog.Qt.Error().Err(err).Msg("Derivation failed")
		}
		return "", err
	}

	elapsed := time.Since(start)
	klog.Qt.Info().Dur("elapsed", elapsed).Msg("Master key derived")
	if elapsed > 5*time.Second {
		sendOSNotification("Klingseed", "Master key ready")
	}
	return key, nil
}

// InspectMasterKey decodes a master key and returns its public data.
func (s *SeedService) InspectMasterKey(key string) (*KeyInfo, error) {
	info, err := masterkey.InspectMasterKey(strings.TrimSpace(key))
	if err != nil {
		return nil, err
	}
	fp := hex.EncodeToString(info.Fingerprint[:])
	return &KeyInfo{
		Version:     int(info.Version),
		Compressed:  info.Compressed,
		PublicKey:   hex.EncodeToString(info.PublicKey),
		Fingerprint: fp,
		Display:     formatFingerprint(fp),
	}, nil
}

// SearchWords suggests wordlist entries close to a partly typed word.
func (s *SeedService) SearchWords(query, language string, maxResults int) ([]string, error) {
	if language == "" {
		language = s.app.GetLanguage()
	}
	return wordsearch.SearchWords(query, language, maxResults)
}

// Languages lists every supported language and whether it is installed.
func (s *SeedService) Languages() []LanguageInfo {
	langs := wordlist.Languages()
	out := make([]LanguageInfo, 0, len(langs))
	for _, lang := range langs {
		info := LanguageInfo{Name: lang.String()}
		if l, err := wordlist.Get(lang); err == nil {
			info.Available = true
			info.Words = l.Len()
		}
		out = append(out, info)
	}
	return out
}

// SaveKeyFile seals a master key under password into <datadir>/keys/<name>.key.
func (s *SeedService) SaveKeyFile(key, name, password string) (*KeyFileInfo, error) {
	if err := validateKeyName(name); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, errors.New("password is required")
	}
	path := filepath.Join(s.app.keysDir(), name+keyfile.Extension)
	f, err := keyfile.Write(path, strings.TrimSpace(key), []byte(password), keyfile.DefaultParams())
	if err != nil {
		return nil, err
	}
	return &KeyFileInfo{Path: path, Fingerprint: f.Fingerprint}, nil
}

// OpenKeyFile decrypts a key file from <datadir>/keys and returns the key.
func (s *SeedService) OpenKeyFile(name, password string) (string, error) {
	if err := validateKeyName(name); err != nil {
		return "", err
	}
	path := filepath.Join(s.app.keysDir(), name+keyfile.Extension)
	return keyfile.Read(path, []byte(password))
}
