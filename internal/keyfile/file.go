package keyfile

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Klingon-tech/klingseed/internal/log"
	"github.com/Klingon-tech/klingseed/internal/masterkey"
)

// Version is the current key file format version.
const Version = 1

// Extension is the conventional key file suffix.
const Extension = ".key"

// ErrExists is returned when Write would overwrite an existing file.
var ErrExists = errors.New("key file already exists")

// File is the on-disk JSON format of a sealed master key.
type File struct {
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	Fingerprint  string    `json:"fingerprint"` // hex, see masterkey.KeyInfo
	EncryptedKey []byte    `json:"encrypted_key"`
}

// Write seals an encoded master key under password and stores it at path
// with mode 0600. Parent directories are created.
func Write(path, encodedKey string, password []byte, params Params) (*File, error) {
	info, err := masterkey.InspectMasterKey(encodedKey)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}

	sealed, err := Seal([]byte(encodedKey), password, params)
	if err != nil {
		return nil, fmt.Errorf("seal key: %w", err)
	}
	f := &File{
		Version:      Version,
		CreatedAt:    time.Now().UTC(),
		Fingerprint:  hex.EncodeToString(info.Fingerprint[:]),
		EncryptedKey: sealed,
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal key file: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	log.Keyfile.Info().Str("path", path).Str("fingerprint", f.Fingerprint).Msg("Key file written")
	return f, nil
}

// ReadInfo parses a key file without decrypting it.
func ReadInfo(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse key file: %w", err)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("unsupported key file version: %d", f.Version)
	}
	return &f, nil
}

// Read opens a key file and returns the encoded master key. The decrypted
// key must match the stored fingerprint.
func Read(path string, password []byte) (string, error) {
	f, err := ReadInfo(path)
	if err != nil {
		return "", err
	}
	plain, err := Open(f.EncryptedKey, password)
	if err != nil {
		return "", err
	}
	encoded := string(plain)
	clear(plain)

	info, err := masterkey.InspectMasterKey(encoded)
	if err != nil {
		return "", fmt.Errorf("key file holds an invalid key: %w", err)
	}
	if fp := hex.EncodeToString(info.Fingerprint[:]); fp != f.Fingerprint {
		return "", fmt.Errorf("fingerprint mismatch: file says %s, key is %s", f.Fingerprint, fp)
	}
	return encoded, nil
}
