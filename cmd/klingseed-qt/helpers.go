package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/klingseed/internal/masterkey"
)

func validWordCount(n int) bool {
	return masterkey.WordCount(n).Valid()
}

func errInvalidWordCount(n int) error {
	return fmt.Errorf("%w: got %d", masterkey.ErrInvalidWordCount, n)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// formatFingerprint groups a hex fingerprint in blocks of four for reading
// aloud when comparing backups.
func formatFingerprint(hexStr string) string {
	var b strings.Builder
	for i := 0; i < len(hexStr); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(hexStr) {
			end = len(hexStr)
		}
		b.WriteString(hexStr[i:end])
	}
	return b.String()
}

// validateKeyName accepts names usable as a key file base name.
func validateKeyName(name string) error {
	if name == "" {
		return fmt.Errorf("key name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("key name too long (max 64)")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("key name may only contain letters, digits, '-' and '_'")
		}
	}
	return nil
}
