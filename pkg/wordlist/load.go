package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFile reads a wordlist file (one word per line, blank lines ignored).
func LoadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	words := make([]string, 0, Size)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w == "" {
			continue
		}
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// LoadDir registers every <language>.txt found in dir and returns the
// languages it installed. Missing files are skipped; a malformed list fails
// the whole load.
func LoadDir(dir string) ([]Language, error) {
	var loaded []Language
	for _, lang := range all {
		path := filepath.Join(dir, string(lang)+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		words, err := LoadFile(path)
		if err != nil {
			return loaded, fmt.Errorf("load %s: %w", path, err)
		}
		if err := Register(lang, words); err != nil {
			return loaded, fmt.Errorf("register %s: %w", path, err)
		}
		loaded = append(loaded, lang)
	}
	return loaded, nil
}
