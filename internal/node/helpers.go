package node

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Klingon-tech/klingseed/pkg/wordlist"
)

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// provisionWordlists installs every <language>.txt in dir. A missing
// directory is not an error.
func provisionWordlists(dir string) ([]wordlist.Language, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("wordlist dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("wordlist dir %s: not a directory", dir)
	}
	loaded, err := wordlist.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("provision wordlists: %w", err)
	}
	return loaded, nil
}
