package masterkey

import (
	"strings"
	"sync"

	"github.com/tyler-smith/go-bip39"

	"github.com/Klingon-tech/klingseed/pkg/wordlist"
)

// go-bip39 keeps the active wordlist in package globals, so every call that
// reads it goes through codec.
var codec struct {
	mu   sync.Mutex
	list *wordlist.List
}

// useList switches the bip39 wordlist. Caller holds codec.mu.
func useList(l *wordlist.List) {
	if codec.list == l {
		return
	}
	bip39.SetWordList(l.Words())
	codec.list = l
}

// encodeEntropy turns entropy into list words.
func encodeEntropy(l *wordlist.List, entropy []byte) ([]string, error) {
	codec.mu.Lock()
	defer codec.mu.Unlock()

	useList(l)
	sentence, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Split(sentence, " "), nil
}

// decodeWords checks the checksum of canonical list words and returns the
// entropy they carry.
func decodeWords(l *wordlist.List, words []string) ([]byte, error) {
	codec.mu.Lock()
	defer codec.mu.Unlock()

	useList(l)
	return bip39.EntropyFromMnemonic(strings.Join(words, " "))
}
