// Package masterkey turns BIP-39 mnemonics into a single WIF-encoded master
// key and generates new mnemonics.
package masterkey

import (
	"crypto/rand"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Klingon-tech/klingseed/pkg/wordlist"
)

// WordCount is the number of words in a mnemonic.
type WordCount int

// EntropyLen returns the entropy size in bytes for a word count, or 0 when
// the count is not one of 12, 15, 18, 21, 24.
func (c WordCount) EntropyLen() int {
	switch c {
	case 12:
		return 16
	case 15:
		return 20
	case 18:
		return 24
	case 21:
		return 28
	case 24:
		return 32
	default:
		return 0
	}
}

// Valid reports whether c is a supported word count.
func (c WordCount) Valid() bool { return c.EntropyLen() != 0 }

// WordCounts lists the supported word counts.
func WordCounts() []WordCount { return []WordCount{12, 15, 18, 21, 24} }

// Mnemonic is a checksum-valid phrase in canonical wordlist spelling.
type Mnemonic struct {
	Language wordlist.Language
	Words    []string
}

// String joins the words with single ASCII spaces.
func (m Mnemonic) String() string { return strings.Join(m.Words, " ") }

// WordCount returns the number of words.
func (m Mnemonic) WordCount() WordCount { return WordCount(len(m.Words)) }

// entropySource is the CSPRNG used for new mnemonics.
var entropySource = rand.Read

// GenerateMnemonic creates a new random mnemonic of wordCount words in the
// given language.
func GenerateMnemonic(wordCount int, language string) (string, error) {
	lang, err := wordlist.ParseLanguage(language)
	if err != nil {
		return "", err
	}
	n := WordCount(wordCount).EntropyLen()
	if n == 0 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidWordCount, wordCount)
	}
	list, err := wordlist.Get(lang)
	if err != nil {
		return "", err
	}

	entropy := make([]byte, n)
	if _, err := entropySource(entropy); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPrimitive, err)
	}
	m, err := mnemonicFromEntropy(list, entropy)
	clear(entropy)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

func mnemonicFromEntropy(list *wordlist.List, entropy []byte) (Mnemonic, error) {
	words, err := encodeEntropy(list, entropy)
	if err != nil {
		return Mnemonic{}, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	if len(words) != len(entropy)*3/4 {
		return Mnemonic{}, fmt.Errorf("%w: encoded %d words from %d bytes", ErrCodec, len(words), len(entropy))
	}
	return Mnemonic{Language: list.Language(), Words: words}, nil
}

// ParseMnemonic normalizes user input and validates it against every
// available wordlist. Case and whitespace are not significant.
func ParseMnemonic(text string) (Mnemonic, error) {
	fields := strings.Fields(norm.NFKD.String(strings.ToLower(text)))
	if !WordCount(len(fields)).Valid() {
		return Mnemonic{}, fmt.Errorf("%w: %d words", ErrInvalidMnemonic, len(fields))
	}

	for _, lang := range wordlist.Languages() {
		list, err := wordlist.Get(lang)
		if err != nil {
			continue
		}
		words, ok := canonicalWords(list, fields)
		if !ok {
			continue
		}
		if _, err := decodeWords(list, words); err != nil {
			continue
		}
		return Mnemonic{Language: lang, Words: words}, nil
	}
	return Mnemonic{}, ErrInvalidMnemonic
}

// ValidateMnemonic reports whether text is a valid mnemonic in any available
// language.
func ValidateMnemonic(text string) bool {
	_, err := ParseMnemonic(text)
	return err == nil
}

// canonicalWords maps normalized input onto the list's own spelling.
func canonicalWords(list *wordlist.List, fields []string) ([]string, bool) {
	words := make([]string, len(fields))
	for i, f := range fields {
		idx, ok := list.Index(f)
		if !ok {
			return nil, false
		}
		words[i] = list.Word(idx)
	}
	return words, true
}
