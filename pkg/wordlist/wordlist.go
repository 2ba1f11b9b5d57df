// Package wordlist holds the BIP-39 language tags and the process-wide,
// read-only registry of their wordlists.
package wordlist

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/tyler-smith/go-bip39/wordlists"
	"golang.org/x/text/unicode/norm"
)

// Size is the number of words in every BIP-39 wordlist.
const Size = 2048

// Language identifies one BIP-39 wordlist.
type Language string

const (
	English    Language = "english"
	Czech      Language = "czech"
	French     Language = "french"
	Italian    Language = "italian"
	Japanese   Language = "japanese"
	Korean     Language = "korean"
	Portuguese Language = "portuguese"
	Spanish    Language = "spanish"
)

// all lists the supported languages in detection order.
var all = []Language{English, Czech, French, Italian, Japanese, Korean, Portuguese, Spanish}

var (
	// ErrUnsupportedLanguage is returned for tags outside the supported set.
	ErrUnsupportedLanguage = errors.New("unsupported language. Supported: english, czech, french, italian, japanese, korean, portuguese, spanish")

	// ErrWordlistUnavailable is returned for a supported language whose
	// wordlist was not provisioned in this process.
	ErrWordlistUnavailable = errors.New("wordlist not installed")
)

// Languages returns every supported language in detection order.
func Languages() []Language {
	out := make([]Language, len(all))
	copy(out, all)
	return out
}

// ParseLanguage matches a tag case-insensitively against the supported set.
func ParseLanguage(s string) (Language, error) {
	tag := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range all {
		if l == tag {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
}

// String returns the lowercase tag.
func (l Language) String() string { return string(l) }

// List is an immutable BIP-39 wordlist.
type List struct {
	lang  Language
	words []string
	index map[string]int // NFKD form -> position
}

// Language returns the list's language.
func (l *List) Language() Language { return l.lang }

// Len returns the number of words.
func (l *List) Len() int { return len(l.words) }

// Word returns the word at position i.
func (l *List) Word(i int) string { return l.words[i] }

// Words returns a copy of the words in list order.
func (l *List) Words() []string {
	out := make([]string, len(l.words))
	copy(out, l.words)
	return out
}

// Index looks a word up by its NFKD form and returns its position.
func (l *List) Index(word string) (int, bool) {
	i, ok := l.index[norm.NFKD.String(word)]
	return i, ok
}

func newList(lang Language, words []string) (*List, error) {
	if len(words) != Size {
		return nil, fmt.Errorf("%s wordlist has %d words, want %d", lang, len(words), Size)
	}
	index := make(map[string]int, len(words))
	for i, w := range words {
		if w == "" {
			return nil, fmt.Errorf("%s wordlist: empty word at line %d", lang, i+1)
		}
		key := norm.NFKD.String(w)
		if _, dup := index[key]; dup {
			return nil, fmt.Errorf("%s wordlist: duplicate word %q", lang, w)
		}
		index[key] = i
	}
	return &List{lang: lang, words: words, index: index}, nil
}

// registry is replaced wholesale on Register; readers never lock.
var registry atomic.Pointer[map[Language]*List]

func init() {
	builtin := map[Language][]string{
		English:  wordlists.English,
		Czech:    wordlists.Czech,
		French:   wordlists.French,
		Italian:  wordlists.Italian,
		Japanese: wordlists.Japanese,
		Korean:   wordlists.Korean,
		Spanish:  wordlists.Spanish,
	}
	m := make(map[Language]*List, len(all))
	for lang, words := range builtin {
		l, err := newList(lang, words)
		if err != nil {
			panic(err)
		}
		m[lang] = l
	}
	registry.Store(&m)
}

// Get returns the wordlist for a language.
func Get(lang Language) (*List, error) {
	lang, err := ParseLanguage(string(lang))
	if err != nil {
		return nil, err
	}
	l, ok := (*registry.Load())[lang]
	if !ok {
		return nil, fmt.Errorf("%s: %w", lang, ErrWordlistUnavailable)
	}
	return l, nil
}

// Lookup parses a tag and returns its wordlist.
func Lookup(tag string) (*List, error) {
	lang, err := ParseLanguage(tag)
	if err != nil {
		return nil, err
	}
	return Get(lang)
}

// Available reports whether a language has a wordlist in this process.
func Available(lang Language) bool {
	_, ok := (*registry.Load())[lang]
	return ok
}

// Register installs or replaces the wordlist of a supported language.
// It is meant to run during startup, before any lookups are served.
func Register(lang Language, words []string) error {
	lang, err := ParseLanguage(string(lang))
	if err != nil {
		return err
	}
	l, err := newList(lang, append([]string(nil), words...))
	if err != nil {
		return err
	}
	for {
		old := registry.Load()
		next := make(map[Language]*List, len(*old)+1)
		for k, v := range *old {
			next[k] = v
		}
		next[lang] = l
		if registry.CompareAndSwap(old, &next) {
			return nil
		}
	}
}
