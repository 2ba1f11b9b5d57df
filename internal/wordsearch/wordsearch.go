// Package wordsearch ranks the words of a BIP-39 wordlist against a partial
// or misspelled query.
package wordsearch

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"

	"github.com/Klingon-tech/klingseed/internal/log"
	"github.com/Klingon-tech/klingseed/pkg/wordlist"
)

// Search errors.
var (
	ErrEmptyQuery   = errors.New("query is empty")
	ErrInvalidLimit = errors.New("max results must not be negative")
)

// Score tiers.
const (
	ScoreExact     = 1000
	ScorePrefix    = 900
	ScoreSubstring = 500
	ScoreFuzzy     = 300
	fuzzyPenalty   = 10
)

// Match is a scored wordlist entry.
type Match struct {
	Word  string
	Score int
}

// Score rates one word against a lowercased, trimmed query. Zero means no
// match. Both sides are compared in NFKD form, so typed (composed) input
// matches the decomposed lists; lengths and positions are counted in code
// points of that form.
func Score(word, query string) int {
	w := norm.NFKD.String(strings.ToLower(word))
	query = norm.NFKD.String(query)
	switch {
	case w == query:
		return ScoreExact
	case strings.HasPrefix(w, query):
		return ScorePrefix - (utf8.RuneCountInString(w) - utf8.RuneCountInString(query))
	}
	if idx := strings.Index(w, query); idx >= 0 {
		return ScoreSubstring - utf8.RuneCountInString(w[:idx])
	}

	d := levenshtein.ComputeDistance(w, query)
	maxLen := max(utf8.RuneCountInString(w), utf8.RuneCountInString(query))
	if d > maxLen/2+1 {
		return 0
	}
	return ScoreFuzzy - fuzzyPenalty*d
}

// Search scores every word of the language's list and returns the best
// maxResults matches, highest score first, ties broken alphabetically.
func Search(query, language string, maxResults int) ([]Match, error) {
	q := norm.NFKD.String(strings.ToLower(strings.TrimSpace(query)))
	if q == "" {
		return nil, ErrEmptyQuery
	}
	list, err := wordlist.Lookup(language)
	if err != nil {
		return nil, err
	}
	if maxResults < 0 {
		return nil, ErrInvalidLimit
	}
	defer log.Benchmark("search_words")()

	matches := make([]Match, 0, 64)
	for _, w := range list.Words() {
		if s := Score(w, q); s > 0 {
			matches = append(matches, Match{Word: w, Score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return strings.ToLower(matches[i].Word) < strings.ToLower(matches[j].Word)
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	log.Search.Debug().
		Str("language", string(list.Language())).
		Int("results", len(matches)).
		Msg("Wordlist searched")
	return matches, nil
}

// SearchWords returns only the words of Search.
func SearchWords(query, language string, maxResults int) ([]string, error) {
	matches, err := Search(query, language, maxResults)
	if err != nil {
		return nil, err
	}
	words := make([]string, len(matches))
	for i, m := range matches {
		words[i] = m.Word
	}
	return words, nil
}
