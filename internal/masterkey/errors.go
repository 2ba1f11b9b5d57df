package masterkey

import (
	"errors"

	"github.com/Klingon-tech/klingseed/internal/wordsearch"
	"github.com/Klingon-tech/klingseed/pkg/wordlist"
)

// Input errors.
var (
	ErrInvalidWordCount = errors.New("invalid word count. Must be 12, 15, 18, 21, or 24")
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrInvalidKey       = errors.New("invalid master key")
)

// Internal failures. These are never caused by caller input.
var (
	ErrPrimitive = errors.New("entropy source failure")
	ErrCodec     = errors.New("mnemonic codec failure")
	ErrStretch   = errors.New("key stretching failure")
	ErrEncoding  = errors.New("key encoding failure")
)

// IsInvalidInput reports whether err was caused by caller input rather than
// an internal failure. Invalid mnemonics are reported separately.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidWordCount) ||
		errors.Is(err, ErrInvalidKey) ||
		errors.Is(err, wordlist.ErrUnsupportedLanguage) ||
		errors.Is(err, wordsearch.ErrEmptyQuery) ||
		errors.Is(err, wordsearch.ErrInvalidLimit)
}

// IsInternal reports whether err is an internal primitive failure.
func IsInternal(err error) bool {
	return errors.Is(err, ErrPrimitive) ||
		errors.Is(err, ErrCodec) ||
		errors.Is(err, ErrStretch) ||
		errors.Is(err, ErrEncoding) ||
		errors.Is(err, wordlist.ErrWordlistUnavailable)
}
