package rpc

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/Klingon-tech/klingseed/internal/masterkey"
	"github.com/Klingon-tech/klingseed/internal/wordsearch"
	"github.com/Klingon-tech/klingseed/pkg/wordlist"
)

// ── Mnemonic handlers ───────────────────────────────────────────────────

func (s *Server) handleMnemonicGenerate(req *Request) (interface{}, *Error) {
	var p GenerateParam
	if req.Params != nil {
		if err := parseParams(req, &p); err != nil {
			return nil, err
		}
	}
	wordCount := 12
	if p.WordCount != nil {
		wordCount = *p.WordCount
	}
	lang := p.Language
	if lang == "" {
		lang = string(wordlist.English)
	}

	m, err := masterkey.GenerateMnemonic(wordCount, lang)
	if err != nil {
		return nil, s.toRPCError("mnemonic_generate", err)
	}
	return &GenerateResult{Mnemonic: m}, nil
}

func (s *Server) handleMnemonicValidate(req *Request) (interface{}, *Error) {
	var p MnemonicParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}

	m, err := masterkey.ParseMnemonic(p.Mnemonic)
	if err != nil {
		if errors.Is(err, masterkey.ErrInvalidMnemonic) {
			return &ValidateResult{Valid: false, WordCount: len(strings.Fields(p.Mnemonic))}, nil
		}
		return nil, s.toRPCError("mnemonic_validate", err)
	}
	return &ValidateResult{
		Valid:     true,
		Language:  string(m.Language),
		WordCount: len(m.Words),
	}, nil
}

// ── Key handlers ────────────────────────────────────────────────────────

type deriveOutcome struct {
	key string
	err error
}

func (s *Server) handleKeyDerive(ctx context.Context, req *Request) (interface{}, *Error) {
	var p DeriveParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if _, err := masterkey.ParseMnemonic(p.Mnemonic); err != nil {
		return nil, s.toRPCError("key_derive", err)
	}

	select {
	case s.deriveSlots <- struct{}{}:
	case <-ctx.Done():
		return nil, s.toRPCError("key_derive", ctx.Err())
	}

	// Stretching cannot be interrupted, so the slot belongs to the
	// derivation and not to the request. A canceled caller returns early
	// while the slot stays taken until the work is done.
	done := make(chan deriveOutcome, 1)
	go func() {
		defer func() { <-s.deriveSlots }()
		key, err := s.deriver.DeriveMasterKeyContext(context.WithoutCancel(ctx), p.Mnemonic, p.Passphrase)
		done <- deriveOutcome{key: key, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, s.toRPCError("key_derive", out.err)
		}
		return &DeriveResult{Key: out.key}, nil
	case <-ctx.Done():
		s.logger.Debug().Msg("key_derive caller went away; derivation still holds its slot")
		return nil, s.toRPCError("key_derive", ctx.Err())
	}
}

func (s *Server) handleKeyInspect(req *Request) (interface{}, *Error) {
	var p KeyParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}

	info, err := masterkey.InspectMasterKey(strings.TrimSpace(p.Key))
	if err != nil {
		return nil, s.toRPCError("key_inspect", err)
	}
	return &InspectResult{
		Version:     int(info.Version),
		Compressed:  info.Compressed,
		PublicKey:   hex.EncodeToString(info.PublicKey),
		Fingerprint: hex.EncodeToString(info.Fingerprint[:]),
	}, nil
}

// ── Wordlist handlers ───────────────────────────────────────────────────

func (s *Server) handleWordsSearch(req *Request) (interface{}, *Error) {
	var p SearchParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	lang := p.Language
	if lang == "" {
		lang = string(wordlist.English)
	}
	limit := DefaultMaxResults
	if p.MaxResults != nil {
		limit = *p.MaxResults
	}

	words, err := wordsearch.SearchWords(p.Query, lang, limit)
	if err != nil {
		return nil, s.toRPCError("words_search", err)
	}
	return &SearchResult{Words: words}, nil
}

func (s *Server) handleLangList(_ *Request) (interface{}, *Error) {
	langs := wordlist.Languages()
	result := LanguagesResult{Languages: make([]LanguageInfo, 0, len(langs))}
	for _, lang := range langs {
		info := LanguageInfo{Name: string(lang)}
		if l, err := wordlist.Get(lang); err == nil {
			info.Available = true
			info.Words = l.Len()
		}
		result.Languages = append(result.Languages, info)
	}
	return &result, nil
}

// ── Error mapping ───────────────────────────────────────────────────────

// toRPCError maps a domain error onto a JSON-RPC error. Internal failures
// are logged; input errors are not.
func (s *Server) toRPCError(method string, err error) *Error {
	switch {
	case errors.Is(err, masterkey.ErrInvalidMnemonic):
		return &Error{Code: CodeInvalidMnemonic, Message: err.Error()}
	case errors.Is(err, wordlist.ErrWordlistUnavailable):
		s.logger.Warn().Err(err).Str("method", method).Msg("Wordlist not provisioned")
		return &Error{Code: CodeWordlistUnavailable, Message: err.Error()}
	case masterkey.IsInvalidInput(err):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: CodeInternalError, Message: "request canceled"}
	default:
		s.logger.Error().Err(err).Str("method", method).Msg("RPC handler failed")
		return &Error{Code: CodeInternalError, Message: "internal error"}
	}
}
