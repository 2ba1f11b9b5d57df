package main

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/Klingon-tech/klingseed/internal/masterkey"
	"github.com/Klingon-tech/klingseed/internal/rpc"
	"github.com/Klingon-tech/klingseed/internal/rpcclient"
	"github.com/Klingon-tech/klingseed/internal/wordsearch"
	"github.com/Klingon-tech/klingseed/pkg/wordlist"
)

// rpcTimeout covers a queued derivation on a busy daemon.
const rpcTimeout = 5 * time.Minute

// backend runs commands either in-process or against klingseedd.
type backend interface {
	Generate(wordCount int, language string) (string, error)
	Validate(mnemonic string) (*rpc.ValidateResult, error)
	Derive(ctx context.Context, mnemonic, passphrase string) (string, error)
	Inspect(key string) (*rpc.InspectResult, error)
	Search(query, language string, maxResults int) ([]string, error)
	Languages() ([]rpc.LanguageInfo, error)
}

// ── Local ───────────────────────────────────────────────────────────────

type localBackend struct {
	deriver *masterkey.Deriver
}

func newLocalBackend() *localBackend {
	return &localBackend{deriver: masterkey.NewDeriver()}
}

func (b *localBackend) Generate(wordCount int, language string) (string, error) {
	return masterkey.GenerateMnemonic(wordCount, language)
}

func (b *localBackend) Validate(mnemonic string) (*rpc.ValidateResult, error) {
	m, err := masterkey.ParseMnemonic(mnemonic)
	if errors.Is(err, masterkey.ErrInvalidMnemonic) {
		return &rpc.ValidateResult{WordCount: len(strings.Fields(mnemonic))}, nil
	}
	if err != nil {
		return nil, err
	}
	return &rpc.ValidateResult{Valid: true, Language: m.Language.String(), WordCount: len(m.Words)}, nil
}

func (b *localBackend) Derive(ctx context.Context, mnemonic, passphrase string) (string, error) {
	return b.deriver.DeriveMasterKeyContext(ctx, mnemonic, passphrase)
}

func (b *localBackend) Inspect(key string) (*rpc.InspectResult, error) {
	info, err := masterkey.InspectMasterKey(strings.TrimSpace(key))
	if err != nil {
		return nil, err
	}
	return &rpc.InspectResult{
		Version:     int(info.Version),
		Compressed:  info.Compressed,
		PublicKey:   hex.EncodeToString(info.PublicKey),
		Fingerprint: hex.EncodeToString(info.Fingerprint[:]),
	}, nil
}

func (b *localBackend) Search(query, language string, maxResults int) ([]string, error) {
	return wordsearch.SearchWords(query, language, maxResults)
}

func (b *localBackend) Languages() ([]rpc.LanguageInfo, error) {
	var out []rpc.LanguageInfo
	for _, lang := range wordlist.Languages() {
		info := rpc.LanguageInfo{Name: lang.String()}
		if l, err := wordlist.Get(lang); err == nil {
			info.Available = true
			info.Words = l.Len()
		}
		out = append(out, info)
	}
	return out, nil
}

// ── Remote ──────────────────────────────────────────────────────────────

type remoteBackend struct {
	client *rpcclient.Client
}

func newRemoteBackend(url string) *remoteBackend {
	return &remoteBackend{client: rpcclient.NewWithTimeout(url, rpcTimeout)}
}

func (b *remoteBackend) Generate(wordCount int, language string) (string, error) {
	var result rpc.GenerateResult
	err := b.client.Call("mnemonic_generate", rpc.GenerateParam{WordCount: &wordCount, Language: language}, &result)
	return result.Mnemonic, err
}

func (b *remoteBackend) Validate(mnemonic string) (*rpc.ValidateResult, error) {
	var result rpc.ValidateResult
	if err := b.client.Call("mnemonic_validate", rpc.MnemonicParam{Mnemonic: mnemonic}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *remoteBackend) Derive(ctx context.Context, mnemonic, passphrase string) (string, error) {
	var result rpc.DeriveResult
	err := b.client.CallContext(ctx, "key_derive", rpc.DeriveParam{Mnemonic: mnemonic, Passphrase: passphrase}, &result)
	return result.Key, err
}

func (b *remoteBackend) Inspect(key string) (*rpc.InspectResult, error) {
	var result rpc.InspectResult
	if err := b.client.Call("key_inspect", rpc.KeyParam{Key: key}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *remoteBackend) Search(query, language string, maxResults int) ([]string, error) {
	var result rpc.SearchResult
	err := b.client.Call("words_search", rpc.SearchParam{Query: query, Language: language, MaxResults: &maxResults}, &result)
	return result.Words, err
}

func (b *remoteBackend) Languages() ([]rpc.LanguageInfo, error) {
	var result rpc.LanguagesResult
	if err := b.client.Call("lang_list", nil, &result); err != nil {
		return nil, err
	}
	return result.Languages, nil
}
