package masterkey

import (
	"context"

	"golang.org/x/text/unicode/norm"

	"github.com/Klingon-tech/klingseed/internal/log"
)

// Deriver derives master keys with a fixed set of stretch parameters.
type Deriver struct {
	params StretchParams
}

// NewDeriver returns a Deriver using DefaultParams.
func NewDeriver() *Deriver {
	return &Deriver{params: DefaultParams()}
}

// Params returns the stretch parameters in use.
func (d *Deriver) Params() StretchParams { return d.params }

// DeriveMasterKey runs the full pipeline: parse the mnemonic, derive the
// BIP-39 seed, stretch it with scrypt and encode the result WIF-style.
// Identical inputs always produce the identical string.
func (d *Deriver) DeriveMasterKey(mnemonic, passphrase string) (string, error) {
	defer log.Benchmark("derive_master_key")()

	m, err := ParseMnemonic(mnemonic)
	if err != nil {
		return "", err
	}
	pw := norm.NFKD.String(passphrase)

	seed := m.Seed(pw)
	key, err := stretch(seed, pw, d.params)
	clear(seed)
	if err != nil {
		log.MasterKey.Error().Err(err).Msg("Key stretching failed")
		return "", err
	}

	encoded, err := EncodeWIF(key)
	clear(key[:])
	if err != nil {
		log.MasterKey.Error().Err(err).Msg("Key encoding failed")
		return "", err
	}
	log.MasterKey.Debug().
		EmbedObject(log.MnemonicShape{
			Language:      string(m.Language),
			Words:         len(m.Words),
			HasPassphrase: passphrase != "",
		}).
		Msg("Master key derived")
	return encoded, nil
}

type deriveResult struct {
	key string
	err error
}

// DeriveMasterKeyContext runs DeriveMasterKey on its own goroutine. If ctx
// ends first it returns ctx.Err(); the computation still finishes in the
// background and its result is dropped.
func (d *Deriver) DeriveMasterKeyContext(ctx context.Context, mnemonic, passphrase string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	done := make(chan deriveResult, 1)
	go func() {
		key, err := d.DeriveMasterKey(mnemonic, passphrase)
		done <- deriveResult{key: key, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.key, r.err
	}
}

var defaultDeriver = NewDeriver()

// DeriveMasterKey derives a master key with the default parameters.
func DeriveMasterKey(mnemonic, passphrase string) (string, error) {
	return defaultDeriver.DeriveMasterKey(mnemonic, passphrase)
}

// DeriveMasterKeyContext is the context-aware form of DeriveMasterKey.
func DeriveMasterKeyContext(ctx context.Context, mnemonic, passphrase string) (string, error) {
	return defaultDeriver.DeriveMasterKeyContext(ctx, mnemonic, passphrase)
}
