package masterkey

import (
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"
)

// SeedSize is the length of a derived seed in bytes (512 bits).
const SeedSize = 64

// Seed derives the BIP-39 seed of a parsed mnemonic using PBKDF2-SHA512.
// Both the sentence and the passphrase are NFKD-normalized here.
func (m Mnemonic) Seed(passphrase string) []byte {
	return bip39.NewSeed(norm.NFKD.String(m.String()), norm.NFKD.String(passphrase))
}

// SeedFromMnemonic parses a mnemonic and derives its 512-bit seed.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	m, err := ParseMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	return m.Seed(passphrase), nil
}
