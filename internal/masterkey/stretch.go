package masterkey

import (
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// KeySize is the length of the stretched master key.
const KeySize = 32

// SaltPrefix is prepended to the normalized passphrase to form the scrypt salt.
const SaltPrefix = "pixa-bip39-"

// StretchParams holds scrypt cost parameters.
type StretchParams struct {
	LogN uint8 // N = 2^LogN
	R    int
	P    int
}

// N returns the CPU/memory cost.
func (p StretchParams) N() int { return 1 << p.LogN }

// MemoryBytes returns the scrypt working set, 128·r·N.
func (p StretchParams) MemoryBytes() int { return 128 * p.R * p.N() }

// Parameters are fixed at build time; keys derived with different values
// would not match.
const (
	stretchLogN = 17
	stretchR    = 16
	stretchP    = 2
)

// DefaultParams returns the parameters every master key is derived with.
func DefaultParams() StretchParams {
	return StretchParams{LogN: stretchLogN, R: stretchR, P: stretchP}
}

// testParams keeps unit tests fast.
var testParams = StretchParams{LogN: 4, R: 8, P: 1}

// stretch runs scrypt over seed with the passphrase-derived salt. The
// passphrase must already be NFKD-normalized.
func stretch(seed []byte, passphrase string, params StretchParams) ([KeySize]byte, error) {
	var key [KeySize]byte
	out, err := scrypt.Key(seed, []byte(SaltPrefix+passphrase), params.N(), params.R, params.P, KeySize)
	if err != nil {
		return key, fmt.Errorf("%w: %v", ErrStretch, err)
	}
	copy(key[:], out)
	clear(out)
	return key, nil
}
