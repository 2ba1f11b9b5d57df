// derive_key.go prints the WIF, compressed pubkey and fingerprint for a
// hex-encoded 32-byte secret. Handy for producing inspect test vectors.
// Usage: go run scripts/derive_key.go <hex-secret | file>
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/klingseed/internal/masterkey"
	"github.com/Klingon-tech/klingseed/pkg/crypto"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <hex-secret | file>")
		os.Exit(1)
	}
	keyHex := os.Args[1]
	if data, err := os.ReadFile(keyHex); err == nil {
		keyHex = string(data)
	}
	keyBytes, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(keyBytes) != crypto.SecretSize {
		fmt.Fprintf(os.Stderr, "secret must be %d bytes, got %d\n", crypto.SecretSize, len(keyBytes))
		os.Exit(1)
	}
	if !crypto.ValidSecret(keyBytes) {
		fmt.Fprintln(os.Stderr, "secret is zero or not below the secp256k1 order")
		os.Exit(1)
	}

	var secret [masterkey.KeySize]byte
	copy(secret[:], keyBytes)
	wif, err := masterkey.EncodeWIF(secret)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	info, err := masterkey.InspectMasterKey(wif)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("wif=%s\n", wif)
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(info.PublicKey))
	fmt.Printf("fingerprint=%s\n", hex.EncodeToString(info.Fingerprint[:]))
}
