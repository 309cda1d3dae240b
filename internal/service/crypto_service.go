package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const seedBytes = 32

// ProvablyFairCrypto implements ports.CryptoService with SHA-256 primitives.
// All outputs are deterministic functions of their explicit inputs; no global
// random state is consulted outside GenerateSeed.
type ProvablyFairCrypto struct{}

// NewProvablyFairCrypto creates the crypto service used by the fairness scheme.
func NewProvablyFairCrypto() *ProvablyFairCrypto {
	return &ProvablyFairCrypto{}
}

// GenerateSeed returns a base64-encoded 32-byte secret seed from crypto/rand.
func (s *ProvablyFairCrypto) GenerateSeed() (string, error) {
	buf := make([]byte, seedBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random seed bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Hash returns the SHA-256 hex digest of input. Used to publish the seed
// commitment: hash(serverSeed) is public while serverSeed stays secret.
func (s *ProvablyFairCrypto) Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// HMAC returns the HMAC-SHA256 hex digest of data keyed by key. This is the
// core of outcome derivation: key is the server seed, data is clientSeed:nonce.
func (s *ProvablyFairCrypto) HMAC(key, data string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
