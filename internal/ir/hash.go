package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainInterface separates declaration hashes from any other use of SHA-256
// over canonical JSON. The version suffix allows algorithm migration.
const DomainInterface = "busgen/interface/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DeclarationHash computes a content-addressed identity for a declaration.
// Generated files record it so stale output can be detected.
func DeclarationHash(d InterfaceDecl) (string, error) {
	canonical, err := MarshalCanonical(canonicalDecl(d))
	if err != nil {
		return "", fmt.Errorf("DeclarationHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainInterface, canonical), nil
}

// MustDeclarationHash is like DeclarationHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDeclarationHash(d InterfaceDecl) string {
	h, err := DeclarationHash(d)
	if err != nil {
		panic(err)
	}
	return h
}
