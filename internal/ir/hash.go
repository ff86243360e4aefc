package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainDescriptor  = "typerel/descriptor/v1"
	DomainBindings    = "typerel/bindings/v1"
	DomainDefinitions = "typerel/definitions/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the content-addressed identity of a descriptor.
// Structurally equal descriptors with the same property order hash equally.
func Hash(n Node) (string, error) {
	canonical, err := MarshalNode(n)
	if err != nil {
		return "", fmt.Errorf("Hash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDescriptor, canonical), nil
}

// BindingsHash computes the identity of an inference binding set.
func BindingsHash(bindings map[string]Node) (string, error) {
	h, err := namedHash(DomainBindings, bindings)
	if err != nil {
		return "", fmt.Errorf("BindingsHash: %w", err)
	}
	return h, nil
}

// DefinitionsHash computes the identity of a definitions map. Two maps with
// the same names bound to structurally equal descriptors hash equally.
func DefinitionsHash(defs map[string]Node) (string, error) {
	h, err := namedHash(DomainDefinitions, defs)
	if err != nil {
		return "", fmt.Errorf("DefinitionsHash: %w", err)
	}
	return h, nil
}

func namedHash(domain string, named map[string]Node) (string, error) {
	obj := make(map[string]any, len(named))
	for name, n := range named {
		v, err := ToWire(n)
		if err != nil {
			return "", fmt.Errorf("%q: %w", name, err)
		}
		obj[name] = v
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustHash is like Hash but panics on error.
// Use only in tests or when the descriptor is known to be well formed.
func MustHash(n Node) string {
	h, err := Hash(n)
	if err != nil {
		panic(err)
	}
	return h
}
