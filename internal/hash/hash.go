// Package hash provides content hashing for merge results.
//
// iconmerge reports a SHA-256 digest for every icon it writes so that a run
// can be compared against a later one. The package provides both a real
// implementation using crypto/sha256 and a fake implementation for testing.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Hasher provides an abstraction for hashing operations.
type Hasher interface {
	// HashBytes computes the hash of data.
	HashBytes(data []byte) string

	// HashFile computes the hash of the file at the given path.
	HashFile(path string) (string, error)
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashBytes computes the hex SHA-256 digest of data.
func (h *SHA256Hasher) HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile computes the SHA-256 hash of the file at the given path.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// FakeHasher implements Hasher with deterministic hashes for testing.
type FakeHasher struct {
	hashes map[string]string
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{
		hashes: make(map[string]string),
	}
}

// SetHash sets the hash returned for a path or for exact content.
func (h *FakeHasher) SetHash(key, hash string) {
	h.hashes[key] = hash
}

// HashBytes returns the predetermined hash for data.
func (h *FakeHasher) HashBytes(data []byte) string {
	if hash, ok := h.hashes[string(data)]; ok {
		return hash
	}
	return "fakehash"
}

// HashFile returns the predetermined hash for the given path.
func (h *FakeHasher) HashFile(path string) (string, error) {
	if hash, ok := h.hashes[path]; ok {
		return hash, nil
	}
	return "fakehash", nil
}
