// Package cachemeta reads and writes the metadata sidecar that accompanies
// each cached HTML entry: the source URL, fetch time, and a content hash used
// to verify the stored bytes and to detect cache-key collisions.
package cachemeta

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Suffix is appended to a cache entry's filename to name its sidecar.
const Suffix = ".meta"

// Metadata verification errors.
var (
	ErrNoMetadata   = errors.New("no metadata sidecar found")
	ErrNoHash       = errors.New("no hash recorded in metadata")
	ErrHashMismatch = errors.New("cached bytes do not match recorded hash")
)

// Metadata describes one cached document.
type Metadata struct {
	FetchedAt time.Time
	URL       string
	SHA256    string
	Source    string
}

// CalculateHash computes the SHA-256 hash of the cached bytes.
func CalculateHash(body []byte) string {
	sum := sha256.Sum256(body)

	return hex.EncodeToString(sum[:])
}

// New builds the metadata for a freshly fetched document.
func New(url string, body []byte) *Metadata {
	return &Metadata{
		URL:       url,
		FetchedAt: time.Now().UTC(),
		SHA256:    CalculateHash(body),
		Source:    "network",
	}
}

// Encode renders the metadata as KEY: value lines.
func (m *Metadata) Encode() []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "URL: %s\n", m.URL)
	fmt.Fprintf(&sb, "FETCHED_AT: %s\n", m.FetchedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "SHA256: %s\n", m.SHA256)
	fmt.Fprintf(&sb, "SOURCE: %s\n", m.Source)

	return []byte(sb.String())
}

// Decode parses KEY: value lines back into Metadata. Unknown keys are ignored
// so the format can grow without breaking older entries.
func Decode(data []byte) *Metadata {
	meta := &Metadata{}

	for line := range strings.SplitSeq(string(data), "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		switch key {
		case "URL":
			meta.URL = val
		case "FETCHED_AT":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.FetchedAt = t
			}
		case "SHA256":
			meta.SHA256 = val
		case "SOURCE":
			meta.Source = val
		}
	}

	return meta
}

// Write persists the sidecar next to its cache entry.
func Write(path string, m *Metadata) error {
	if err := os.WriteFile(path, m.Encode(), 0644); err != nil {
		return fmt.Errorf("failed to write metadata sidecar: %w", err)
	}

	return nil
}

// Read loads a sidecar. A missing sidecar returns ErrNoMetadata; callers treat
// that as a degraded entry, not a failure.
func Read(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoMetadata
		}

		return nil, fmt.Errorf("failed to read metadata sidecar: %w", err)
	}

	return Decode(data), nil
}

// Verify checks the cached bytes against the recorded hash.
func Verify(m *Metadata, body []byte) error {
	if m.SHA256 == "" {
		return ErrNoHash
	}

	calculated := CalculateHash(body)
	if calculated != m.SHA256 {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, m.SHA256, calculated)
	}

	return nil
}
