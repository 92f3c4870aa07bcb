// Package flake measures non-determinism: it reruns a fixed scenario
// set, fingerprints every per-scenario verdict, and reports the
// fraction of observations that drift from the baseline, plus
// wall-clock reproduction-time percentiles.
package flake

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/wireparity/wireparity/internal/diff"
)

// domainResult namespaces result fingerprints. The version suffix
// allows the digest layout to change without silently colliding with
// old artifacts.
const domainResult = "wireparity/result/v1"

// Field and record separators inside the digested byte stream. Using
// control characters prevents boundary ambiguity between fields.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// Fingerprint produces a deterministic digest of a DiffResult. Any
// change to status, error message, or any entry's path, values, or note
// changes the fingerprint.
func Fingerprint(result diff.Result) string {
	h := sha256.New()
	h.Write([]byte(domainResult))
	h.Write([]byte{0x00})

	h.Write([]byte(string(result.Status)))
	h.Write([]byte(fieldSep))
	h.Write([]byte(result.ErrorMessage))
	for _, entry := range result.Entries {
		h.Write([]byte(recordSep))
		h.Write([]byte(entry.Path))
		h.Write([]byte(fieldSep))
		h.Write([]byte(entry.Left))
		h.Write([]byte(fieldSep))
		h.Write([]byte(entry.Right))
		h.Write([]byte(fieldSep))
		h.Write([]byte(entry.Note))
	}
	return hex.EncodeToString(h.Sum(nil))
}
