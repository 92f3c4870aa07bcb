// Package corpus expands a small scenario catalogue into a large,
// seeded, reproducible corpus. Two runs with the same seed text produce
// byte-identical scenario sequences, across process restarts.
package corpus

import "unicode/utf16"

// FNV-1a 64-bit parameters.
const (
	fnvOffset64 = 0xcbf29ce484222325
	fnvPrime64  = 0x100000001b3
)

// DeriveSeed maps seed text to a uint64 via FNV-1a-64, folding each
// UTF-16 code unit of the text into the hash. This is the single source
// of randomness for both expansion and shuffling; wall-clock or system
// entropy would break reproducibility.
//
// hash/fnv is byte-oriented and cannot be used here: the fold unit is
// the UTF-16 code unit, so surrogate pairs hash as two units.
func DeriveSeed(seedText string) uint64 {
	hash := uint64(fnvOffset64)
	for _, unit := range utf16.Encode([]rune(seedText)) {
		hash ^= uint64(unit)
		hash *= fnvPrime64
	}
	return hash
}
