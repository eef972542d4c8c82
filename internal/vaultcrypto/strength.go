package vaultcrypto

import "fmt"

// Strength names an Argon2id parameter profile. The three profiles and
// their exact parameters are fixed by contract; an implementer must not
// silently substitute weaker values.
type Strength string

const (
	Fast        Strength = "Fast"
	Recommended Strength = "Recommended"
	Paranoid    Strength = "Paranoid"
)

// Argon2Params holds the Argon2id cost parameters for one strength profile.
type Argon2Params struct {
	MemoryKiB   uint32 // Memory cost in KiB.
	Iterations  uint32 // Time cost (iterations).
	Parallelism uint8  // Parallelism factor (number of threads).
	KeyLen      uint32 // Length of the derived key in bytes.
}

var profiles = map[Strength]Argon2Params{
	Fast:        {MemoryKiB: 262_144, Iterations: 2, Parallelism: 2, KeyLen: 32},
	Recommended: {MemoryKiB: 524_288, Iterations: 3, Parallelism: 4, KeyLen: 32},
	Paranoid:    {MemoryKiB: 1_048_576, Iterations: 4, Parallelism: 4, KeyLen: 32},
}

// Params returns the Argon2id cost parameters for s, or an error if s
// names no known profile.
func (s Strength) Params() (Argon2Params, error) {
	p, ok := profiles[s]
	if !ok {
		return Argon2Params{}, fmt.Errorf("vaultcrypto: unknown strength profile %q", s)
	}

	return p, nil
}

// Valid reports whether s is one of the three known profiles.
func (s Strength) Valid() bool {
	_, ok := profiles[s]
	return ok
}

// DefaultStrength is used by Initialize when the caller does not pick one.
const DefaultStrength = Recommended
