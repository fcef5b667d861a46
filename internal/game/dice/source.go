package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"strconv"
)

type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand. It is the default
// for live tables.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn panics with "dice: Intn called with n <= 0" when n <= 0, and on a
// crypto/rand failure.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// SeededSource is a deterministic Source. Two SeededSources built from the
// same seed produce the same sequence, which makes a roll replayable.
type SeededSource struct {
	seed  uint64
	rng   *mrand.Rand
	draws int64
}

// NewSeededSource creates a SeededSource from seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{
		seed: seed,
		rng:  mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Intn returns a value in [0, n).
//
// Precondition: n > 0.
func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.draws++
	return s.rng.IntN(n)
}

// Seed returns the seed the source was built from.
func (s *SeededSource) Seed() uint64 { return s.seed }

// Draws returns how many values have been drawn so far.
func (s *SeededSource) Draws() int64 { return s.draws }

// Seed is a flag.Value for a replay seed. It remembers whether the flag was
// given, so every uint64 including 0 is a replayable seed.
type Seed struct {
	n     uint64
	given bool
}

// String implements flag.Value.
func (s *Seed) String() string {
	if s == nil || !s.given {
		return ""
	}
	return strconv.FormatUint(s.n, 10)
}

// Set implements flag.Value.
func (s *Seed) Set(v string) error {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return err
	}
	s.n, s.given = n, true
	return nil
}

// Given reports whether a seed was set.
func (s *Seed) Given() bool { return s.given }

// Value returns the seed; it is meaningful only when Given.
func (s *Seed) Value() uint64 { return s.n }

// Source returns a SeededSource for a given seed and a CryptoSource otherwise.
func (s *Seed) Source() Source {
	if s.given {
		return NewSeededSource(s.n)
	}
	return NewCryptoSource()
}
