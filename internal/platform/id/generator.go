package id

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// Length is the size of every fixture identity.
const Length = 16

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Largest multiple of len(alphabet) that fits in a byte; bytes above it are rejected.
const rejectAbove = 256 - (256 % len(alphabet))

// Generator creates 16-character alphanumeric identities for fixtures.
// seed is the fixture's natural key; implementations may ignore it.
type Generator interface {
	NewID(seed string) (string, error)
}

// RandomGenerator samples characters uniformly with crypto/rand.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID(_ string) (string, error) {
	var out strings.Builder
	out.Grow(Length)

	buf := make([]byte, Length*2)
	for out.Len() < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			out.WriteByte(alphabet[int(b)%len(alphabet)])
			if out.Len() == Length {
				break
			}
		}
	}

	return out.String(), nil
}

// URLGenerator derives the identity from the seed, so the same match URL
// always maps to the same id across cycles and instances.
type URLGenerator struct{}

func NewURLGenerator() *URLGenerator {
	return &URLGenerator{}
}

func (g *URLGenerator) NewID(seed string) (string, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return "", fmt.Errorf("seed is required for url derived ids")
	}

	sum := sha256.Sum256([]byte(seed))
	out := make([]byte, Length)
	for i := 0; i < Length; i++ {
		// two bytes per character keeps the modulo bias negligible
		v := binary.BigEndian.Uint16(sum[i*2 : i*2+2])
		out[i] = alphabet[int(v)%len(alphabet)]
	}

	return string(out), nil
}

// IsValid reports whether v has the identity shape.
func IsValid(v string) bool {
	if len(v) != Length {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

const (
	StrategyRandom = "random"
	StrategyURL    = "url"
)

// New builds the generator for a configured strategy.
func New(strategy string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyRandom:
		return NewRandomGenerator(), nil
	case StrategyURL:
		return NewURLGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}
