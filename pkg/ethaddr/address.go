// Package ethaddr provides the 20-byte account identity used across the faucet
package ethaddr

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Length is the size of an address in bytes
const Length = 20

// Sentinel errors for address parsing
var (
	ErrInvalidLength = errors.New("address must be 20 bytes (40 hex digits)")
	ErrInvalidHex    = errors.New("address contains non-hexadecimal characters")
)

// Address is a 20-byte account identifier.
// The zero value is the null account ("zero address").
type Address [Length]byte

// Zero is the null account. Minting emits transfers from it; sending to it is rejected.
var Zero Address

// Parse converts a hex string (with or without the 0x prefix) into an Address
func Parse(s string) (Address, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	if len(s) != Length*2 {
		return Address{}, fmt.Errorf("%w: got %d hex digits", ErrInvalidLength, len(s))
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}

	var a Address
	copy(a[:], raw)
	return a, nil
}

// MustParse is Parse that panics on malformed input. For constants and tests.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether the address is the null account
func (a Address) IsZero() bool {
	return a == Zero
}

// String formats the address as lowercase hex with the 0x prefix
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText implements encoding.TextMarshaler so addresses render as hex in JSON
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
