package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	AddressLength = 20
	HashLength    = 32
)

// Hash represents the 32 byte Keccak256 hash of arbitrary data.
type Hash [HashLength]byte

func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

func (h Hash) Bytes() []byte  { return h[:] }
func (h Hash) String() string { return "Mh" + hex.EncodeToString(h[:]) }

// Keccak256Hash calculates and returns the Keccak256 hash of the input data.
func Keccak256Hash(data ...[]byte) Hash {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return BytesToHash(d.Sum(nil))
}

/////////// Address

type Address [AddressLength]byte

func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}
func StringToAddress(s string) Address { return BytesToAddress([]byte(s)) }
func HexToAddress(s string) Address    { return BytesToAddress(FromHex(s, "Mx")) }

// NameToAddress derives a deterministic address for a named system account
// (treasury, platform recipient in tests, etc).
func NameToAddress(name string) Address {
	return BytesToAddress(Keccak256Hash([]byte(name)).Bytes()[12:])
}

// IsHexAddress verifies whether a string can represent a valid hex-encoded
// address or not.
func IsHexAddress(s string) bool {
	if hasHexPrefix(s, "Mx") {
		s = s[2:]
	}
	return len(s) == 2*AddressLength && isHex(s)
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Hex() string {
	return "Mx" + hex.EncodeToString(a[:])
}

// String implements the stringer interface and is used also by the logger.
func (a Address) String() string {
	return a.Hex()
}

// Sets the address to the value of b. If b is larger than len(a) the leading bytes are dropped
func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(input []byte) error {
	s := string(input)
	if !IsHexAddress(s) {
		return fmt.Errorf("invalid address %q", s)
	}
	*a = HexToAddress(s)
	return nil
}

func (a Address) Compare(a2 Address) int {
	return bytes.Compare(a[:], a2[:])
}

// FromHex returns the bytes represented by the hexadecimal string s.
// s may be prefixed with prefix.
func FromHex(s string, prefix string) []byte {
	if hasHexPrefix(s, prefix) {
		s = s[len(prefix):]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	h, _ := hex.DecodeString(s)
	return h
}

func hasHexPrefix(str, prefix string) bool {
	return len(str) >= len(prefix) && strings.EqualFold(str[:len(prefix)], prefix)
}

func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isHex(str string) bool {
	if len(str)%2 != 0 {
		return false
	}
	for _, c := range []byte(str) {
		if !isHexCharacter(c) {
			return false
		}
	}
	return true
}

/////////// Coin

// CoinID identifies the unit a payment is made in.
type CoinID uint32

const (
	// ReferenceCoin is the unit prices, balances and payouts are denominated in.
	ReferenceCoin CoinID = 0
	// NativeCoin is the ledger's own unit, accepted for funding through the price oracle.
	NativeCoin CoinID = 1
)

func (c CoinID) String() string {
	switch c {
	case ReferenceCoin:
		return "REF"
	case NativeCoin:
		return "NATIVE"
	}
	return fmt.Sprintf("%d", uint32(c))
}

func (c CoinID) IsValid() bool {
	return c == ReferenceCoin || c == NativeCoin
}

/////////// Pool

// PoolType names one of the shared reward pools.
type PoolType byte

const (
	PoolLeadership PoolType = iota
	PoolCommunity
	PoolClub
	PoolAlgorithmic
)

// PoolTypes lists every pool in storage order.
var PoolTypes = []PoolType{PoolLeadership, PoolCommunity, PoolClub, PoolAlgorithmic}

func (p PoolType) String() string {
	switch p {
	case PoolLeadership:
		return "leadership"
	case PoolCommunity:
		return "community"
	case PoolClub:
		return "club"
	case PoolAlgorithmic:
		return "algorithmic"
	}
	return fmt.Sprintf("pool(%d)", byte(p))
}

func (p PoolType) IsValid() bool {
	return p <= PoolAlgorithmic
}

// ParsePoolType is the inverse of PoolType.String.
func ParsePoolType(s string) (PoolType, error) {
	for _, p := range PoolTypes {
		if p.String() == strings.ToLower(s) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown pool %q", s)
}

// BigBP is the basis points denominator as a big.Int. Do not mutate.
var BigBP = big.NewInt(BasisPoints)
