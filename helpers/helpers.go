package helpers

import (
	"fmt"
	"math/big"
)

const basisPoints = 10000

// StringToBigInt converts string to BigInt, panics on empty strings and errors
func StringToBigInt(s string) *big.Int {
	if s == "" {
		panic("string is empty")
	}

	b, success := big.NewInt(0).SetString(s, 10)
	if !success {
		panic(fmt.Sprintf("Cannot decode %s into big.Int", s))
	}

	return b
}

// StringToBigIntOrZero is StringToBigInt for optional fields: empty strings decode to zero
func StringToBigIntOrZero(s string) *big.Int {
	if s == "" {
		return big.NewInt(0)
	}
	return StringToBigInt(s)
}

// IsValidBigInt verifies that string is a valid non-negative int
func IsValidBigInt(s string) bool {
	if s == "" {
		return false
	}

	b, success := big.NewInt(0).SetString(s, 10)
	if !success {
		return false
	}

	if b.Cmp(big.NewInt(0)) == -1 {
		return false
	}

	return true
}

// MulBP returns amount * bp / 10000, rounded down
func MulBP(amount *big.Int, bp uint64) *big.Int {
	v := big.NewInt(0).Mul(amount, big.NewInt(0).SetUint64(bp))
	return v.Quo(v, big.NewInt(basisPoints))
}

// MulDivCeil returns a * b / c rounded up
func MulDivCeil(a, b, c *big.Int) *big.Int {
	num := big.NewInt(0).Mul(a, b)
	q, r := big.NewInt(0).QuoRem(num, c, big.NewInt(0))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// Min returns a copy of the smaller value
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return big.NewInt(0).Set(a)
	}
	return big.NewInt(0).Set(b)
}

// Sum adds up values, nil entries count as zero
func Sum(values ...*big.Int) *big.Int {
	total := big.NewInt(0)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}
