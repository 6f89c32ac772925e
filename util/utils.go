package util

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"

	"github.com/trustlevel/trustvote/types"
)

// RandomBytes generates a random byte slice of length n.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

// RandomHex generates a hex string of n random bytes.
func RandomHex(n int) string {
	return fmt.Sprintf("%x", RandomBytes(n))
}

// RandomInt generates a random integer between min and max.
func RandomInt(min, max int) int {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)))
	if err != nil {
		panic(err)
	}
	return int(num.Int64()) + min
}

// RandomUint64 generates a random uint64, never zero.
func RandomUint64() uint64 {
	for {
		if v := binary.BigEndian.Uint64(RandomBytes(8)); v != 0 {
			return v
		}
	}
}

// TrimHex trims the '0x' prefix from a hex string.
func TrimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// bn254BaseField contains the scalar field of the BN254 curve, the field the
// Poseidon hash operates on.
var bn254BaseField, _ = new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// BigToFF returns the finite field representation of the big.Int provided,
// using Euclidean modulus over the BN254 scalar field.
func BigToFF(iv *big.Int) *big.Int {
	z := big.NewInt(0)
	if c := iv.Cmp(bn254BaseField); c == 0 {
		return z
	} else if c != 1 && iv.Cmp(z) != -1 {
		return iv
	}
	return z.Mod(iv, bn254BaseField)
}

// Commitment derives a membership commitment from a participant secret. The
// secret never leaves the participant; only the Poseidon image of it is
// registered as an accumulator leaf.
func Commitment(secret []byte) (types.HexBytes, error) {
	hash, err := poseidon.HashBytes(secret)
	if err != nil {
		return nil, fmt.Errorf("could not hash secret: %w", err)
	}
	return hash.Bytes(), nil
}
