package util

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestBigToFF(t *testing.T) {
	t.Parallel()
	field, ok := new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)
	qt.Assert(t, ok, qt.IsTrue)

	// Values inside the field pass through.
	small := big.NewInt(12345)
	qt.Assert(t, BigToFF(small).Cmp(small), qt.Equals, 0)

	// The modulus itself reduces to zero.
	qt.Assert(t, BigToFF(new(big.Int).Set(field)).Sign(), qt.Equals, 0)

	// Values above the modulus are reduced.
	over := new(big.Int).Add(field, big.NewInt(7))
	qt.Assert(t, BigToFF(over).Cmp(big.NewInt(7)), qt.Equals, 0)
}

func TestCommitment(t *testing.T) {
	t.Parallel()

	secret := []byte("participant secret")
	c1, err := Commitment(secret)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, len(c1), qt.Not(qt.Equals), 0)

	// Deterministic for the same secret.
	c2, err := Commitment(secret)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, c1.String(), qt.Equals, c2.String())

	// Different secrets give different commitments.
	c3, err := Commitment([]byte("another secret"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, c3.String(), qt.Not(qt.Equals), c1.String())
}

func TestRandomUint64(t *testing.T) {
	t.Parallel()
	seen := map[uint64]bool{}
	for i := 0; i < 100; i++ {
		v := RandomUint64()
		qt.Assert(t, v, qt.Not(qt.Equals), uint64(0))
		seen[v] = true
	}
	qt.Assert(t, len(seen), qt.Equals, 100)
}

func TestTrimHex(t *testing.T) {
	t.Parallel()
	qt.Assert(t, TrimHex("0xdeadbeef"), qt.Equals, "deadbeef")
	qt.Assert(t, TrimHex("0XDEADBEEF"), qt.Equals, "DEADBEEF")
	qt.Assert(t, TrimHex("deadbeef"), qt.Equals, "deadbeef")
	qt.Assert(t, TrimHex("0x"), qt.Equals, "")
}
