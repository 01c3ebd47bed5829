package dexmath

import "github.com/holiman/uint256"

// IntegerSqrt returns floor(sqrt(n)) using Newton's method over integers
// (the Babylonian loop from Uniswap V2 Math.sol). It is exact for every
// 256-bit input and returns 0 for n == 0.
func IntegerSqrt(n *uint256.Int) *uint256.Int {
	if n.IsZero() {
		return new(uint256.Int)
	}
	if n.LtUint64(4) {
		return uint256.NewInt(1)
	}

	// z is the current estimate, x the next one. Iterates stay >= sqrt(n),
	// so n/x + x cannot overflow.
	z := new(uint256.Int).Set(n)
	x := new(uint256.Int).Rsh(n, 1)
	x.AddUint64(x, 1)

	t := new(uint256.Int)
	for x.Lt(z) {
		z.Set(x)
		t.Div(n, x)
		t.Add(t, x)
		x.Rsh(t, 1)
	}

	return z
}
