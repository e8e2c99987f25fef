package room

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"strings"
)

const (
	// CodeAlphabet omits 0, 1, I and O, which are easily confused.
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength   = 5

	// maxCodeAttempts bounds collision retries in Create.
	maxCodeAttempts = 5
)

// CodeSource produces candidate room codes.
type CodeSource func() string

// RandomCode creates a random room code.
func RandomCode() string {
	code := make([]byte, CodeLength)
	for i := range CodeLength {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(CodeAlphabet))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = CodeAlphabet[rand.Intn(len(CodeAlphabet))]
			continue
		}
		code[i] = CodeAlphabet[n.Int64()]
	}
	return string(code)
}

// NormalizeCode trims and upper-cases a client-supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
