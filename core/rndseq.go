package core

import (
	"crypto/rand"
	"math/big"
)

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digits       = "0123456789"

	// DefaultRndSeqLength is the number of digits used by AddEndRndSeq
	// and AddBeforeRndSeq when no length is given.
	DefaultRndSeqLength = 3
)

// RandomAlphanumeric returns n random characters from [a-zA-Z0-9].
func RandomAlphanumeric(n int) string {
	return randomFrom(alphanumeric, n)
}

// RandomNumeric returns n random digits.
func RandomNumeric(n int) string {
	return randomFrom(digits, n)
}

// AddEndRndSeq appends random digits to prefix. The optional length
// defaults to DefaultRndSeqLength.
func AddEndRndSeq(prefix string, length ...int) string {
	return prefix + RandomNumeric(seqLength(length))
}

// AddBeforeRndSeq prepends random digits to suffix.
func AddBeforeRndSeq(suffix string, length ...int) string {
	return RandomNumeric(seqLength(length)) + suffix
}

func seqLength(length []int) int {
	if len(length) > 0 && length[0] > 0 {
		return length[0]
	}
	return DefaultRndSeqLength
}

func randomFrom(charset string, n int) string {
	if n <= 0 {
		return ""
	}

	max := big.NewInt(int64(len(charset)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("core: crypto/rand unavailable: " + err.Error())
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out)
}
