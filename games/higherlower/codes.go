/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	// CodeLength is the number of digits in a session code.
	CodeLength = 6

	// DefaultCodeAttempts bounds the collision retries of the code generator.
	DefaultCodeAttempts = 10000

	codeFloor = 100000
	codeSpan  = 900000
)

// CodeSource draws candidate session codes.
type CodeSource interface {
	NextCode() string
}

// RandomCodes draws codes in 100000-999999 from crypto/rand.
type RandomCodes struct{}

func (RandomCodes) NextCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	return strconv.FormatInt(codeFloor+n.Int64(), 10)
}

// generateCode returns the first code from src that taken rejects, giving up
// with ErrCodesExhausted after attempts draws. It does not reserve the code.
func generateCode(src CodeSource, attempts int, taken func(string) bool) (string, error) {
	for i := 0; i < attempts; i++ {
		code := src.NextCode()
		if !taken(code) {
			return code, nil
		}
	}

	return "", ErrCodesExhausted
}
