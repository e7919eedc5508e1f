package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

func NewOpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 10
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewNumericCode — случайный цифровой код фиксированной длины (ведущие нули допустимы).
func NewNumericCode(nDigits int) (string, error) {
	if nDigits <= 0 {
		nDigits = 6
	}
	buf := make([]byte, nDigits)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}
