package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomCode returns n characters from A-Z0-9.
// crypto/rand + rand.Int avoids modulo bias.
func RandomCode(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid length")
	}
	var sb strings.Builder
	alphaLen := big.NewInt(int64(len(codeCharset)))
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, alphaLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeCharset[num.Int64()])
	}
	return sb.String(), nil
}

// GenerateBookingCode → "BK-20250314-7QX2LM"
func GenerateBookingCode(now time.Time) (string, error) {
	suffix, err := RandomCode(6)
	if err != nil {
		return "", err
	}
	return "BK-" + now.Format("20060102") + "-" + suffix, nil
}

// GeneratePaymentCode → "PAY-20250314153000-K2P9"
func GeneratePaymentCode(now time.Time) (string, error) {
	suffix, err := RandomCode(4)
	if err != nil {
		return "", err
	}
	return "PAY-" + now.Format("20060102150405") + "-" + suffix, nil
}

// PtrTime returns pointer to time.Time
func PtrTime(t time.Time) *time.Time { return &t }
