// Package idgen issues CF registration and BP numbers for approved
// organisations.
package idgen

import (
	"crypto/rand"
	"math/big"
)

const (
	cfPrefix = "99"
	bpPrefix = "2000"
)

// NewCFNumber returns a 12 digit CF registration number: the fixed
// "99" prefix followed by 10 random digits.
func NewCFNumber() (string, error) {
	digits, err := randomDigits(10)
	if err != nil {
		return "", err
	}
	return cfPrefix + digits, nil
}

// NewBPNumber returns a 10 digit BP number: the fixed "2000" prefix
// followed by 6 random digits.
func NewBPNumber() (string, error) {
	digits, err := randomDigits(6)
	if err != nil {
		return "", err
	}
	return bpPrefix + digits, nil
}

func randomDigits(n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(10)
	for i := range buf {
		d, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}
