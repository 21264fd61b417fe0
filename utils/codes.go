package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var ErrCodeSpaceExhausted = errors.New("could not generate a unique code")

// RandomCode returns n characters drawn uniformly from A-Z and 0-9.
func RandomCode(n int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// UniqueCode samples codes until exists reports a free one, giving up with
// ErrCodeSpaceExhausted after attempts tries.
func UniqueCode(ctx context.Context, length, attempts int, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < attempts; i++ {
		code, err := RandomCode(length)
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}
