package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 5
)

type codeStore interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// CodeGenerator produces the opaque 5-character security codes handed to
// applicants at creation time. The pre-check loop narrows the race window;
// the unique constraint on the column remains the source of truth, so a
// collision that slips through surfaces as a retryable conflict on insert.
type CodeGenerator struct {
	store       codeStore
	maxAttempts int
}

// NewCodeGenerator constructs a CodeGenerator.
func NewCodeGenerator(store codeStore, maxAttempts int) *CodeGenerator {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &CodeGenerator{store: store, maxAttempts: maxAttempts}
}

// Generate returns a candidate code not currently held by any submission,
// soft-deleted ones included. Storage errors propagate unretried.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	var code string
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		candidate, err := randomCode()
		if err != nil {
			return "", err
		}
		exists, err := g.store.CodeExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		code = candidate
		if !exists {
			return code, nil
		}
	}
	// Every candidate collided on the pre-check. Hand back the last one and
	// let the database constraint arbitrate.
	return code, nil
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate security code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
