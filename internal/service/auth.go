package service

import (
	"context"

	"github.com/campushub/campushub/internal/domain"
)

// StaticTokenValidator resolves bearer tokens to user IDs from a fixed map.
// Identity management proper lives in an external provider; this stand-in
// keeps the middleware contract satisfiable in development and tests.
type StaticTokenValidator struct {
	tokens map[string]string
}

func NewStaticTokenValidator(tokens map[string]string) *StaticTokenValidator {
	if tokens == nil {
		tokens = map[string]string{}
	}
	return &StaticTokenValidator{tokens: tokens}
}

// ValidateToken returns the user ID bound to the token.
func (v *StaticTokenValidator) ValidateToken(ctx context.Context, token string) (string, error) {
	userID, ok := v.tokens[token]
	if !ok || userID == "" {
		return "", domain.ErrInvalidToken
	}
	return userID, nil
}
