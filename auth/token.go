package auth

import (
	"context"
	"time"

	"github.com/reuben-baek/entity-service/domain"
)

// Token is the authentication of the current request.
type Token struct {
	user     *domain.User
	issuedAt time.Time
}

func NewToken(user *domain.User) *Token {
	return &Token{user: user, issuedAt: time.Now().UTC()}
}

// User may be nil for an anonymous token.
func (t *Token) User() *domain.User {
	if t == nil {
		return nil
	}
	return t.user
}

func (t *Token) IssuedAt() time.Time {
	return t.issuedAt
}

func (t *Token) Authenticated() bool {
	return t.User() != nil
}

type tokenKey struct{}

func WithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) (*Token, bool) {
	token, ok := ctx.Value(tokenKey{}).(*Token)
	return token, ok && token != nil
}
