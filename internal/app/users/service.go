package users

import (
	"context"

	"tunecrate/internal/store"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, username, password string) (store.User, error)
	UserByCredentials(ctx context.Context, username, password string) (store.User, error)
}

// TokenIssuer signs identity tokens for authenticated users.
type TokenIssuer interface {
	Issue(user store.User) (string, error)
}

// Service exposes account workflows.
type Service interface {
	Register(ctx context.Context, username, password string) (store.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type service struct {
	store  Store
	issuer TokenIssuer
}

// New wires a Service backed by the provided Store and token issuer.
func New(store Store, issuer TokenIssuer) Service {
	return &service{store: store, issuer: issuer}
}

// Register creates an account. The role is always the regular user role; a
// caller-supplied role is never honored.
func (s *service) Register(ctx context.Context, username, password string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.CreateUser(ctx, username, password)
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	user, err := s.store.UserByCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.issuer.Issue(user)
}
