// Package session persists the API bearer token next to the roster mirror.
package session

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-roster/storage/mirror"
)

const tokenKey = "authToken"

type Store struct {
	kv mirror.Store
}

func NewStore(kv mirror.Store) *Store {
	return &Store{kv: kv}
}

// Token returns the saved bearer token, or "" when logged out.
func (s *Store) Token(ctx context.Context) (string, error) {
	data, found, err := s.kv.Get(ctx, tokenKey)
	if err != nil {
		return "", errors.Wrap(err, "reading session token")
	}
	if !found {
		return "", nil
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return errors.Wrap(s.kv.Set(ctx, tokenKey, []byte(token)), "saving session token")
}

func (s *Store) Clear(ctx context.Context) error {
	return errors.Wrap(s.kv.Delete(ctx, tokenKey), "clearing session token")
}
