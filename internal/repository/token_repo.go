package repository

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

type kvTokenRepository struct {
	store KVStore
}

func NewTokenRepository(store KVStore) domain.TokenRepository {
	return &kvTokenRepository{store: store}
}

// GetToken returns "" when no readable token is stored.
func (r *kvTokenRepository) GetToken(ctx context.Context) (string, error) {
	var token string
	err := getJSON(ctx, r.store, KeyToken, &token)
	if err != nil {
		var storageErr *StorageError
		if errors.Is(err, ErrNotFound) || (errors.As(err, &storageErr) && storageErr.Op == "decode") {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

func (r *kvTokenRepository) SetToken(ctx context.Context, token string) error {
	return setJSON(ctx, r.store, KeyToken, token)
}

func (r *kvTokenRepository) ClearToken(ctx context.Context) error {
	if err := r.store.Delete(ctx, KeyToken); err != nil {
		return &StorageError{Op: "delete", Key: KeyToken, Err: err}
	}
	return nil
}
