package repository

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type kvCartRepository struct {
	store KVStore
	log   *logrus.Logger
}

func NewCartRepository(store KVStore, logger *logrus.Logger) domain.CartRepository {
	return &kvCartRepository{store: store, log: logger}
}

// LoadCart treats a missing or corrupt cart as empty.
func (r *kvCartRepository) LoadCart(ctx context.Context) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := getJSON(ctx, r.store, KeyCart, &items)
	if err != nil {
		var storageErr *StorageError
		if errors.As(err, &storageErr) && (storageErr.Op == "decode" || errors.Is(err, ErrNotFound)) {
			if storageErr.Op == "decode" {
				r.log.Warnf("CartRepository: Discarding unreadable cart: %v", err)
			}
			return []domain.CartItem{}, nil
		}
		return nil, err
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

func (r *kvCartRepository) SaveCart(ctx context.Context, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	return setJSON(ctx, r.store, KeyCart, items)
}
