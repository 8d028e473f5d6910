package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type kvCatalogCache struct {
	store KVStore
	log   *logrus.Logger
}

func NewCatalogCache(store KVStore, logger *logrus.Logger) domain.ProductCache {
	return &kvCatalogCache{store: store, log: logger}
}

func (r *kvCatalogCache) Load(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := getJSON(ctx, r.store, KeyProducts, &products); err != nil {
		return nil, err
	}
	if products == nil {
		return nil, &StorageError{Op: "read", Key: KeyProducts, Err: ErrNotFound}
	}
	return products, nil
}

func (r *kvCatalogCache) Save(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	if err := setJSON(ctx, r.store, KeyProducts, products); err != nil {
		r.log.Errorf("CatalogCache: Failed to save %d products: %v", len(products), err)
		return err
	}
	r.log.Debugf("CatalogCache: Saved %d products", len(products))
	return nil
}

func (r *kvCatalogCache) LoadOrSeed(ctx context.Context) []domain.Product {
	products, err := r.Load(ctx)
	if err != nil {
		r.log.Warnf("CatalogCache: Cache unavailable, using seed catalog: %v", err)
		return domain.SeedProducts()
	}
	return products
}

func getJSON(ctx context.Context, store KVStore, key string, dst interface{}) error {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return &StorageError{Op: "read", Key: key, Err: err}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &StorageError{Op: "decode", Key: key, Err: fmt.Errorf("corrupt value: %w", err)}
	}
	return nil
}

func setJSON(ctx context.Context, store KVStore, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Err: err}
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	return nil
}
