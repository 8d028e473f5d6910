package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const BoltBucket = "storefront"

type boltKVStore struct {
	db     *bolt.DB
	bucket []byte
	log    *logrus.Logger
}

// NewBoltKVStore expects the bucket to exist already (see db.OpenBolt).
func NewBoltKVStore(db *bolt.DB, logger *logrus.Logger) KVStore {
	return &boltKVStore{
		db:     db,
		bucket: []byte(BoltBucket),
		log:    logger,
	}
}

func (s *boltKVStore) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("bucket %s missing", s.bucket)
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction.
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *boltKVStore) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("bucket %s missing", s.bucket)
		}
		return b.Put([]byte(key), value)
	})
	if err != nil {
		s.log.Errorf("BoltStore: Failed to write key %s: %v", key, err)
		return err
	}
	return nil
}

func (s *boltKVStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (s *boltKVStore) Close() error {
	return s.db.Close()
}
