package db

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// OpenBolt opens (creating if needed) a bbolt file and makes sure the given
// bucket exists.
func OpenBolt(path, bucket string) (*bolt.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path cannot be empty")
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return db, nil
}
