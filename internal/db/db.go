package db

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/therealaleph/dnsstcloudflare/internal/constants"
	"go.etcd.io/bbolt"
)

var (
	db   *bbolt.DB
	once sync.Once
)

var (
	CacheBucket = []byte("cache")
	TagsBucket  = []byte("tags")
)

func Open() (*bbolt.DB, error) {
	var err error
	once.Do(func() {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			err = homeErr
			return
		}

		dbPath := filepath.Join(home, constants.ConfigDir)
		if err = os.MkdirAll(dbPath, 0700); err != nil {
			return
		}

		database, openErr := bbolt.Open(filepath.Join(dbPath, "dnsst.db"), 0600, nil)
		if openErr != nil {
			err = openErr
			return
		}
		db = database

		err = db.Update(func(tx *bbolt.Tx) error {
			if _, err := tx.CreateBucketIfNotExists(CacheBucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucketIfNotExists(TagsBucket); err != nil {
				return err
			}
			return nil
		})
	})

	return db, err
}

func Get(bucket, key []byte) ([]byte, error) {
	database, err := Open()
	if err != nil {
		return nil, err
	}

	var value []byte
	err = database.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return errors.New("bucket not found")
		}
		// b.Get returns a direct reference; copy it to a new slice.
		val := b.Get(key)
		if val != nil {
			value = append([]byte(nil), val...)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return value, nil
}

func Set(bucket, key, value []byte) error {
	database, err := Open()
	if err != nil {
		return err
	}

	return database.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return errors.New("bucket not found")
		}
		return b.Put(key, value)
	})
}

// AddTagsToKey associates a cache key with invalidation tags. Each tag maps
// to the set of cache keys written under it.
func AddTagsToKey(key string, tags []string) error {
	database, err := Open()
	if err != nil {
		return err
	}

	return database.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(TagsBucket)
		if b == nil {
			return errors.New("bucket not found")
		}
		for _, tag := range tags {
			var keys []string
			if existing := b.Get([]byte(tag)); existing != nil {
				if err := json.Unmarshal(existing, &keys); err != nil {
					keys = nil
				}
			}
			found := false
			for _, k := range keys {
				if k == key {
					found = true
					break
				}
			}
			if !found {
				keys = append(keys, key)
			}
			encoded, err := json.Marshal(keys)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(tag), encoded); err != nil {
				return err
			}
		}
		return nil
	})
}

// InvalidateTags drops every cache entry written under any of the given tags
// and the tag sets themselves.
func InvalidateTags(tags []string) error {
	database, err := Open()
	if err != nil {
		return err
	}

	return database.Update(func(tx *bbolt.Tx) error {
		tagsBucket := tx.Bucket(TagsBucket)
		cacheBucket := tx.Bucket(CacheBucket)
		if tagsBucket == nil || cacheBucket == nil {
			return errors.New("bucket not found")
		}
		for _, tag := range tags {
			encoded := tagsBucket.Get([]byte(tag))
			if encoded == nil {
				continue
			}
			var keys []string
			if err := json.Unmarshal(encoded, &keys); err == nil {
				for _, k := range keys {
					if err := cacheBucket.Delete([]byte(k)); err != nil {
						return err
					}
				}
			}
			if err := tagsBucket.Delete([]byte(tag)); err != nil {
				return err
			}
		}
		return nil
	})
}
