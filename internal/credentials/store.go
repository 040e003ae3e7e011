// Package credentials persists the auth token and the last known user
// profile. Those are the only two durable pieces of client state: the
// cart, orders and notifications are always re-fetched from the server
// as authoritative.
//
// The store does no local expiry checks. The server decides whether a
// token is still valid; the api package reacts to its 401.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "github.com/boltdb/bolt"

	"suju/storefront/internal/models"
)

const bucketName = "credentials"

var (
	keyToken = []byte("token")
	keyUser  = []byte("user")
)

type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the state file and ensures the bucket exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Token returns the stored token, or false when none is stored.
func (s *Store) Token() (string, bool) {
	var token string
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get(keyToken); v != nil {
			token = string(v)
		}
		return nil
	})
	return token, token != ""
}

func (s *Store) SetToken(token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put(keyToken, []byte(token))
	})
}

// Clear removes the token and the cached profile together. Logout and
// session invalidation both funnel through here.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if err := b.Delete(keyToken); err != nil {
			return err
		}
		return b.Delete(keyUser)
	})
}

// StoredUser returns the cached profile, or nil when none is cached.
// It is used to paint the session instantly before the server confirms.
func (s *Store) StoredUser() (*models.User, error) {
	var raw []byte
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get(keyUser); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if raw == nil {
		return nil, nil
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &user, nil
}

func (s *Store) SetStoredUser(user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode cached user: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put(keyUser, raw)
	})
}
