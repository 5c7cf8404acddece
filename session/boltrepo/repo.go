// Package boltrepo provides a BoltDB-backed session repository.
package boltrepo

import (
	"encoding/json"
	"fmt"

	"github.com/opencustody/consolekit/session"
	"go.etcd.io/bbolt"
)

const bucketName = "session"

var _ session.Repo = (*Repo)(nil)

// Repo stores the session snapshot as a JSON payload under a fixed key in
// a dedicated bucket.
type Repo struct {
	db  *bbolt.DB
	key string
}

// New creates the repo and ensures its bucket exists. The key is the fixed
// store name the snapshot is persisted under.
func New(db *bbolt.DB, key string) (*Repo, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if key == "" {
		return nil, fmt.Errorf("store key is required")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create session bucket: %w", err)
	}

	return &Repo{db: db, key: key}, nil
}

func (r *Repo) Load() (session.Session, bool, error) {
	var s session.Session
	found := false
	err := r.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket([]byte(bucketName)).Get([]byte(r.key))
		if payload == nil {
			return nil
		}
		if err := json.Unmarshal(payload, &s); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return session.Session{}, false, err
	}
	return s, found, nil
}

func (r *Repo) Save(s session.Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(r.key), payload)
	})
}

func (r *Repo) Delete() error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(r.key))
	})
}
