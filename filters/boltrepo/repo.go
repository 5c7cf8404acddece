// Package boltrepo provides a BoltDB-backed filter table repository.
package boltrepo

import (
	"encoding/json"
	"fmt"

	"github.com/opencustody/consolekit/filters"
	"go.etcd.io/bbolt"
)

const bucketName = "filters"

var _ filters.Repo = (*Repo)(nil)

// Repo stores the whole filter table as one JSON payload under a fixed
// key: { "filters": { tableKey: values } }.
type Repo struct {
	db  *bbolt.DB
	key string
}

type payload struct {
	Filters map[string]filters.Values `json:"filters"`
}

// New creates the repo and ensures its bucket exists.
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
		return nil, fmt.Errorf("create filters bucket: %w", err)
	}

	return &Repo{db: db, key: key}, nil
}

func (r *Repo) Load() (map[string]filters.Values, error) {
	var p payload
	err := r.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(bucketName)).Get([]byte(r.key))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &p)
	})
	if err != nil {
		return nil, fmt.Errorf("load filter table: %w", err)
	}
	return p.Filters, nil
}

func (r *Repo) Save(table map[string]filters.Values) error {
	raw, err := json.Marshal(payload{Filters: table})
	if err != nil {
		return fmt.Errorf("marshal filter table: %w", err)
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(r.key), raw)
	})
}
