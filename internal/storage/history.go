package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"scaledemo/internal/loadgen"
	"scaledemo/internal/report"
)

const bucketRuns = "runs"

// HistoryItem is one completed scenario run, keyed by run ID.
type HistoryItem struct {
	ID        string              `json:"id"`
	Timestamp time.Time           `json:"timestamp"`
	Scenario  string              `json:"scenario"`
	Profile   loadgen.Profile     `json:"profile"`
	Summary   report.SummaryStats `json:"summary"`
}

// Store keeps demo run history in a local bolt database.
type Store struct {
	db *bbolt.DB
}

// DefaultPath is ~/.scaledemo/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".scaledemo")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRuns))
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

func (s *Store) Save(item HistoryItem) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))

		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		return b.Put([]byte(item.ID), data)
	})
}

func (s *Store) List() []HistoryItem {
	var items []HistoryItem

	s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		c := b.Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var item HistoryItem
			if err := json.Unmarshal(v, &item); err == nil {
				items = append(items, item)
			}
		}
		return nil
	})

	return items
}

func (s *Store) Get(id string) (*HistoryItem, error) {
	var item HistoryItem
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		v := b.Get([]byte(id))
		if v == nil {
			return fmt.Errorf("run %s not found", id)
		}
		return json.Unmarshal(v, &item)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}
