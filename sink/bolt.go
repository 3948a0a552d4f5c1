package sink

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/crawlserv-go/sentimentcore/aggregate"
)

// rowsBucket is the single bbolt bucket Bolt writes into.
var rowsBucket = []byte("rows")

// Bolt persists rows into a bbolt database, one JSON value per row keyed by
// its bucket date. Re-writing the same date overwrites the previous value.
type Bolt struct {
	db     *bbolt.DB
	closed bool
}

// OpenBolt opens (creating if necessary) a bbolt database at path and
// prepares its rows bucket.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("sink: open bolt database: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rowsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sink: create rows bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Write(rows []aggregate.Row) error {
	if b.closed {
		return errSinkClosed
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(rowsBucket)
		for _, row := range rows {
			key := row.Date
			if key == "" {
				key = "(none)"
			}
			value, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("sink: marshal row %q: %w", key, err)
			}
			if err := bucket.Put([]byte(key), value); err != nil {
				return fmt.Errorf("sink: put row %q: %w", key, err)
			}
		}
		return nil
	})
}

func (b *Bolt) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}
