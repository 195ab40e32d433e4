// Package journal records write-back outcomes in a local bbolt file so an
// interrupted commit run can be resumed without repeating edits.
package journal

import (
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
)

// Entry is one recorded outcome.
type Entry struct {
	Target  string    `msgpack:"target"`
	QID     string    `msgpack:"qid"`
	OSMID   int64     `msgpack:"osm_id"`
	Outcome string    `msgpack:"outcome"`
	At      time.Time `msgpack:"at"`
}

// Journal is a bbolt-backed outcome ledger with one bucket per target.
type Journal struct {
	db *bbolt.DB
	mu sync.Mutex
}

// Open opens or creates the journal file at path.
func Open(path string) (*Journal, error) {
	db, err := bbolt.Open(path, constants.FilePermissions, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	return &Journal{db: db}, nil
}

// Key returns the lookup key for a row.
func Key(qid string, osmID int64) []byte {
	return []byte(qid + "|" + strconv.FormatInt(osmID, 10))
}

// Record stores e, replacing any earlier entry for the same row and target.
func (j *Journal) Record(e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	buf, err := msgpack.Marshal(&e)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(e.Target))
		if err != nil {
			return err
		}
		return b.Put(Key(e.QID, e.OSMID), buf)
	})
}

// Lookup returns the entry recorded for the row, if any.
func (j *Journal) Lookup(target, qid string, osmID int64) (Entry, bool, error) {
	var (
		entry Entry
		found bool
	)
	err := j.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(target))
		if b == nil {
			return nil
		}
		buf := b.Get(Key(qid, osmID))
		if buf == nil {
			return nil
		}
		found = true
		return msgpack.Unmarshal(buf, &entry)
	})
	return entry, found, err
}

// Entries returns every entry for target in key order.
func (j *Journal) Entries(target string) ([]Entry, error) {
	var entries []Entry
	err := j.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(target))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var e Entry
			if err := msgpack.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	})
	return entries, err
}

// Close releases the underlying file.
func (j *Journal) Close() error {
	return j.db.Close()
}
