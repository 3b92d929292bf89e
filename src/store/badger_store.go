package store

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	cm "github.com/mosaicnetworks/intree/src/common"
)

const recordPrefix = "recv"

// BadgerStore implements the Store interface on top of a Badger database.
// Records are stored under sequential keys so that a restarted node resumes
// its log where it left off.
type BadgerStore struct {
	sync.Mutex
	db    *badger.DB
	path  string
	count int
}

// NewBadgerStore opens an existing database or creates a new one if nothing is
// found in path.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithTruncate(true)

	if logger != nil {
		opts = opts.WithLogger(logger.WithField("ns", "badger"))
	} else {
		opts = opts.WithLogger(nil)
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger database %s", path)
	}

	store := &BadgerStore{
		db:   handle,
		path: path,
	}

	count, err := store.dbCount()
	if err != nil {
		handle.Close()
		return nil, err
	}
	store.count = count

	return store, nil
}

func recordKey(index int) []byte {
	return []byte(fmt.Sprintf("%s_%09d", recordPrefix, index))
}

// Append implements the Store interface.
func (s *BadgerStore) Append(rec Record) error {
	s.Lock()
	defer s.Unlock()

	val, err := rec.Marshal()
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(s.count), val)
	})
	if err != nil {
		return errors.Wrap(err, "appending record")
	}

	s.count++
	return nil
}

// Records implements the Store interface.
func (s *BadgerStore) Records() ([]Record, error) {
	res := []Record{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(recordPrefix + "_")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var rec Record
			if err := rec.Unmarshal(data); err != nil {
				return err
			}
			res = append(res, rec)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "reading records")
	}
	return res, nil
}

// Last implements the Store interface.
func (s *BadgerStore) Last() (Record, error) {
	s.Lock()
	index := s.count - 1
	s.Unlock()

	if index < 0 {
		return Record{}, cm.NewStoreErr("Record", cm.Empty, "")
	}

	var rec Record
	key := recordKey(index)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return rec.Unmarshal(data)
	})

	return rec, mapError(err, "Record", string(key))
}

// Len implements the Store interface.
func (s *BadgerStore) Len() int {
	s.Lock()
	defer s.Unlock()
	return s.count
}

// StorePath returns the full path of the underlying Badger database directory.
func (s *BadgerStore) StorePath() string {
	return s.path
}

// Close closes the underlying Badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) dbCount() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(recordPrefix + "_")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func mapError(err error, name, key string) error {
	if err == badger.ErrKeyNotFound {
		return cm.NewStoreErr(name, cm.KeyNotFound, key)
	}
	return err
}
