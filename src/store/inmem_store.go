package store

import (
	"sync"

	cm "github.com/mosaicnetworks/intree/src/common"
)

// InmemStore implements the Store interface in memory. Records are lost when
// the process exits.
type InmemStore struct {
	sync.RWMutex
	records []Record
	closed  bool
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{}
}

// Append implements the Store interface.
func (s *InmemStore) Append(rec Record) error {
	s.Lock()
	defer s.Unlock()
	if s.closed {
		return cm.NewStoreErr("Record", cm.Closed, "")
	}
	s.records = append(s.records, rec)
	return nil
}

// Records implements the Store interface.
func (s *InmemStore) Records() ([]Record, error) {
	s.RLock()
	defer s.RUnlock()
	res := make([]Record, len(s.records))
	copy(res, s.records)
	return res, nil
}

// Last implements the Store interface.
func (s *InmemStore) Last() (Record, error) {
	s.RLock()
	defer s.RUnlock()
	if len(s.records) == 0 {
		return Record{}, cm.NewStoreErr("Record", cm.Empty, "")
	}
	return s.records[len(s.records)-1], nil
}

// Len implements the Store interface.
func (s *InmemStore) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.records)
}

// StorePath implements the Store interface.
func (s *InmemStore) StorePath() string {
	return ""
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	s.Lock()
	defer s.Unlock()
	s.closed = true
	return nil
}
