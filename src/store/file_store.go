package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	cm "github.com/mosaicnetworks/intree/src/common"
	"github.com/mosaicnetworks/intree/src/peers"
)

// ReceivedFileName returns the name of a node's received-record file.
func ReceivedFileName(id peers.NodeID) string {
	return fmt.Sprintf("%d_received", id)
}

// FileStore implements the Store interface over an append-only text file, one
// "Message from <src> to <dest> : <payload>" line per record. Ticks are not
// persisted.
type FileStore struct {
	sync.Mutex
	path   string
	file   *os.File
	count  int
	last   Record
	closed bool
}

// NewFileStore opens, or creates, the received file of node id in dir.
// Records already present in the file are kept.
func NewFileStore(dir string, id peers.NodeID) (*FileStore, error) {
	path := filepath.Join(dir, ReceivedFileName(id))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening received file %s", path)
	}

	s := &FileStore{
		path: path,
		file: file,
	}

	existing, err := readRecords(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	s.count = len(existing)
	if s.count > 0 {
		s.last = existing[s.count-1]
	}

	return s, nil
}

func readRecords(r io.ReadSeeker) ([]Record, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking received file")
	}
	res := []Record{}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "reading received file")
		}
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			rec, perr := ParseLine(line)
			if perr != nil {
				return nil, errors.Wrap(perr, "parsing received file")
			}
			res = append(res, rec)
		}
		if err == io.EOF {
			return res, nil
		}
	}
}

// Append implements the Store interface. Payloads spanning several lines are
// rejected since they could not be read back.
func (s *FileStore) Append(rec Record) error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return cm.NewStoreErr("Record", cm.Closed, "")
	}

	if strings.ContainsAny(rec.Payload, "\r\n") {
		return errors.Errorf("payload of record from %d to %d spans several lines", rec.Src, rec.Dest)
	}

	if _, err := io.WriteString(s.file, rec.Line()+"\n"); err != nil {
		return errors.Wrapf(err, "writing %s", s.path)
	}
	s.count++
	s.last = rec
	return nil
}

// Records implements the Store interface.
func (s *FileStore) Records() ([]Record, error) {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return nil, cm.NewStoreErr("Record", cm.Closed, "")
	}
	return readRecords(s.file)
}

// Last implements the Store interface.
func (s *FileStore) Last() (Record, error) {
	s.Lock()
	defer s.Unlock()
	if s.count == 0 {
		return Record{}, cm.NewStoreErr("Record", cm.Empty, "")
	}
	return s.last, nil
}

// Len implements the Store interface.
func (s *FileStore) Len() int {
	s.Lock()
	defer s.Unlock()
	return s.count
}

// StorePath implements the Store interface.
func (s *FileStore) StorePath() string {
	return s.path
}

// Close implements the Store interface.
func (s *FileStore) Close() error {
	s.Lock()
	defer s.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}
