package net

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/intree/src/peers"
)

const channelFilePrefix = "channel_"

// FileTransport implements the Transport interface over append-only files
// in a shared directory. The from->to queue is the file channel_<from>_<to>.
// Receivers remember how far they have read each channel and only consume
// complete lines, so writers in other processes may append concurrently.
type FileTransport struct {
	sync.Mutex
	dir      string
	size     int
	writers  map[channelKey]*os.File
	offsets  map[channelKey]int64
	deferred map[peers.NodeID]error
	shutdown bool
	logger   *logrus.Entry
}

// NewFileTransport opens a transport over dir. The directory must already
// exist and be writable; an unavailable directory is reported as an error
// which callers treat as fatal.
func NewFileTransport(dir string, size int, logger *logrus.Entry) (*FileTransport, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "channel directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("channel directory %s is not a directory", dir)
	}

	tmp, err := os.CreateTemp(dir, ".writable-")
	if err != nil {
		return nil, errors.Wrapf(err, "channel directory %s is not writable", dir)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}

	return &FileTransport{
		dir:      dir,
		size:     size,
		writers:  make(map[channelKey]*os.File),
		offsets:  make(map[channelKey]int64),
		deferred: make(map[peers.NodeID]error),
		logger:   logger,
	}, nil
}

// ChannelPath returns the file backing the from->to queue.
func (f *FileTransport) ChannelPath(from, to peers.NodeID) string {
	return filepath.Join(f.dir, fmt.Sprintf("%s%d_%d", channelFilePrefix, from, to))
}

// Send implements the Transport interface.
func (f *FileTransport) Send(from, to peers.NodeID, line string) error {
	if !from.Valid(f.size) || !to.Valid(f.size) {
		return ErrNoChannel
	}
	if strings.ContainsAny(line, "\r\n") {
		return errors.Errorf("line for channel %d->%d spans several lines", from, to)
	}

	f.Lock()
	defer f.Unlock()

	if f.shutdown {
		return ErrTransportShutdown
	}

	k := channelKey{from, to}
	w, ok := f.writers[k]
	if !ok {
		var err error
		w, err = os.OpenFile(f.ChannelPath(from, to), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrapf(err, "opening channel %d->%d", from, to)
		}
		f.writers[k] = w
	}

	if _, err := io.WriteString(w, line+"\n"); err != nil {
		return errors.Wrapf(err, "writing channel %d->%d", from, to)
	}
	return nil
}

// ReceiveAll implements the Transport interface. Lines consumed before a
// channel fails to read are returned without error; the failure is reported
// by the next call, which consumes nothing.
func (f *FileTransport) ReceiveAll(id peers.NodeID) ([]string, error) {
	f.Lock()
	defer f.Unlock()

	if f.shutdown {
		return nil, ErrTransportShutdown
	}

	if err, ok := f.deferred[id]; ok {
		delete(f.deferred, id)
		return nil, err
	}

	lines := []string{}
	for from := 0; from < f.size; from++ {
		if peers.NodeID(from) == id {
			continue
		}
		got, err := f.drain(channelKey{peers.NodeID(from), id})
		if err != nil {
			if len(lines) == 0 {
				return nil, err
			}
			f.deferred[id] = err
			return lines, nil
		}
		lines = append(lines, got...)
	}
	return lines, nil
}

func (f *FileTransport) drain(k channelKey) ([]string, error) {
	path := f.ChannelPath(k.from, k.to)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening channel %d->%d", k.from, k.to)
	}
	defer file.Close()

	offset := f.offsets[k]
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seeking channel %d->%d", k.from, k.to)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading channel %d->%d", k.from, k.to)
	}

	// only complete lines; a partial write is picked up next time
	last := bytes.LastIndexByte(data, '\n')
	if last < 0 {
		return nil, nil
	}
	data = data[:last+1]
	f.offsets[k] = offset + int64(len(data))

	var lines []string
	for _, l := range bytes.Split(data[:last], []byte{'\n'}) {
		lines = append(lines, string(bytes.TrimRight(l, "\r")))
	}

	f.logger.WithFields(logrus.Fields{
		"from":  k.from,
		"to":    k.to,
		"lines": len(lines),
	}).Debug("Drained channel")

	return lines, nil
}

// Close implements the Transport interface. Channel files are left in place.
func (f *FileTransport) Close() error {
	f.Lock()
	defer f.Unlock()

	if f.shutdown {
		return nil
	}
	f.shutdown = true

	var firstErr error
	for k, w := range f.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "closing channel %d->%d", k.from, k.to)
		}
	}
	f.writers = nil
	return firstErr
}
