package store

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ugorji/go/codec"

	"github.com/mosaicnetworks/intree/src/peers"
)

// Store is an interface for received-record backends.
type Store interface {
	// Append adds a record at the end of the log.
	Append(rec Record) error
	// Records returns all the records in delivery order.
	Records() ([]Record, error)
	// Last returns the most recent record, or an Empty StoreErr.
	Last() (Record, error)
	// Len returns the number of records.
	Len() int
	// StorePath returns the on-disk location of the store, if any.
	StorePath() string
	// Close releases the resources held by the store.
	Close() error
}

// Record is a message delivered to this node.
type Record struct {
	Src     peers.NodeID
	Dest    peers.NodeID
	Payload string
	Tick    int
}

const (
	linePrefix = "Message from "
	lineSep    = " : "
)

// Line returns the received-record line "Message from <src> to <dest> :
// <payload>".
func (r Record) Line() string {
	return fmt.Sprintf("%s%d to %d%s%s", linePrefix, r.Src, r.Dest, lineSep, r.Payload)
}

// ParseLine decodes a line produced by Line. The tick is not part of the line
// and is left at zero.
func ParseLine(line string) (Record, error) {
	if !strings.HasPrefix(line, linePrefix) {
		return Record{}, fmt.Errorf("not a received-record line: %q", line)
	}
	head, payload, ok := strings.Cut(line[len(linePrefix):], lineSep)
	if !ok {
		return Record{}, fmt.Errorf("missing payload separator: %q", line)
	}
	var src, dest int
	if _, err := fmt.Sscanf(head, "%d to %d", &src, &dest); err != nil {
		return Record{}, fmt.Errorf("bad header %q: %v", head, err)
	}
	return Record{
		Src:     peers.NodeID(src),
		Dest:    peers.NodeID(dest),
		Payload: payload,
	}, nil
}

// Marshal encodes the record in canonical JSON.
func (r *Record) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(r); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal ...
func (r *Record) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(r)
}
