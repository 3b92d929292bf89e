package peers

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
)

const (
	// DefaultTopologyFile is the name of the plain-text topology file in the
	// data directory.
	DefaultTopologyFile = "topology"

	jsonExt = ".json"
)

// jsonTopology is the JSON representation of a Topology.
type jsonTopology struct {
	Size  int         `json:"size"`
	Links [][2]NodeID `json:"links"`
}

// ParseTopology reads the plain-text format: one "from to" link per line.
func ParseTopology(r io.Reader, size int) (*Topology, error) {
	t := NewTopology(size)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("topology line %d: expected 2 ids, got %q", lineNo, line)
		}
		from, ok := ParseNodeID(fields[0], size)
		if !ok {
			return nil, fmt.Errorf("topology line %d: bad id %q", lineNo, fields[0])
		}
		to, ok := ParseNodeID(fields[1], size)
		if !ok {
			return nil, fmt.Errorf("topology line %d: bad id %q", lineNo, fields[1])
		}
		if err := t.AddLink(from, to); err != nil {
			return nil, fmt.Errorf("topology line %d: %v", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// FormatTopology writes t in the plain-text format.
func FormatTopology(w io.Writer, t *Topology) error {
	for _, l := range t.Links() {
		if _, err := fmt.Fprintf(w, "%d %d\n", l.From, l.To); err != nil {
			return err
		}
	}
	return nil
}

// MarshalTopology encodes t as JSON.
func MarshalTopology(t *Topology) ([]byte, error) {
	jt := jsonTopology{Size: t.Size(), Links: [][2]NodeID{}}
	for _, l := range t.Links() {
		jt.Links = append(jt.Links, [2]NodeID{l.From, l.To})
	}

	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)
	if err := enc.Encode(jt); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// UnmarshalTopology decodes the JSON form. A size recorded in the document
// must not exceed the universe size.
func UnmarshalTopology(data []byte, size int) (*Topology, error) {
	var jt jsonTopology
	jh := new(codec.JsonHandle)
	dec := codec.NewDecoder(bytes.NewBuffer(data), jh)
	if err := dec.Decode(&jt); err != nil {
		return nil, err
	}
	if jt.Size > size {
		return nil, fmt.Errorf("topology declares %d nodes, universe holds %d", jt.Size, size)
	}
	t := NewTopology(size)
	for _, l := range jt.Links {
		if err := t.AddLink(l[0], l[1]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// TopologyFile provides topology persistence on disk, in the plain-text form
// or, when the path ends in .json, in the JSON form.
type TopologyFile struct {
	l    sync.Mutex
	path string
}

// NewTopologyFile creates a TopologyFile for the given path. An empty path
// means DefaultTopologyFile inside base.
func NewTopologyFile(base, path string) *TopologyFile {
	if path == "" {
		path = filepath.Join(base, DefaultTopologyFile)
	}
	return &TopologyFile{
		path: path,
	}
}

// Path ...
func (f *TopologyFile) Path() string {
	return f.path
}

// Topology parses the underlying file.
func (f *TopologyFile) Topology(size int) (*Topology, error) {
	f.l.Lock()
	defer f.l.Unlock()

	buf, err := ioutil.ReadFile(f.path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading topology %s", f.path)
	}

	if strings.HasSuffix(f.path, jsonExt) {
		return UnmarshalTopology(buf, size)
	}
	return ParseTopology(bytes.NewReader(buf), size)
}

// Write persists t.
func (f *TopologyFile) Write(t *Topology) error {
	f.l.Lock()
	defer f.l.Unlock()

	var buf []byte
	if strings.HasSuffix(f.path, jsonExt) {
		b, err := MarshalTopology(t)
		if err != nil {
			return err
		}
		buf = b
	} else {
		var b bytes.Buffer
		if err := FormatTopology(&b, t); err != nil {
			return err
		}
		buf = b.Bytes()
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return errors.Wrap(err, "creating topology directory")
	}
	return ioutil.WriteFile(f.path, buf, 0644)
}
