package net

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/tree"
)

// ErrMalformed is the cause of every Parse error.
var ErrMalformed = errors.New("malformed record")

// IsMalformed reports whether err was produced by Parse.
func IsMalformed(err error) bool {
	return errors.Cause(err) == ErrMalformed
}

// ErrInvalidPayload is returned for payloads that cannot travel inside a
// single record line.
var ErrInvalidPayload = errors.New("invalid payload")

// CheckPayload verifies that p can be carried by a Data record: records are
// newline-terminated, so p may not contain line breaks.
func CheckPayload(p string) error {
	if i := strings.IndexAny(p, "\r\n"); i >= 0 {
		return errors.Wrapf(ErrInvalidPayload, "line break at byte %d", i)
	}
	return nil
}

func malformed(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformed, format, args...)
}

// Parse decodes a single record line. Node ids must belong to the universe
// [0, size). Unknown tags, bad ids and truncated records yield an error
// whose cause is ErrMalformed.
func Parse(line string, size int) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	tag, rest := cutToken(line)
	switch tag {
	case helloTag:
		return parseHello(rest, size)
	case intreeTag:
		return parseIntree(rest, size)
	case dataTag:
		return parseData(rest, size)
	case "":
		return nil, malformed("empty line")
	default:
		return nil, malformed("unknown tag %q", tag)
	}
}

func parseHello(rest string, size int) (Record, error) {
	fields := strings.Fields(rest)
	if len(fields) != 1 {
		return nil, malformed("Hello expects one id, got %d fields", len(fields))
	}
	id, ok := peers.ParseNodeID(fields[0], size)
	if !ok {
		return nil, malformed("Hello sender %q", fields[0])
	}
	return Hello{From: id}, nil
}

func parseIntree(rest string, size int) (Record, error) {
	tok, rest := cutToken(rest)
	root, ok := peers.ParseNodeID(tok, size)
	if !ok {
		return nil, malformed("Intree root %q", tok)
	}
	edges, err := parseEdges(rest, size)
	if err != nil {
		return nil, err
	}
	return Intree{RootedAt: root, Edges: edges}, nil
}

// parseEdges reads a sequence of "(child parent)" pairs. Whitespace between
// and inside the parentheses is optional.
func parseEdges(s string, size int) ([]tree.Edge, error) {
	var edges []tree.Edge
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return edges, nil
		}
		if s[0] != '(' {
			return nil, malformed("expected '(' at %q", s)
		}
		end := strings.IndexByte(s, ')')
		if end < 0 {
			return nil, malformed("unterminated edge %q", s)
		}
		pair := strings.Fields(s[1:end])
		if len(pair) != 2 {
			return nil, malformed("edge %q", s[:end+1])
		}
		child, ok := peers.ParseNodeID(pair[0], size)
		if !ok {
			return nil, malformed("edge child %q", pair[0])
		}
		parent, ok := peers.ParseNodeID(pair[1], size)
		if !ok {
			return nil, malformed("edge parent %q", pair[1])
		}
		edges = append(edges, tree.Edge{Child: child, Parent: parent})
		s = s[end+1:]
	}
}

func parseData(rest string, size int) (Record, error) {
	var ids []peers.NodeID
	for {
		var tok string
		tok, rest = cutToken(rest)
		if tok == "" {
			return nil, malformed("Data without %q", beginTag)
		}
		if tok == beginTag {
			break
		}
		id, ok := peers.ParseNodeID(tok, size)
		if !ok {
			return nil, malformed("Data id %q", tok)
		}
		ids = append(ids, id)
	}
	// src, dest and at least one hop
	if len(ids) < 3 {
		return nil, malformed("Data carries %d ids", len(ids))
	}
	return Data{
		Src:     ids[0],
		Dest:    ids[1],
		Hops:    ids[2:],
		Payload: rest,
	}, nil
}

// cutToken splits s after its first space-delimited token. The remainder
// starts right after the single separating space, so payloads keep their
// own leading whitespace.
func cutToken(s string) (string, string) {
	s = strings.TrimLeft(s, " ")
	tok, rest, _ := strings.Cut(s, " ")
	return tok, rest
}
