package net

import (
	"strconv"
	"strings"

	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/tree"
)

// Kind is the leading type tag of a record.
type Kind int

const (
	// KindUnknown is returned for lines that carry no known tag.
	KindUnknown Kind = iota
	// KindHello ...
	KindHello
	// KindIntree ...
	KindIntree
	// KindData ...
	KindData
)

const (
	helloTag  = "Hello"
	intreeTag = "Intree"
	dataTag   = "Data"
	beginTag  = "begin"
)

// String ...
func (k Kind) String() string {
	switch k {
	case KindHello:
		return helloTag
	case KindIntree:
		return intreeTag
	case KindData:
		return dataTag
	default:
		return "Unknown"
	}
}

// Record is implemented by the three record types.
type Record interface {
	Kind() Kind
	String() string
}

// Hello announces that From is alive. It is broadcast periodically.
type Hello struct {
	From peers.NodeID
}

// Kind implements Record.
func (h Hello) Kind() Kind { return KindHello }

// String implements Record.
func (h Hello) String() string {
	return helloTag + " " + h.From.String()
}

// Intree carries the in-tree of RootedAt as breadth-first (child, parent)
// edges. An empty edge list announces a root-only tree.
type Intree struct {
	RootedAt peers.NodeID
	Edges    []tree.Edge
}

// Kind implements Record.
func (i Intree) Kind() Kind { return KindIntree }

// String implements Record.
func (i Intree) String() string {
	var b strings.Builder
	b.WriteString(intreeTag)
	b.WriteByte(' ')
	b.WriteString(i.RootedAt.String())
	for _, e := range i.Edges {
		b.WriteByte(' ')
		b.WriteString(e.String())
	}
	return b.String()
}

// Data is an application payload source-routed from Src to Dest. Hops is the
// remaining hop list; its first element is the node the record is addressed
// to.
type Data struct {
	Src     peers.NodeID
	Dest    peers.NodeID
	Hops    []peers.NodeID
	Payload string
}

// Kind implements Record.
func (d Data) Kind() Kind { return KindData }

// String implements Record.
func (d Data) String() string {
	var b strings.Builder
	b.WriteString(dataTag)
	b.WriteByte(' ')
	b.WriteString(d.Src.String())
	b.WriteByte(' ')
	b.WriteString(d.Dest.String())
	for _, h := range d.Hops {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(int(h)))
	}
	b.WriteByte(' ')
	b.WriteString(beginTag)
	b.WriteByte(' ')
	b.WriteString(d.Payload)
	return b.String()
}

// NextHop returns the node the record is addressed to.
func (d Data) NextHop() (peers.NodeID, bool) {
	if len(d.Hops) == 0 {
		return peers.None, false
	}
	return d.Hops[0], true
}
