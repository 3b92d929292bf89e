package peers

import (
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// NodeID identifies a node in the universe [0, N).
type NodeID int

// None is the NodeID used for "no node", eg. the parent of a root.
const None NodeID = -1

// Valid returns true if id belongs to a universe of the given size.
func (id NodeID) Valid(size int) bool {
	return id >= 0 && int(id) < size
}

// String ...
func (id NodeID) String() string {
	return strconv.Itoa(int(id))
}

// ParseNodeID parses a decimal id and checks it against the universe size.
func ParseNodeID(s string, size int) (NodeID, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return None, false
	}
	id := NodeID(v)
	if !id.Valid(size) {
		return None, false
	}
	return id, true
}

// NodeSet is a set of NodeIDs with a fixed capacity. Ids outside the
// capacity are ignored by Add and never contained.
type NodeSet struct {
	size int
	bits *bitset.BitSet
}

// NewNodeSet creates an empty set for a universe of the given size.
func NewNodeSet(size int, ids ...NodeID) *NodeSet {
	s := &NodeSet{
		size: size,
		bits: bitset.New(uint(size)),
	}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Size returns the capacity of the set.
func (s *NodeSet) Size() int {
	return s.size
}

// Add inserts id.
func (s *NodeSet) Add(id NodeID) {
	if id.Valid(s.size) {
		s.bits.Set(uint(id))
	}
}

// Remove deletes id.
func (s *NodeSet) Remove(id NodeID) {
	if id.Valid(s.size) {
		s.bits.Clear(uint(id))
	}
}

// Contains ...
func (s *NodeSet) Contains(id NodeID) bool {
	return id.Valid(s.size) && s.bits.Test(uint(id))
}

// Len returns the number of ids in the set.
func (s *NodeSet) Len() int {
	return int(s.bits.Count())
}

// Empty ...
func (s *NodeSet) Empty() bool {
	return s.bits.None()
}

// Clear removes every id.
func (s *NodeSet) Clear() {
	s.bits.ClearAll()
}

// IDs returns the members in ascending order.
func (s *NodeSet) IDs() []NodeID {
	res := make([]NodeID, 0, s.Len())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		res = append(res, NodeID(i))
	}
	return res
}

// Clone returns an independent copy.
func (s *NodeSet) Clone() *NodeSet {
	return &NodeSet{
		size: s.size,
		bits: s.bits.Clone(),
	}
}

// Difference returns the ids of s that are not in other.
func (s *NodeSet) Difference(other *NodeSet) *NodeSet {
	return &NodeSet{
		size: s.size,
		bits: s.bits.Difference(other.bits),
	}
}

// Union returns the ids that are in s or in other.
func (s *NodeSet) Union(other *NodeSet) *NodeSet {
	return &NodeSet{
		size: s.size,
		bits: s.bits.Union(other.bits),
	}
}

// Equal ...
func (s *NodeSet) Equal(other *NodeSet) bool {
	return s.size == other.size && s.bits.Equal(other.bits)
}

// String renders the set as "{0 1 4}".
func (s *NodeSet) String() string {
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}
