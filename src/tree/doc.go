// Package tree implements the in-tree: a node's local view of a spanning
// forest rooted at itself, stored as a fixed-capacity array of parent
// pointers.
//
// An edge (child, parent) means "to go up the tree from child, go through
// parent". The root is the owning node, so the path from the root down to any
// member is the sequence of hops a data message takes to reach that member.
//
// Merge
//
// Nodes periodically announce their in-tree as a breadth-first edge list.
// When node S receives the tree announced by neighbor R, it re-roots the
// announcement under itself (dropping anything hanging below S in R's view
// and adding the edge R -> S), discards the parts of its own R-branch that R
// no longer vouches for, and then merges both trees level by level, so that
// every node ends up at the smallest hop distance either side knows about.
// When both sides place a node at the same distance, the local tree keeps
// its edge. Whenever a node is relocated to a shorter distance, its old copy
// is removed together with everything below it (cascading removal), which
// keeps the result a forest at all times.
//
// Resolution
//
// PathFromRootToNode walks the tree depth-first to produce the hop sequence
// to a destination, and PathCache remembers, per announcing neighbor, which
// nodes sit in that neighbor's branch, so a relay can pick a next hop when
// the hop list carried by a message has gone stale.
package tree
