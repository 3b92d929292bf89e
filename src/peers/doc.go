// Package peers describes who a node can talk to.
//
// NodeIDs live in a small fixed universe [0, N). A Topology is the static
// adjacency list the harness wires into transport queues; a NodeSet is the
// fixed-capacity set used for neighbor bookkeeping (IncomingNeighbors and the
// liveness epoch marks).
//
// A topology can be read from the plain-text format, one directed link per
// line:
//
//	0 1
//	1 0
//	1 2
//	# comments and blank lines are ignored
//
// or from JSON:
//
//	{"size": 3, "links": [[0, 1], [1, 2]]}
package peers
