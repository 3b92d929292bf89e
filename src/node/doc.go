// Package node implements the routing engine of a single node.
//
// A Node is a sequential actor driven by ticks. On every tick it drains the
// lines queued for it on the Transport and dispatches them by type (Hello,
// Intree, Data), reconciles neighbor liveness on epoch boundaries, broadcasts
// Hello and Intree records when they are due, originates its outstanding
// message, and finally flushes everything it queued during the tick.
//
// The routing state (in-tree, path cache, neighbor sets) is only touched by
// the goroutine calling Tick. Other goroutines, eg. the HTTP service, read a
// Snapshot that is published at the end of every tick.
package node
