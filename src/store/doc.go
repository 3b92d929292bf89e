// Package store keeps the log of messages delivered to a node.
//
// Every Data record that reaches its destination is appended to the node's
// Store as a Record. Three implementations share the Store interface:
// InmemStore, BadgerStore which persists records in a Badger database, and
// FileStore which writes the human readable "<id>_received" file.
package store
