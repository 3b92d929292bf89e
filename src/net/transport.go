package net

import (
	"github.com/pkg/errors"

	"github.com/mosaicnetworks/intree/src/peers"
)

var (
	// ErrTransportShutdown is returned when operations on a transport are
	// invoked after it's been terminated.
	ErrTransportShutdown = errors.New("transport shutdown")

	// ErrNoChannel is returned by Send when no queue exists between the two
	// nodes.
	ErrNoChannel = errors.New("no channel between nodes")
)

// Transport provides an interface for moving record lines between nodes. A
// Transport keeps one FIFO queue per (sender, receiver) pair.
type Transport interface {

	// Send enqueues line on the from->to queue. It never blocks on the
	// receiver.
	Send(from, to peers.NodeID, line string) error

	// ReceiveAll removes and returns every line queued for id. Lines from
	// the same sender keep their order; senders are visited in ascending id
	// order. It returns an empty slice when nothing is pending.
	ReceiveAll(id peers.NodeID) ([]string, error)

	// Close permanently closes a transport, freeing any associated
	// resources.
	Close() error
}

// Observer is notified of every line accepted by a transport.
type Observer func(from, to peers.NodeID, line string)
