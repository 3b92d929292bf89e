package node

import (
	"testing"
	"time"

	"github.com/mosaicnetworks/intree/src/net"
	"github.com/mosaicnetworks/intree/src/peers"
)

func TestLivenessEpoch(t *testing.T) {
	l := newLiveness(testSize)

	l.onHello(1)
	l.onIntree(2)

	if !l.isLive(1) {
		t.Fatal("Hello sender should be live immediately")
	}
	if l.isLive(2) {
		t.Fatal("Intree-only sender should wait for the epoch boundary")
	}

	if dead := l.reconcile(); len(dead) != 0 {
		t.Fatalf("expected no dead neighbors, got %v", dead)
	}
	if !l.isLive(1) || !l.isLive(2) {
		t.Fatalf("expected 1 and 2 live, got %v", l.incoming)
	}

	// only 2 is heard during the next epoch
	l.onIntree(2)
	dead := l.reconcile()
	if len(dead) != 1 || dead[0] != 1 {
		t.Fatalf("expected [1] dead, got %v", dead)
	}
	if l.isLive(1) {
		t.Fatal("1 should have been removed")
	}

	// nobody heard: everybody dies, marks were cleared
	dead = l.reconcile()
	if len(dead) != 1 || dead[0] != 2 {
		t.Fatalf("expected [2] dead, got %v", dead)
	}
	if !l.incoming.Empty() {
		t.Fatalf("expected no live neighbors, got %v", l.incoming)
	}
}

func TestOutboxFlushOrder(t *testing.T) {
	o := NewOutbox()
	o.Push(3, 1, net.Hello{From: 3})
	o.Push(0, 1, net.Data{Src: 0, Dest: 4, Hops: []peers.NodeID{1, 4}, Payload: "a"})
	o.Push(3, 2, net.Intree{RootedAt: 3})
	o.Push(0, 1, net.Data{Src: 0, Dest: 4, Hops: []peers.NodeID{1, 4}, Payload: "b"})

	if o.Len() != 4 {
		t.Fatalf("expected 4 queued records, got %d", o.Len())
	}

	var got []string
	o.Flush(func(to peers.NodeID, rec net.Record) {
		got = append(got, to.String()+":"+rec.String())
	})

	expected := []string{
		"1:Data 0 4 1 4 begin a",
		"1:Data 0 4 1 4 begin b",
		"1:Hello 3",
		"2:Intree 3",
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("record %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
	if o.Len() != 0 {
		t.Fatal("outbox should be empty after flush")
	}
}

func TestControlTimer(t *testing.T) {
	fire := make(chan time.Time)
	timer := NewControlTimer(func(time.Duration) <-chan time.Time {
		return fire
	})
	go timer.Run(time.Second)

	for i := 0; i < 3; i++ {
		fire <- time.Now()
		select {
		case <-timer.tickCh:
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for tick")
		}
	}

	timer.Shutdown()
	timer.Shutdown()
}
