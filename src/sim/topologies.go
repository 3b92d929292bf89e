package sim

import (
	"fmt"
	"math/rand"

	"github.com/mosaicnetworks/intree/src/peers"
)

// Ring builds the symmetric cycle 0 - 1 - ... - (n-1) - 0.
func Ring(size, n int) *peers.Topology {
	t := peers.Line(size, n)
	if n > 2 {
		_ = t.Connect(peers.NodeID(n-1), 0)
	}
	return t
}

// Grid builds a symmetric w x h grid, node ids in row-major order.
func Grid(size, w, h int) *peers.Topology {
	t := peers.NewTopology(size)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			id := peers.NodeID(y*w + x)
			if x+1 < w {
				_ = t.Connect(id, id+1)
			}
			if y+1 < h {
				_ = t.Connect(id, id+peers.NodeID(w))
			}
		}
	}
	return t
}

// RandomConnected builds a connected symmetric topology over n nodes: a
// random spanning tree plus extra random links.
func RandomConnected(size, n, extra int, seed int64) *peers.Topology {
	r := rand.New(rand.NewSource(seed))
	t := peers.NewTopology(size)

	perm := r.Perm(n)
	for i := 1; i < n; i++ {
		a := peers.NodeID(perm[i])
		b := peers.NodeID(perm[r.Intn(i)])
		_ = t.Connect(a, b)
	}
	for i := 0; i < extra && n > 1; i++ {
		a := peers.NodeID(r.Intn(n))
		b := peers.NodeID(r.Intn(n))
		if a != b {
			_ = t.Connect(a, b)
		}
	}
	return t
}

// Shape builds one of the named topologies: "line", "ring", "grid" (as
// square as possible) or "random".
func Shape(name string, size, n int, seed int64) (*peers.Topology, error) {
	if n < 1 || n > size {
		return nil, fmt.Errorf("shape needs between 1 and %d nodes, got %d", size, n)
	}
	switch name {
	case "line":
		return peers.Line(size, n), nil
	case "ring":
		return Ring(size, n), nil
	case "grid":
		w := 1
		for w*w < n {
			w++
		}
		if n%w != 0 {
			return nil, fmt.Errorf("cannot lay %d nodes on a grid of width %d", n, w)
		}
		return Grid(size, w, n/w), nil
	case "random":
		return RandomConnected(size, n, n/2, seed), nil
	default:
		return nil, fmt.Errorf("unknown shape %q", name)
	}
}

// distances returns the hop distance from src to every node over the links
// of t avoiding the excluded nodes, -1 for unreachable nodes.
func distances(t *peers.Topology, src peers.NodeID, excluded *peers.NodeSet) []int {
	dist := make([]int, t.Size())
	for i := range dist {
		dist[i] = -1
	}
	dist[src] = 0
	queue := []peers.NodeID{src}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, nb := range t.Neighbors(v) {
			if dist[nb] >= 0 || excluded.Contains(nb) {
				continue
			}
			dist[nb] = dist[v] + 1
			queue = append(queue, nb)
		}
	}
	return dist
}
