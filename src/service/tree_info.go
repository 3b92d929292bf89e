package service

import (
	"github.com/mosaicnetworks/intree/src/node"
)

// TreeInfo is the JSON view of a node snapshot.
type TreeInfo struct {
	ID          int              `json:"id"`
	Tick        int              `json:"tick"`
	State       string           `json:"state"`
	Edges       [][2]int         `json:"edges"`
	Nodes       []int            `json:"nodes"`
	Neighbors   []int            `json:"neighbors"`
	Paths       map[string][]int `json:"paths"`
	Dest        int              `json:"dest"`
	Outstanding bool             `json:"outstanding"`
}

func newTreeInfo(s node.Snapshot) TreeInfo {
	info := TreeInfo{
		ID:          int(s.ID),
		Tick:        s.Tick,
		State:       s.State,
		Edges:       make([][2]int, len(s.Edges)),
		Nodes:       make([]int, len(s.TreeNodes)),
		Neighbors:   make([]int, len(s.Neighbors)),
		Paths:       make(map[string][]int),
		Dest:        int(s.Dest),
		Outstanding: s.Outstanding,
	}
	for i, e := range s.Edges {
		info.Edges[i] = [2]int{int(e.Child), int(e.Parent)}
	}
	for i, v := range s.TreeNodes {
		info.Nodes[i] = int(v)
	}
	for i, v := range s.Neighbors {
		info.Neighbors[i] = int(v)
	}
	for nb, p := range s.Paths {
		path := make([]int, len(p))
		for i, v := range p {
			path[i] = int(v)
		}
		info.Paths[nb.String()] = path
	}
	return info
}
