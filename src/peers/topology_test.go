package peers

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseTopology(t *testing.T) {
	in := `
# line topology
0 1
1 0
1 2
2 1
`
	topo, err := ParseTopology(strings.NewReader(in), 10)
	if err != nil {
		t.Fatal(err)
	}

	if n := topo.Neighbors(1); !reflect.DeepEqual(n, []NodeID{0, 2}) {
		t.Fatalf("neighbors of 1 should be [0 2], not %v", n)
	}
	if !topo.HasLink(2, 1) {
		t.Fatalf("link 2 -> 1 should exist")
	}
	if topo.HasLink(0, 2) {
		t.Fatalf("link 0 -> 2 should not exist")
	}
	if p := topo.Pairs(); !reflect.DeepEqual(p, [][2]NodeID{{0, 1}, {1, 2}}) {
		t.Fatalf("pairs should be [[0 1] [1 2]], not %v", p)
	}
}

func TestParseTopologyErrors(t *testing.T) {
	cases := map[string]string{
		"too many fields": "0 1 2\n",
		"not a number":    "0 x\n",
		"outside":         "0 12\n",
		"self link":       "3 3\n",
	}
	for name, in := range cases {
		if _, err := ParseTopology(strings.NewReader(in), 10); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestSymmetric(t *testing.T) {
	topo := NewTopology(4)
	if err := topo.AddLink(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := topo.AddLink(2, 1); err != nil {
		t.Fatal(err)
	}

	sym := topo.Symmetric()
	for _, l := range []Link{{0, 1}, {1, 0}, {2, 1}, {1, 2}} {
		if !sym.HasLink(l.From, l.To) {
			t.Fatalf("symmetric topology should contain %v", l)
		}
	}
	if topo.HasLink(1, 0) {
		t.Fatalf("Symmetric should not modify the receiver")
	}
}

func TestTopologyFileRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "topology")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	topo := Line(10, 4)

	for _, name := range []string{"topology", "topology.json"} {
		f := NewTopologyFile(dir, filepath.Join(dir, name))
		if err := f.Write(topo); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		got, err := f.Topology(10)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !reflect.DeepEqual(got.Links(), topo.Links()) {
			t.Fatalf("%s: links should be %v, not %v", name, topo.Links(), got.Links())
		}
	}
}

func TestUnmarshalTopologyTooLarge(t *testing.T) {
	_, err := UnmarshalTopology([]byte(`{"size": 20, "links": [[0, 1]]}`), 10)
	if err == nil {
		t.Fatal("expected an error for a topology larger than the universe")
	}
}
