package net

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/tree"
)

const testSize = 10

func TestFormatRecords(t *testing.T) {
	cases := []struct {
		rec  Record
		line string
	}{
		{Hello{From: 3}, "Hello 3"},
		{Intree{RootedAt: 1}, "Intree 1"},
		{
			Intree{RootedAt: 1, Edges: []tree.Edge{{Child: 0, Parent: 1}, {Child: 2, Parent: 1}}},
			"Intree 1 (0 1) (2 1)",
		},
		{
			Data{Src: 0, Dest: 2, Hops: []peers.NodeID{1, 2}, Payload: "hi"},
			"Data 0 2 1 2 begin hi",
		},
		{
			Data{Src: 0, Dest: 2, Hops: []peers.NodeID{2}, Payload: ""},
			"Data 0 2 2 begin ",
		},
	}

	for _, c := range cases {
		assert.Equal(t, c.line, c.rec.String())
	}
}

func TestParseHello(t *testing.T) {
	rec, err := Parse("Hello 7", testSize)
	require.NoError(t, err)
	assert.Equal(t, Hello{From: 7}, rec)
	assert.Equal(t, KindHello, rec.Kind())
}

func TestParseIntreeLenient(t *testing.T) {
	want := Intree{
		RootedAt: 4,
		Edges: []tree.Edge{
			{Child: 3, Parent: 4},
			{Child: 2, Parent: 3},
		},
	}

	for _, line := range []string{
		"Intree 4 (3 4) (2 3)",
		"Intree 4 (3 4)(2 3)",
		"Intree 4  ( 3 4 )   (2  3) ",
	} {
		rec, err := Parse(line, testSize)
		require.NoError(t, err, line)
		assert.Equal(t, want, rec, line)
	}

	rec, err := Parse("Intree 6", testSize)
	require.NoError(t, err)
	assert.Equal(t, Intree{RootedAt: 6}, rec)
}

func TestParseDataKeepsPayload(t *testing.T) {
	rec, err := Parse("Data 0 5 1 3 5 begin hello begin  world ", testSize)
	require.NoError(t, err)

	d, ok := rec.(Data)
	require.True(t, ok)
	assert.Equal(t, peers.NodeID(0), d.Src)
	assert.Equal(t, peers.NodeID(5), d.Dest)
	assert.Equal(t, []peers.NodeID{1, 3, 5}, d.Hops)
	assert.Equal(t, "hello begin  world ", d.Payload)

	next, ok := d.NextHop()
	assert.True(t, ok)
	assert.Equal(t, peers.NodeID(1), next)

	// round trip through the line format
	again, err := Parse(d.String(), testSize)
	require.NoError(t, err)
	assert.Equal(t, d, again)
}

func TestParseDataEmptyPayload(t *testing.T) {
	for _, line := range []string{"Data 0 2 2 begin", "Data 0 2 2 begin "} {
		rec, err := Parse(line, testSize)
		require.NoError(t, err, line)
		assert.Equal(t, "", rec.(Data).Payload)
	}
}

func TestParseMalformed(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"Goodbye 1",
		"hello 1",
		"Hello",
		"Hello 1 2",
		"Hello 10",
		"Hello -1",
		"Hello x",
		"Intree",
		"Intree 11",
		"Intree 1 (2 1",
		"Intree 1 2 1",
		"Intree 1 (2)",
		"Intree 1 (2 1 3)",
		"Intree 1 (2 12)",
		"Data 0 2 1 2 hi",
		"Data 0 2 begin hi",
		"Data 0 2 1 x begin hi",
		"Data 0 20 1 begin hi",
	}

	for _, l := range lines {
		_, err := Parse(l, testSize)
		if assert.Error(t, err, l) {
			assert.True(t, IsMalformed(err), l)
		}
	}
}

func TestCheckPayload(t *testing.T) {
	assert.NoError(t, CheckPayload(""))
	assert.NoError(t, CheckPayload("hello world begin 1 2"))

	for _, p := range []string{"a\nb", "a\rb", "trailing\n"} {
		err := CheckPayload(p)
		require.Error(t, err, "%q", p)
		assert.Equal(t, ErrInvalidPayload, errors.Cause(err))
	}
}
