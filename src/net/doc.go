// Package net carries routing records between nodes.
//
// Records are single ASCII lines:
//
//	Hello <senderId>
//	Intree <rootedAtId> [(<child> <parent>)...]
//	Data <srcId> <destId> <hop1> <hop2> ... begin <payload>
//
// Parse turns a line into a Hello, Intree or Data value; every record's String
// method gives the line back.
//
// A Transport moves lines over point-to-point queues, one queue per
// (sender, receiver) pair. Lines on the same queue are delivered in order;
// nothing is promised across queues. Two implementations are provided:
//
// - Inmem: all queues live in memory, used by the in-process simulator and
// tests.
//
// - File: each queue is an append-only file channel_<from>_<to> in a shared
// directory, so every node can run in its own process.
package net
