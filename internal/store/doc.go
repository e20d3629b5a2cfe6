// Package store defines how clinic state is persisted between runs.
//
// The clinic core keeps its state in memory. A SnapshotStore receives the
// complete state after each change and hands it back at startup, so the core
// never depends on a particular storage technology.
package store
