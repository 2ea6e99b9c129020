// Package store persists the episode ledger in SQLite: one row per episode
// date recording the assembled artifact, its metadata, and publish state.
// The ledger is what the feed is regenerated from, so it is the durable
// record of everything ever published.
package store
