// Package publish drives the idempotent release state machine: replace the
// dated release, ensure the singleton assets release, regenerate the feed
// from the ledger, and upload it. A file lock serializes publishes so
// concurrent runs cannot race on the shared feed.
package publish
