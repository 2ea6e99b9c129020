// Package preflight runs environment checks before an assembly or publish
// run: required binaries on PATH, writable directories, and enough free
// disk space for staging.
package preflight
