// Package synthesis orchestrates per-chunk text-to-speech rendering. Each
// chunk is synthesized independently with bounded retries and validated
// against audio sanity heuristics; a failed chunk is recorded and skipped so
// one bad render cannot abort the whole episode.
package synthesis
