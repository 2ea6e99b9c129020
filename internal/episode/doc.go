// Package episode derives publishable metadata (title, description,
// duration) for one assembled episode from its parsed script, the source
// digest, and the computed chapter timeline.
package episode
