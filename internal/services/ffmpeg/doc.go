// Package ffmpeg wraps the ffmpeg command line tool for the two operations
// the assembly pipeline needs: rendering fixed-length silence and
// concatenating clip lists into a single track without re-encoding.
package ffmpeg
