// Package sag wraps the sag text-to-speech command line tool used to render
// dialogue chunks into audio clips.
package sag
