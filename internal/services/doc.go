// Package services holds the error taxonomy and context plumbing shared by
// the external collaborator clients (speech synthesis, ffmpeg, release
// hosting) and the pipeline stages that call them.
//
// Collaborator packages live in subdirectories (sag, ffmpeg, gh) and wrap
// command-line tools behind typed interfaces so callers branch on errors
// instead of sniffing exit codes.
package services
