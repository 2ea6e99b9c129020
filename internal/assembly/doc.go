// Package assembly runs the episode pipeline end to end: parse the script,
// chunk the dialogue, synthesize clips, compute the chapter timeline,
// concatenate the track, embed chapters, derive metadata, and record the
// result in the episode ledger. All intermediate work lives in a per-run
// staging directory that is discarded on success and failure alike.
package assembly
