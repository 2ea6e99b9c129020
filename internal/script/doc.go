// Package script parses two-host dialogue scripts into ordered sections and
// speaker segments, and subdivides segments into synthesis-sized chunks.
//
// A script is markdown-shaped text: "## " heading lines open sections,
// "**Speaker**: utterance" lines open dialogue turns, "---" rules and
// headings terminate the running turn. The parser is an explicit line
// scanner with a section/segment accumulator, so marker precedence at
// boundaries is unambiguous. Chunking is lossless: oversized utterances are
// split at sentence boundaries, and a sentence longer than the chunk limit
// is hard-split at the limit rather than silently truncated.
package script
