// Package textutil provides text processing utilities for markdown cleanup,
// fingerprinting, and similarity.
//
// The primary use cases are:
//   - Flattening markdown dialogue text into plain prose for synthesis
//   - Creating token-based fingerprints from paper titles for comparison
//   - Computing cosine similarity between fingerprints
//
// Fingerprints use term frequency vectors normalized for efficient comparison.
// The tokenization process lowercases text, splits on non-alphanumeric
// characters, and filters tokens shorter than 3 characters.
package textutil
