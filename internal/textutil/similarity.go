package textutil

import "strings"

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// TitlesMatch reports whether two paper titles refer to the same work.
// Direct substring containment matches immediately; otherwise the titles
// must share at least two significant tokens (or every token of the shorter
// title when it has fewer than two).
func TitlesMatch(a, b string) bool {
	left := strings.ToLower(strings.TrimSpace(a))
	right := strings.ToLower(strings.TrimSpace(b))
	if left == "" || right == "" {
		return false
	}
	if strings.Contains(left, right) || strings.Contains(right, left) {
		return true
	}
	fa := NewFingerprint(left)
	fb := NewFingerprint(right)
	if fa == nil || fb == nil {
		return false
	}
	required := 2
	if fa.TokenCount() < required {
		required = fa.TokenCount()
	}
	if fb.TokenCount() < required {
		required = fb.TokenCount()
	}
	if required == 0 {
		return false
	}
	return SharedTokens(fa, fb) >= required
}
