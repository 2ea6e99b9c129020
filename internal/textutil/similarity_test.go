package textutil_test

import (
	"testing"

	"paperweights/internal/textutil"
)

func TestFlattenMarkdownStripsEmphasisAndNewlines(t *testing.T) {
	in := "This is **really** important.\nAnd *quite* long,\n\nwith   extra spaces."
	want := "This is really important. And quite long, with extra spaces."
	if got := textutil.FlattenMarkdown(in); got != want {
		t.Fatalf("FlattenMarkdown = %q, want %q", got, want)
	}
}

func TestEllipsize(t *testing.T) {
	if got := textutil.Ellipsize("short", 80); got != "short" {
		t.Fatalf("unexpected ellipsize of short text: %q", got)
	}
	long := "A Very Long Paper Title That Keeps Going And Going Well Past The Eighty Character Limit Set By The Feed"
	got := textutil.Ellipsize(long, 80)
	if len([]rune(got)) > 80 {
		t.Fatalf("ellipsized text too long: %d runes", len([]rune(got)))
	}
	if got[len(got)-3:] != "..." {
		t.Fatalf("expected trailing ellipsis, got %q", got)
	}
}

func TestCosineSimilarityIdenticalText(t *testing.T) {
	fp := textutil.NewFingerprint("sparse attention for efficient transformers")
	if fp == nil {
		t.Fatal("expected fingerprint")
	}
	if sim := textutil.CosineSimilarity(fp, fp); sim < 0.999 {
		t.Fatalf("self similarity = %f, want ~1", sim)
	}
}

func TestCosineSimilarityNilSafe(t *testing.T) {
	if sim := textutil.CosineSimilarity(nil, textutil.NewFingerprint("anything here works")); sim != 0 {
		t.Fatalf("expected 0 for nil fingerprint, got %f", sim)
	}
}

func TestTitlesMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"Sparse Attention Is All You Need", "sparse attention is all you need", true},
		{"Sparse Attention", "Sparse Attention Is All You Need: A Survey", true},
		{"Mixture of Experts Routing at Scale", "Scaling Laws for Mixture of Experts Routing", true},
		{"Diffusion Policies for Robotics", "Quantum Error Correction Codes", false},
		{"", "Sparse Attention", false},
	}
	for _, tc := range cases {
		if got := textutil.TitlesMatch(tc.a, tc.b); got != tc.want {
			t.Errorf("TitlesMatch(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
