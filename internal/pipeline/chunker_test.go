package pipeline

import (
	"strings"
	"testing"
)

func TestChunk_Empty(t *testing.T) {
	if got := Chunk("", 100, 20); got != nil {
		t.Errorf("expected nil for empty text, got %v", got)
	}
	if got := Chunk("   \n\n  ", 100, 20); got != nil {
		t.Errorf("expected nil for whitespace text, got %v", got)
	}
}

func TestChunk_SingleParagraph(t *testing.T) {
	got := Chunk("hello world", 100, 20)
	if len(got) != 1 || got[0] != "hello world" {
		t.Errorf("expected one chunk 'hello world', got %v", got)
	}
}

func TestChunk_PacksParagraphs(t *testing.T) {
	text := "first paragraph\n\nsecond paragraph\n\nthird paragraph"
	got := Chunk(text, 40, 0)

	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(got), got)
	}
	if got[0] != "first paragraph\n\nsecond paragraph" {
		t.Errorf("unexpected first chunk: %q", got[0])
	}
	if got[1] != "third paragraph" {
		t.Errorf("unexpected second chunk: %q", got[1])
	}
}

func TestChunk_SplitsLongParagraphWithOverlap(t *testing.T) {
	long := strings.Repeat("abcdefghij", 30) // 300 runes, no spaces
	got := Chunk(long, 100, 20)

	if len(got) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(got))
	}
	for i, c := range got {
		if n := len([]rune(c)); n > 100 {
			t.Errorf("chunk %d has %d runes, want <= 100", i, n)
		}
	}
	// Consecutive pieces share the overlap region.
	tail := got[0][len(got[0])-20:]
	if !strings.HasPrefix(got[1], tail) {
		t.Errorf("expected chunk 1 to start with the last 20 runes of chunk 0")
	}
}

func TestChunk_CRLFNormalized(t *testing.T) {
	got := Chunk("one\r\n\r\ntwo", 5, 0)
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("expected [one two], got %v", got)
	}
}

func TestChunk_InvalidOverlapIgnored(t *testing.T) {
	long := strings.Repeat("x", 250)
	got := Chunk(long, 100, 100)
	if len(got) != 3 {
		t.Errorf("expected 3 chunks with overlap disabled, got %d", len(got))
	}
}
