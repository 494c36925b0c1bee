package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunk_EmptyInput(t *testing.T) {
	if got := Chunk("a.go", "", DefaultMaxChunkSize); got != nil {
		t.Errorf("expected nil for empty content, got %v", got)
	}
	if got := Chunk("a.go", "  \n\t\n  ", DefaultMaxChunkSize); got != nil {
		t.Errorf("expected nil for whitespace content, got %v", got)
	}
}

func TestChunk_ShortContent(t *testing.T) {
	content := "package main\n\nfunc main() {}"
	chunks := Chunk("cmd/main.go", content, DefaultMaxChunkSize)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "cmd/main.go") {
		t.Errorf("chunk should name the file, got %q", chunks[0].Text)
	}
	if !strings.Contains(chunks[0].Text, content) {
		t.Errorf("chunk should contain full content, got %q", chunks[0].Text)
	}
	if chunks[0].SourcePath != "cmd/main.go" {
		t.Errorf("expected source path cmd/main.go, got %q", chunks[0].SourcePath)
	}
}

func TestChunk_SplitsLargeContent(t *testing.T) {
	para := strings.Repeat("some line of source text\n", 8)
	content := strings.TrimSpace(strings.Repeat(para+"\n", 10)) // well over 500 bytes

	chunks := Chunk("big.md", content, 500)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Text) > 500 {
			t.Errorf("chunk %d exceeds max size: %d bytes", i, len(c.Text))
		}
		if !strings.HasPrefix(c.Text, "# File: big.md") {
			t.Errorf("chunk %d missing file header: %q", i, c.Text[:40])
		}
		continued := strings.Contains(strings.SplitN(c.Text, "\n", 2)[0], "(continued)")
		if i == 0 && continued {
			t.Error("first chunk should not be marked as continuation")
		}
		if i > 0 && !continued {
			t.Errorf("chunk %d should be marked as continuation", i)
		}
	}
}

func TestChunk_RoundTrip(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		sb.WriteString("line number ")
		sb.WriteString(strings.Repeat("x", i%7))
		sb.WriteString("\n")
		if i%5 == 4 {
			sb.WriteString("\n")
		}
	}
	content := sb.String()

	chunks := Chunk("notes.txt", content, 300)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	var got []string
	for _, c := range chunks {
		_, body, ok := strings.Cut(c.Text, "\n\n")
		if !ok {
			t.Fatalf("chunk missing header separator: %q", c.Text)
		}
		for _, line := range strings.Split(body, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				got = append(got, s)
			}
		}
	}

	var want []string
	for _, line := range strings.Split(content, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			want = append(want, s)
		}
	}

	if len(got) != len(want) {
		t.Fatalf("line count mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunk_LongLineKeepsRunesIntact(t *testing.T) {
	// One unbroken line of 3-byte runes, far over the chunk size, so
	// the raw byte split is forced on every boundary.
	content := strings.Repeat("é日", 200)

	chunks := Chunk("uni.txt", content, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	var joined strings.Builder
	for i, c := range chunks {
		if len(c.Text) > 100 {
			t.Errorf("chunk %d exceeds max size: %d bytes", i, len(c.Text))
		}
		if !utf8.ValidString(c.Text) {
			t.Errorf("chunk %d contains invalid UTF-8: %q", i, c.Text)
		}
		_, body, ok := strings.Cut(c.Text, "\n\n")
		if !ok {
			t.Fatalf("chunk %d missing header separator", i)
		}
		joined.WriteString(body)
	}
	if joined.String() != content {
		t.Error("reassembled chunks do not match original content")
	}
}

func TestChunk_NoEmptyBodies(t *testing.T) {
	content := "a\n\n\n\n\nb\n\n\n\nc"
	for _, c := range Chunk("f.txt", content, 30) {
		_, body, _ := strings.Cut(c.Text, "\n\n")
		if strings.TrimSpace(body) == "" {
			t.Errorf("chunk with empty body: %q", c.Text)
		}
	}
}
