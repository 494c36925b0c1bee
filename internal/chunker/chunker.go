// Package chunker splits file content into bounded-size chunks for
// passage indexing.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/rcliao/agent-sync/internal/model"
)

// DefaultMaxChunkSize bounds a chunk's full text, header included.
// Mirrors the passage size the remote store accepts comfortably.
const DefaultMaxChunkSize = 4000

// Chunk splits content into chunks of at most maxSize bytes each,
// header included. Empty or whitespace-only content returns nil.
// Every chunk's text starts with a header naming the file; chunks
// after the first are marked as continuations.
func Chunk(path, content string, maxSize int) []model.Chunk {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	head := header(path, false)
	if len(head)+len(content) <= maxSize {
		return []model.Chunk{{Text: head + content, SourcePath: path}}
	}

	// Body budget uses the continuation header, the longer of the two.
	budget := maxSize - len(header(path, true))
	if budget < 1 {
		budget = 1
	}

	var chunks []model.Chunk
	for i, body := range splitBody(content, budget) {
		chunks = append(chunks, model.Chunk{
			Text:       header(path, i > 0) + body,
			SourcePath: path,
		})
	}
	return chunks
}

func header(path string, continued bool) string {
	if continued {
		return "# File: " + path + " (continued)\n\n"
	}
	return "# File: " + path + "\n\n"
}

// splitBody breaks content into sections of at most budget bytes,
// preferring paragraph boundaries, then line boundaries, then a raw
// byte split for a single oversized line.
func splitBody(content string, budget int) []string {
	var sections []string
	var accum string

	flush := func() {
		accum = strings.TrimSpace(accum)
		if accum == "" {
			return
		}
		if len(accum) > budget {
			sections = append(sections, hardSplit(accum, budget)...)
		} else {
			sections = append(sections, accum)
		}
		accum = ""
	}

	for _, para := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		if accum == "" {
			accum = para
			continue
		}
		if len(accum)+2+len(para) <= budget {
			accum = accum + "\n\n" + para
		} else {
			flush()
			accum = para
		}
	}
	flush()

	return sections
}

// hardSplit breaks text exceeding budget on line boundaries.
func hardSplit(text string, budget int) []string {
	var sections []string
	var current []string
	curLen := 0

	emit := func() {
		t := strings.TrimSpace(strings.Join(current, "\n"))
		if t != "" {
			sections = append(sections, t)
		}
		current = nil
		curLen = 0
	}

	for _, line := range strings.Split(text, "\n") {
		// A single line longer than the budget is cut into raw slices,
		// backed up to a rune boundary so no chunk holds a torn rune.
		for len(line) > budget {
			if len(current) > 0 {
				emit()
			}
			cut := budget
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = budget
			}
			sections = append(sections, line[:cut])
			line = line[cut:]
		}
		if curLen+len(line)+1 > budget && len(current) > 0 {
			emit()
		}
		current = append(current, line)
		curLen += len(line) + 1
	}
	emit()

	return sections
}
