package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkdownSplitter_SmallDocSingleChunk(t *testing.T) {
	s := NewMarkdownSplitter(1024, 200, NewSentenceSplitter(1024, 200))
	chunks, err := s.Split("# Hello\nWorld")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Contains(t, chunks[0], "# Hello")
	require.Contains(t, chunks[0], "World")
}

func TestMarkdownSplitter_BreaksBetweenBlocks(t *testing.T) {
	doc := "# Title\n\n" +
		strings.Repeat("A paragraph of filler text for the first section.\n\n", 4) +
		"## Second\n\n" +
		strings.Repeat("Another paragraph of filler for the second part.\n\n", 4)
	s := NewMarkdownSplitter(200, 50, NewSentenceSplitter(200, 50))
	chunks, err := s.Split(doc)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		// block packing never cuts a paragraph in half
		for _, line := range strings.Split(chunk, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			require.True(t, strings.HasSuffix(trimmed, "."), "partial paragraph line: %q", line)
		}
	}
}

func TestMarkdownSplitter_KeepsFenceMarkers(t *testing.T) {
	doc := "Intro paragraph.\n\n```go\nfunc main() {}\n```\n\nOutro paragraph."
	s := NewMarkdownSplitter(1024, 200, NewSentenceSplitter(1024, 200))
	chunks, err := s.Split(doc)
	require.NoError(t, err)
	joined := strings.Join(chunks, "\n")
	require.Equal(t, 2, strings.Count(joined, "```"))
	require.Contains(t, joined, "func main() {}")
}

func TestMarkdownSplitter_OversizedBlockFallsBackToSentences(t *testing.T) {
	doc := "short intro\n\n" + strings.Repeat("word ", 300)
	s := NewMarkdownSplitter(256, 64, NewSentenceSplitter(256, 64))
	chunks, err := s.Split(doc)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)
	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), 256+2)
	}
}
