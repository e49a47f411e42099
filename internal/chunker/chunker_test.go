package chunker

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testChunker() *Chunker {
	return New(Config{
		ChunkSize:    1024,
		ChunkOverlap: 200,
		ChunkLines:   60,
		LinesOverlap: 10,
		MaxChars:     3000,
	})
}

func TestChunker_EmptyContentYieldsNothing(t *testing.T) {
	c := testChunker()
	require.Empty(t, c.Chunk(context.Background(), "main.go", ""))
	require.Empty(t, c.Chunk(context.Background(), "main.go", "  \n\t "))
}

func TestChunker_StructuredCodeUsesASTMethod(t *testing.T) {
	c := testChunker()
	chunks := c.Chunk(context.Background(), "server.go", "package main\n\nfunc main() {\n\tprintln(1)\n}\n")
	require.Len(t, chunks, 1)
	require.Equal(t, MethodAST, chunks[0].Method)
	require.Equal(t, "go", chunks[0].Language)
}

func TestChunker_ParseFailureFallsBackToSentence(t *testing.T) {
	c := testChunker()
	// unbalanced brackets defeat the structural strategy
	chunks := c.Chunk(context.Background(), "broken.go", "func main() {\n\tprintln(1)\n")
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		require.Equal(t, MethodSentence, chunk.Method)
		require.Equal(t, "go", chunk.Language)
	}
}

func TestChunker_PlainTextUsesSentenceMethod(t *testing.T) {
	c := testChunker()
	chunks := c.Chunk(context.Background(), "notes.txt", "just some notes")
	require.Len(t, chunks, 1)
	require.Equal(t, MethodSentence, chunks[0].Method)
	require.Empty(t, chunks[0].Language)
}

func TestChunker_OrderPreservingCoverage(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString(fmt.Sprintf("func fn%02d() {\n\treturn\n}\n\n", i))
	}
	content := sb.String()
	c := testChunker()
	chunks := c.Chunk(context.Background(), "big.go", content)
	require.Greater(t, len(chunks), 1)

	// chunks appear in source order and jointly cover every function
	offset := 0
	for _, chunk := range chunks {
		require.NotEmpty(t, strings.TrimSpace(chunk.Text))
		idx := strings.Index(content[offset:], chunk.Text)
		require.GreaterOrEqual(t, idx, 0, "chunk out of order or missing: %q", chunk.Text)
		offset += idx
	}
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("fn%02d", i)
		found := false
		for _, chunk := range chunks {
			if strings.Contains(chunk.Text, name) {
				found = true
				break
			}
		}
		require.True(t, found, "function %s not covered", name)
	}
}
