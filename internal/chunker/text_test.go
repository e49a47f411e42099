package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentenceSplitter_ShortInputSingleChunk(t *testing.T) {
	s := NewSentenceSplitter(1024, 200)
	chunks, err := s.Split("# Hello\nWorld")
	require.NoError(t, err)
	require.Equal(t, []string{"# Hello\nWorld"}, chunks)
}

func TestSentenceSplitter_WhitespaceOnly(t *testing.T) {
	s := NewSentenceSplitter(1024, 200)
	chunks, err := s.Split("   \n\t\n  ")
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestSentenceSplitter_BreaksAtWordBoundary(t *testing.T) {
	s := NewSentenceSplitter(10, 3)
	chunks, err := s.Split("aaaa bbbb cccc")
	require.NoError(t, err)
	require.Equal(t, []string{"aaaa bbbb ", "bb cccc"}, chunks)
}

func TestSentenceSplitter_PrefersParagraphBreaks(t *testing.T) {
	content := "first paragraph text\n\nsecond paragraph text\n\nthird paragraph text"
	s := NewSentenceSplitter(30, 5)
	chunks, err := s.Split(content)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	require.True(t, strings.HasPrefix(chunks[0], "first paragraph text"))
	// the first break lands on the paragraph separator, not mid-word
	require.True(t, strings.HasSuffix(strings.TrimRight(chunks[0], "\n"), "text"))
}

func TestSentenceSplitter_CoverageWithOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("some repeated line of text\n")
	}
	content := sb.String()
	s := NewSentenceSplitter(1024, 200)
	chunks, err := s.Split(content)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// every chunk respects the size target and reappears verbatim in the
	// source at increasing offsets; overlap duplicates, never omits
	last := 0
	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), 1024)
		idx := strings.Index(content[last:], chunk)
		require.GreaterOrEqual(t, idx, 0)
		end := last + idx + len(chunk)
		require.Greater(t, end, last)
		last = last + idx
	}
}

func TestSentenceSplitter_MultiByteSafe(t *testing.T) {
	content := strings.Repeat("héllo wörld ", 100)
	s := NewSentenceSplitter(64, 16)
	chunks, err := s.Split(content)
	require.NoError(t, err)
	for _, chunk := range chunks {
		require.True(t, strings.Contains(content, chunk))
	}
}
