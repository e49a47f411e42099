package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/repochat/internal/model"
)

func TestBuildContext(t *testing.T) {
	docs := []model.RetrievedDocument{
		{FilePath: "app.py#chunk_0", Content: "import os", FileType: "code", Similarity: 0.9},
		{FilePath: "README.md#chunk_0", Content: "# demo", FileType: "markdown", Similarity: 0.7},
	}
	out := BuildContext("## Repository File Structure", docs)

	require.True(t, strings.HasPrefix(out, "[COMPLETE FILE LIST]\n## Repository File Structure"))
	require.Contains(t, out, "[Document 1 - app.py]\nimport os")
	require.Contains(t, out, "[Document 2 - README.md]\n# demo")
	require.Equal(t, 2, strings.Count(out, "\n---\n"))
}

func TestBuildContextSkipsListingRow(t *testing.T) {
	docs := []model.RetrievedDocument{
		{FilePath: model.FileListPath, Content: "listing body"},
		{FilePath: "a.go#chunk_0", Content: "package a"},
	}
	out := BuildContext("listing body", docs)
	require.Equal(t, 1, strings.Count(out, "listing body"))
	require.Contains(t, out, "[Document 2 - a.go]")
}

func TestBuildContextNoListing(t *testing.T) {
	docs := []model.RetrievedDocument{{FilePath: "a.go#chunk_1", Content: "x"}}
	out := BuildContext("", docs)
	require.False(t, strings.Contains(out, "[COMPLETE FILE LIST]"))
	require.True(t, strings.HasPrefix(out, "[Document 1 - a.go]"))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("CTX-BODY", "what does this do?")
	require.Equal(t, 1, strings.Count(prompt, "CTX-BODY"))
	require.Equal(t, 1, strings.Count(prompt, "Question: what does this do?"))
	require.Contains(t, prompt, "FORMATTING RULES:")
	require.Contains(t, prompt, "EXPLANATION GUIDELINES:")
	require.True(t, strings.Index(prompt, "Context from the repository:") < strings.Index(prompt, "Question:"))
}

func TestBuildSources(t *testing.T) {
	long := strings.Repeat("x", 250)
	docs := []model.RetrievedDocument{
		{FilePath: "app.py#chunk_2", Content: long, FileType: "code", Similarity: 0.87654},
		{FilePath: "README.md", Content: "short", FileType: "markdown", Similarity: 1},
	}
	sources := BuildSources(docs)
	require.Len(t, sources, 2)

	require.Equal(t, "app.py", sources[0].FilePath)
	require.Equal(t, 0.877, sources[0].Similarity)
	require.Len(t, sources[0].Preview, 203)
	require.True(t, strings.HasSuffix(sources[0].Preview, "..."))

	require.Equal(t, "README.md", sources[1].FilePath)
	require.Equal(t, "short", sources[1].Preview)
	require.Equal(t, 1.0, sources[1].Similarity)
}
