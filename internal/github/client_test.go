package github

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/repochat/internal/model"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		in    string
		owner string
		name  string
		ok    bool
	}{
		{"https://github.com/xxxsen/mnote", "xxxsen", "mnote", true},
		{"https://github.com/xxxsen/mnote.git", "xxxsen", "mnote", true},
		{"https://github.com/xxxsen/mnote/", "xxxsen", "mnote", true},
		{"github.com/xxxsen/mnote", "xxxsen", "mnote", true},
		{"https://github.com/xxxsen/mnote/tree/master", "xxxsen", "mnote", true},
		{"https://gitlab.com/xxxsen/mnote", "", "", false},
		{"https://github.com/xxxsen", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		owner, name, err := ParseRepoURL(tt.in)
		if !tt.ok {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.owner, owner)
		require.Equal(t, tt.name, name)
	}
}

func TestHasSkippedDir(t *testing.T) {
	require.True(t, hasSkippedDir("node_modules/react/index.js"))
	require.True(t, hasSkippedDir("web/dist/app.js"))
	require.True(t, hasSkippedDir("src/__pycache__/mod.pyc"))
	require.False(t, hasSkippedDir("src/distance.go"))
	require.False(t, hasSkippedDir("cmd/build.go"))
	require.False(t, hasSkippedDir("README.md"))
}

func TestReadmeFirst(t *testing.T) {
	files := []model.SourceFile{
		{Path: "a.go", Content: "a"},
		{Path: "docs/README.md", Content: "docs"},
		{Path: "README.md", Content: "root"},
	}
	ordered := readmeFirst(files)
	require.Len(t, ordered, 3)
	require.Equal(t, "docs/README.md", ordered[0].Path)

	noReadme := []model.SourceFile{{Path: "a.go", Content: "a"}}
	require.Equal(t, noReadme, readmeFirst(noReadme))
}
