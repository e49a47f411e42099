package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFileName(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"Explain app.py", "app.py"},
		{"explain the code in main.go", "main.go"},
		{"What does server.js do?", "server.js"},
		{"what is config.yaml", "config.yaml"},
		{"describe utils.py please", "utils.py"},
		{"analyze 'parser.rs'", "parser.rs"},
		{"show me index.html", "index.html"},
		{"tell me about setup.cfg", "setup.cfg"},
		{"what happens in handler.go", "handler.go"},
		{"is there anything using main.py here", "main.py"},
		{"how does authentication work", ""},
		{"what is the overall architecture", ""},
		{"explain the ingestion flow", ""},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ExtractFileName(tt.question), tt.question)
	}
}
