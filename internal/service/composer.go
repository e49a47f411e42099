package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/xxxsen/repochat/internal/model"
)

const previewChars = 200

const answerPromptTemplate = `You are a helpful AI assistant that explains GitHub repositories in a clear, structured, and comprehensive way.

FORMATTING RULES:
- Use ### for main section headers
- Use **bold** for important terms, file names, and function names
- Use bullet points (- ) for lists
- For code, use triple backticks with the language: ` + "```python, ```javascript" + `, etc.
- Keep paragraphs short and readable
- Use ` + "`backticks`" + ` for inline code references

EXPLANATION GUIDELINES:
When explaining code, be COMPREHENSIVE and THOROUGH:
1. **Libraries & Imports**: Explain ALL imported libraries and their purpose
2. **Configuration/Constants**: Explain any configuration variables, constants, or settings
3. **Functions & Classes**: Explain EACH function/class - what it does, parameters, return values
4. **Main Logic**: Explain the main execution flow step by step
5. **Relationships**: Show how different parts of the code connect together

For each code section, show the relevant code snippet followed by a clear explanation.
Structure your response in logical sections (e.g., "### 1. Imports & Dependencies", "### 2. Configuration", "### 3. Helper Functions", etc.)

Context from the repository:
%s

Question: %s

Provide a well-structured, comprehensive answer. If asked about code, explain it thoroughly in organized sections:`

// originalPath strips the chunk suffix from a fragment path.
func originalPath(filePath string) string {
	if idx := strings.Index(filePath, "#"); idx >= 0 {
		return filePath[:idx]
	}
	return filePath
}

// BuildContext assembles the model context from the retrieved
// documents. The file listing, when present, always leads; listing
// rows inside docs are skipped since they would duplicate it.
func BuildContext(listing string, docs []model.RetrievedDocument) string {
	var parts []string
	if listing != "" {
		parts = append(parts, fmt.Sprintf("[COMPLETE FILE LIST]\n%s\n", listing))
	}
	for i, doc := range docs {
		filePath := originalPath(doc.FilePath)
		if filePath == model.FileListPath {
			continue
		}
		parts = append(parts, fmt.Sprintf("[Document %d - %s]\n%s\n", i+1, filePath, doc.Content))
	}
	return strings.Join(parts, "\n---\n")
}

// BuildPrompt renders the full answer prompt for the generator.
func BuildPrompt(contextText, question string) string {
	return fmt.Sprintf(answerPromptTemplate, contextText, question)
}

// BuildSources converts retrieved documents into the source reference
// list returned alongside the answer.
func BuildSources(docs []model.RetrievedDocument) []model.SourceRef {
	sources := make([]model.SourceRef, 0, len(docs))
	for _, doc := range docs {
		preview := doc.Content
		if runes := []rune(preview); len(runes) > previewChars {
			preview = string(runes[:previewChars]) + "..."
		}
		sources = append(sources, model.SourceRef{
			FilePath:   originalPath(doc.FilePath),
			Similarity: math.Round(doc.Similarity*1000) / 1000,
			Preview:    preview,
			FileType:   doc.FileType,
		})
	}
	return sources
}
