package chunker

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	MethodAST      = "ast"
	MethodSentence = "sentence"
)

// Chunk is one bounded slice of a source file, the retrieval unit.
type Chunk struct {
	Text     string
	Language string
	Method   string
}

// Splitter turns file content into ordered chunk texts. A failed split
// is recoverable: the orchestrator falls back to the sentence strategy.
type Splitter interface {
	Split(content string) ([]string, error)
}

// Chunker picks a splitting strategy per file category. The strategy
// table is built once at construction over the closed category set.
type Chunker struct {
	splitters map[FileCategory]Splitter
	sentence  *SentenceSplitter
}

type Config struct {
	ChunkSize    int // sentence strategy, characters
	ChunkOverlap int
	ChunkLines   int // code strategy, lines
	LinesOverlap int
	MaxChars     int
}

func New(cfg Config) *Chunker {
	sentence := NewSentenceSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	return &Chunker{
		sentence: sentence,
		splitters: map[FileCategory]Splitter{
			CategoryStructuredCode: NewCodeSplitter(cfg.ChunkLines, cfg.LinesOverlap, cfg.MaxChars),
			CategoryFlatCode:       sentence,
			CategoryMarkdown:       NewMarkdownSplitter(cfg.ChunkSize, cfg.ChunkOverlap, sentence),
			CategoryOtherText:      sentence,
		},
	}
}

// Chunk splits one file. Empty or whitespace-only content yields zero
// chunks; it never fails, structural parse errors degrade to the
// sentence strategy for that file.
func (c *Chunker) Chunk(ctx context.Context, filePath, content string) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	category := Classify(filePath)
	language := Language(filePath)
	method := MethodSentence
	if category == CategoryStructuredCode {
		method = MethodAST
	}

	texts, err := c.splitters[category].Split(content)
	if err != nil {
		logutil.GetLogger(ctx).Warn("structural split failed, falling back to sentence strategy",
			zap.String("file", filePath),
			zap.String("language", language),
			zap.Error(err),
		)
		method = MethodSentence
		texts, _ = c.sentence.Split(content)
	}

	chunks := make([]Chunk, 0, len(texts))
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		chunks = append(chunks, Chunk{Text: text, Language: language, Method: method})
	}
	return chunks
}
