package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownSplitter packs whole markdown blocks into fixed-size chunks.
// goldmark supplies the block boundaries so a chunk break always lands
// between paragraphs, headings or fenced code blocks, never inside one;
// sizing and overlap follow the sentence strategy.
type MarkdownSplitter struct {
	chunkSize    int
	chunkOverlap int
	sentence     *SentenceSplitter
}

func NewMarkdownSplitter(chunkSize, chunkOverlap int, sentence *SentenceSplitter) *MarkdownSplitter {
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	if chunkOverlap <= 0 {
		chunkOverlap = 200
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &MarkdownSplitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap, sentence: sentence}
}

func (s *MarkdownSplitter) Split(content string) ([]string, error) {
	blocks := markdownBlocks(content)
	if len(blocks) == 0 {
		return s.sentence.Split(content)
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		appendChunk(&chunks, strings.Join(current, "\n\n"))
		// carry trailing blocks forward as overlap context
		var carry []string
		carryLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			if carryLen+len(current[i]) > s.chunkOverlap {
				break
			}
			carryLen += len(current[i])
			carry = append([]string{current[i]}, carry...)
		}
		if len(carry) == len(current) {
			carry = nil
			carryLen = 0
		}
		current = carry
		currentLen = carryLen
	}

	for _, block := range blocks {
		if len(block) > s.chunkSize {
			flush()
			current = nil
			currentLen = 0
			parts, _ := s.sentence.Split(block)
			for _, part := range parts {
				appendChunk(&chunks, part)
			}
			continue
		}
		if currentLen > 0 && currentLen+len(block) > s.chunkSize {
			flush()
		}
		current = append(current, block)
		currentLen += len(block)
	}
	if len(current) > 0 {
		appendChunk(&chunks, strings.Join(current, "\n\n"))
	}
	return chunks, nil
}

// markdownBlocks slices the source at top-level block starts. Cutting
// between starts rather than copying node spans keeps every byte of the
// original (fence markers and blank runs included) in exactly one block.
func markdownBlocks(content string) []string {
	source := []byte(content)
	md := goldmark.New()
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	var starts []int
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if offset, ok := nodeStart(node, len(source)); ok {
			// a fence opener sits on the line above the first inner segment
			offset = lineStart(source, offset)
			if _, ok := node.(*ast.FencedCodeBlock); ok && offset > 0 {
				offset = lineStart(source, offset-1)
			}
			starts = append(starts, offset)
		}
	}
	if len(starts) == 0 {
		return nil
	}

	var blocks []string
	for i, start := range starts {
		stop := len(source)
		if i+1 < len(starts) {
			stop = starts[i+1]
		}
		if start >= stop {
			continue
		}
		block := strings.TrimRight(string(source[start:stop]), "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// nodeStart finds the smallest source offset a block covers, recursing
// into container blocks (lists, quotes) whose own Lines() is empty.
func nodeStart(node ast.Node, limit int) (int, bool) {
	start := limit
	found := false
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			if seg := lines.At(i); seg.Start < start {
				start = seg.Start
				found = true
			}
		}
		return ast.WalkContinue, nil
	})
	return start, found
}

func lineStart(source []byte, offset int) int {
	for offset > 0 && source[offset-1] != '\n' {
		offset--
	}
	return offset
}

