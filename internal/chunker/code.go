package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// CodeSplitter is the structure-aware strategy for files with a known
// grammar. It targets chunkLines lines per chunk with overlapLines of
// context between consecutive chunks, capped at maxChars, and only cuts
// at lines where every bracket opened before is closed and the line is
// not indented, so a function body is never split mid-definition. Input
// it cannot analyse (binary bytes, unbalanced brackets) yields an error
// and the caller falls back to the sentence strategy.
type CodeSplitter struct {
	chunkLines   int
	overlapLines int
	maxChars     int
}

func NewCodeSplitter(chunkLines, overlapLines, maxChars int) *CodeSplitter {
	if chunkLines <= 0 {
		chunkLines = 60
	}
	if overlapLines <= 0 {
		overlapLines = 10
	}
	if overlapLines >= chunkLines {
		overlapLines = chunkLines / 5
	}
	if maxChars <= 0 {
		maxChars = 3000
	}
	return &CodeSplitter{chunkLines: chunkLines, overlapLines: overlapLines, maxChars: maxChars}
}

func (s *CodeSplitter) Split(content string) ([]string, error) {
	if strings.ContainsRune(content, 0) || !utf8.ValidString(content) {
		return nil, fmt.Errorf("content is not parseable text")
	}
	lines := strings.Split(content, "\n")
	boundaries, err := safeBoundaries(lines)
	if err != nil {
		return nil, err
	}

	var chunks []string
	start := 0
	for start < len(lines) {
		end := start + s.chunkLines
		if end >= len(lines) {
			end = len(lines)
		} else {
			// prefer the last safe boundary inside the window
			for b := end; b > start; b-- {
				if boundaries[b] {
					end = b
					break
				}
			}
		}
		chunk := strings.Join(lines[start:end], "\n")
		for _, part := range hardSplit(chunk, s.maxChars) {
			appendChunk(&chunks, part)
		}
		if end >= len(lines) {
			break
		}
		// rewind for overlap, but only onto a safe boundary so every
		// chunk still starts outside any body
		next := end
		for b := end - s.overlapLines; b < end; b++ {
			if b > start && boundaries[b] {
				next = b
				break
			}
		}
		start = next
	}
	return chunks, nil
}

// safeBoundaries reports, per line index, whether a chunk may begin
// before that line: all brackets balanced and no leading indentation
// (indentation covers grammars like Python where nesting is whitespace).
func safeBoundaries(lines []string) ([]bool, error) {
	boundaries := make([]bool, len(lines)+1)
	boundaries[0] = true
	depth := 0
	for i, line := range lines {
		depth = depth + bracketDelta(line)
		if depth < 0 {
			return nil, fmt.Errorf("unbalanced brackets at line %d", i+1)
		}
		next := i + 1
		boundaries[next] = depth == 0 && (next >= len(lines) || !isIndented(lines[next]))
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets: %d unclosed", depth)
	}
	return boundaries, nil
}

// bracketDelta counts bracket nesting on one line, skipping quoted
// strings and trailing line comments.
func bracketDelta(line string) int {
	delta := 0
	var quote rune
	escaped := false
	var prev rune
	for _, r := range line {
		if quote != 0 {
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
			prev = r
			continue
		}
		switch r {
		case '"', '\'', '`':
			quote = r
		case '{', '(', '[':
			delta++
		case '}', ')', ']':
			delta--
		case '#':
			return delta
		case '/':
			if prev == '/' {
				return delta
			}
		}
		prev = r
	}
	return delta
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// hardSplit enforces the character cap on an oversized chunk.
func hardSplit(chunk string, maxChars int) []string {
	if len(chunk) <= maxChars {
		return []string{chunk}
	}
	var parts []string
	pos := 0
	for pos < len(chunk) {
		end := runeAlign(chunk, pos+maxChars)
		if end <= pos {
			end = len(chunk)
		}
		if end > len(chunk) {
			end = len(chunk)
		}
		parts = append(parts, chunk[pos:end])
		pos = end
	}
	return parts
}
