package chunker

import (
	"strings"
	"unicode/utf8"
)

// SentenceSplitter produces fixed-size chunks with overlap, breaking
// preferentially at paragraph, then line, then word boundaries.
type SentenceSplitter struct {
	chunkSize    int
	chunkOverlap int
}

func NewSentenceSplitter(chunkSize, chunkOverlap int) *SentenceSplitter {
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	if chunkOverlap <= 0 {
		chunkOverlap = 200
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &SentenceSplitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

var breakSeparators = []string{"\n\n", "\n", " "}

func (s *SentenceSplitter) Split(content string) ([]string, error) {
	var chunks []string
	pos := 0
	for pos < len(content) {
		if len(content)-pos <= s.chunkSize {
			appendChunk(&chunks, content[pos:])
			break
		}
		end := runeAlign(content, pos+s.chunkSize)
		cut := end
		for _, sep := range breakSeparators {
			if idx := strings.LastIndex(content[pos:end], sep); idx > 0 {
				cut = pos + idx + len(sep)
				break
			}
		}
		appendChunk(&chunks, content[pos:cut])
		next := runeAlign(content, cut-s.chunkOverlap)
		if next <= pos {
			next = cut
		}
		pos = next
	}
	return chunks, nil
}

func appendChunk(chunks *[]string, chunk string) {
	if strings.TrimSpace(chunk) == "" {
		return
	}
	*chunks = append(*chunks, chunk)
}

// runeAlign moves idx back to the nearest rune start so byte-based cuts
// never land inside a multi-byte sequence.
func runeAlign(s string, idx int) int {
	if idx <= 0 {
		return 0
	}
	if idx >= len(s) {
		return len(s)
	}
	for idx > 0 && !utf8.RuneStart(s[idx]) {
		idx--
	}
	return idx
}
