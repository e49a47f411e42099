package chunker

import (
	"path/filepath"
	"strings"

	"github.com/xxxsen/repochat/internal/model"
)

// FileCategory selects the splitting strategy for a file.
type FileCategory int

const (
	CategoryStructuredCode FileCategory = iota
	CategoryFlatCode
	CategoryMarkdown
	CategoryOtherText
)

func (c FileCategory) String() string {
	switch c {
	case CategoryStructuredCode:
		return "structured_code"
	case CategoryFlatCode:
		return "flat_code"
	case CategoryMarkdown:
		return "markdown"
	default:
		return "other_text"
	}
}

// structuredLanguages maps extensions with a structural grammar to the
// language tag recorded in fragment metadata.
var structuredLanguages = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".go":    "go",
	".java":  "java",
	".cpp":   "cpp",
	".c":     "c",
	".rs":    "rust",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".scala": "scala",
}

// flatCodeExtensions are code/markup files without a structural grammar.
var flatCodeExtensions = map[string]struct{}{
	".html": {},
	".css":  {},
	".json": {},
	".yaml": {},
	".yml":  {},
	".toml": {},
	".xml":  {},
	".sql":  {},
}

var markdownExtensions = map[string]struct{}{
	".md":  {},
	".mdx": {},
	".txt": {},
	".rst": {},
}

func fileExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func Classify(path string) FileCategory {
	ext := fileExt(path)
	if _, ok := structuredLanguages[ext]; ok {
		return CategoryStructuredCode
	}
	if _, ok := flatCodeExtensions[ext]; ok {
		return CategoryFlatCode
	}
	if _, ok := markdownExtensions[ext]; ok {
		return CategoryMarkdown
	}
	return CategoryOtherText
}

// Language returns the structural-grammar language for a path, or an
// empty string when the file has none.
func Language(path string) string {
	return structuredLanguages[fileExt(path)]
}

// FileType maps a path to the coarse file_type value stored per fragment.
func FileType(path string) string {
	switch Classify(path) {
	case CategoryStructuredCode, CategoryFlatCode:
		return model.FileTypeCode
	case CategoryMarkdown:
		return model.FileTypeMarkdown
	default:
		return model.FileTypeText
	}
}
