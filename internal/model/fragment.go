package model

import "encoding/json"

const (
	// FileListPath is the sentinel path of the synthetic fragment that
	// enumerates every file in an ingested repository.
	FileListPath = "__FILE_LIST__"

	FileTypeCode     = "code"
	FileTypeMarkdown = "markdown"
	FileTypeText     = "text"
	FileTypeMetadata = "metadata"

	MetaTypeFileList = "file_list"
)

// SourceFile is one fetched repository file, consumed once during ingestion.
type SourceFile struct {
	Path    string
	Content string
}

// ChunkMeta is the metadata attached to a content fragment.
type ChunkMeta struct {
	ChunkIndex     int    `json:"chunk_index"`
	TotalChunks    int    `json:"total_chunks"`
	OriginalFile   string `json:"original_file"`
	Language       string `json:"language,omitempty"`
	ChunkingMethod string `json:"chunking_method"`
}

// ListingMeta is the metadata attached to the file-listing fragment.
// FilePaths is capped at 100 entries; TotalFiles keeps the real count.
type ListingMeta struct {
	Type       string   `json:"type"`
	TotalFiles int      `json:"total_files"`
	FilePaths  []string `json:"file_paths"`
}

// FragmentRecord is the persisted store row. Metadata holds either a
// ChunkMeta or a ListingMeta, serialized as-is into the jsonb column.
type FragmentRecord struct {
	ID        int64
	RepoURL   string
	FilePath  string
	Content   string
	Embedding []float32
	Metadata  json.RawMessage
	OwnerID   string
	FileType  string
	Ctime     int64
}

// RetrievedDocument is a fragment plus the similarity assigned by the
// retrieval stage that produced it.
type RetrievedDocument struct {
	FilePath   string
	Content    string
	FileType   string
	Similarity float64
}

// SourceRef describes one retrieved document in an API response.
type SourceRef struct {
	FilePath   string  `json:"file_path"`
	Similarity float64 `json:"similarity"`
	Preview    string  `json:"preview"`
	FileType   string  `json:"file_type"`
}
