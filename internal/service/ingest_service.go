package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/repochat/internal/ai"
	"github.com/xxxsen/repochat/internal/chunker"
	"github.com/xxxsen/repochat/internal/filestore"
	"github.com/xxxsen/repochat/internal/model"
	appErr "github.com/xxxsen/repochat/internal/pkg/errors"
)

const defaultInsertBatchSize = 50

// ContentFetcher pulls a repository's files plus the listing of every
// file path it contains.
type ContentFetcher interface {
	FetchRepository(ctx context.Context, repoURL string) ([]model.SourceFile, []string, error)
}

// FragmentChunker splits one file into ordered chunks.
type FragmentChunker interface {
	Chunk(ctx context.Context, filePath, content string) []chunker.Chunk
}

// FragmentStore is the persistence surface the services need.
type FragmentStore interface {
	InsertBatch(ctx context.Context, records []model.FragmentRecord) error
	Exists(ctx context.Context, repoURL, ownerID string) (bool, error)
	DeleteByRepo(ctx context.Context, repoURL, ownerID string) (int64, error)
	SimilaritySearch(ctx context.Context, repoURL, ownerID string, embedding []float32, threshold float64, limit int) ([]model.RetrievedDocument, error)
	MatchByPath(ctx context.Context, repoURL, ownerID, name string, limit int) ([]model.RetrievedDocument, error)
	ListAny(ctx context.Context, repoURL, ownerID string, limit int) ([]model.RetrievedDocument, error)
	GetListing(ctx context.Context, repoURL, ownerID string) (*model.RetrievedDocument, error)
}

type IngestResult struct {
	ChunksAdded     int  `json:"chunks_added"`
	AlreadyIngested bool `json:"already_ingested"`
}

type IngestService struct {
	fetcher   ContentFetcher
	chunker   FragmentChunker
	embedder  ai.IEmbedder
	fragments FragmentStore
	snapshots filestore.Store
	locks     *repoLock
	batchSize int
}

func NewIngestService(fetcher ContentFetcher, ck FragmentChunker, embedder ai.IEmbedder, fragments FragmentStore, snapshots filestore.Store, batchSize int) *IngestService {
	if batchSize <= 0 {
		batchSize = defaultInsertBatchSize
	}
	return &IngestService{
		fetcher:   fetcher,
		chunker:   ck,
		embedder:  embedder,
		fragments: fragments,
		snapshots: snapshots,
		locks:     newRepoLock(),
		batchSize: batchSize,
	}
}

// Ingest fetches, chunks, embeds and stores one repository. A
// repository that already has fragments is left untouched, and only
// one ingest per partition may run at a time.
func (s *IngestService) Ingest(ctx context.Context, repoURL, ownerID string) (*IngestResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("repo_url", repoURL), zap.String("owner_id", ownerID))

	key := repoURL + "\n" + ownerID
	if !s.locks.TryLock(key) {
		return nil, fmt.Errorf("%w: %s", appErr.ErrIngestRunning, repoURL)
	}
	defer s.locks.Unlock(key)

	exists, err := s.fragments.Exists(ctx, repoURL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("check repository: %w", err)
	}
	if exists {
		logger.Info("repository already ingested, skipping")
		return &IngestResult{AlreadyIngested: true}, nil
	}

	files, allPaths, restored := s.loadSnapshot(ctx, repoURL, ownerID)
	if !restored {
		files, allPaths, err = s.fetcher.FetchRepository(ctx, repoURL)
		if err != nil {
			return nil, fmt.Errorf("fetch repository: %w", err)
		}
		logger.Info("repository fetched", zap.Int("files", len(files)), zap.Int("total_paths", len(allPaths)))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", appErr.ErrEmptyRepo, repoURL)
	}

	texts, records, err := s.prepare(ctx, repoURL, ownerID, files, allPaths)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return &IngestResult{}, nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed fragments: %w", err)
	}
	for i := range records {
		records[i].Embedding = vectors[i]
	}

	inserted := 0
	for start := 0; start < len(records); start += s.batchSize {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.fragments.InsertBatch(ctx, records[start:end]); err != nil {
			return nil, fmt.Errorf("insert fragments (stored %d of %d): %w", inserted, len(records), err)
		}
		inserted += end - start
	}
	logger.Info("repository ingested", zap.Int("chunks", inserted))

	if !restored {
		s.saveSnapshot(ctx, repoURL, ownerID, files, allPaths)
	}
	return &IngestResult{ChunksAdded: inserted}, nil
}

// prepare builds the flat text list and matching fragment records, the
// listing fragment first.
func (s *IngestService) prepare(ctx context.Context, repoURL, ownerID string, files []model.SourceFile, allPaths []string) ([]string, []model.FragmentRecord, error) {
	logger := logutil.GetLogger(ctx)
	now := time.Now().Unix()

	var texts []string
	var records []model.FragmentRecord

	if len(allPaths) > 0 {
		listing := BuildFileListing(allPaths)
		meta, err := json.Marshal(BuildListingMeta(allPaths))
		if err != nil {
			return nil, nil, fmt.Errorf("encode listing metadata: %w", err)
		}
		texts = append(texts, listing)
		records = append(records, model.FragmentRecord{
			RepoURL:  repoURL,
			FilePath: model.FileListPath,
			Content:  listing,
			Metadata: meta,
			OwnerID:  ownerID,
			FileType: model.FileTypeMetadata,
			Ctime:    now,
		})
	}

	for _, file := range files {
		chunks := s.chunker.Chunk(ctx, file.Path, file.Content)
		if len(chunks) == 0 {
			continue
		}
		fileType := chunker.FileType(file.Path)
		for i, chunk := range chunks {
			meta, err := json.Marshal(model.ChunkMeta{
				ChunkIndex:     i,
				TotalChunks:    len(chunks),
				OriginalFile:   file.Path,
				Language:       chunk.Language,
				ChunkingMethod: chunk.Method,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("encode chunk metadata: %w", err)
			}
			texts = append(texts, chunk.Text)
			records = append(records, model.FragmentRecord{
				RepoURL:  repoURL,
				FilePath: fmt.Sprintf("%s#chunk_%d", file.Path, i),
				Content:  chunk.Text,
				Metadata: meta,
				OwnerID:  ownerID,
				FileType: fileType,
				Ctime:    now,
			})
		}
		logger.Debug("file chunked", zap.String("path", file.Path), zap.Int("chunks", len(chunks)))
	}
	return texts, records, nil
}

type repoSnapshot struct {
	RepoURL  string             `json:"repo_url"`
	OwnerID  string             `json:"owner_id"`
	Ctime    int64              `json:"ctime"`
	Files    []model.SourceFile `json:"files"`
	AllPaths []string           `json:"all_paths"`
}

// saveSnapshot archives the fetched sources so an ingestion can be
// replayed without refetching. Snapshot failures never fail the run.
func (s *IngestService) saveSnapshot(ctx context.Context, repoURL, ownerID string, files []model.SourceFile, allPaths []string) {
	if s.snapshots == nil {
		return
	}
	logger := logutil.GetLogger(ctx).With(zap.String("repo_url", repoURL))
	blob, err := json.Marshal(repoSnapshot{
		RepoURL:  repoURL,
		OwnerID:  ownerID,
		Ctime:    time.Now().Unix(),
		Files:    files,
		AllPaths: allPaths,
	})
	if err != nil {
		logger.Warn("encode snapshot failed", zap.Error(err))
		return
	}
	key := SnapshotKey(repoURL, ownerID)
	if err := s.snapshots.Save(ctx, key, nopSeekCloser{bytes.NewReader(blob)}, int64(len(blob))); err != nil {
		logger.Warn("save snapshot failed", zap.String("key", key), zap.Error(err))
		return
	}
	logger.Info("snapshot saved", zap.String("key", key), zap.Int("bytes", len(blob)))
}

// loadSnapshot restores the archived sources of a partition so a
// deleted repository can be re-ingested without refetching. Any miss,
// read error or stale blob falls back to the fetcher.
func (s *IngestService) loadSnapshot(ctx context.Context, repoURL, ownerID string) ([]model.SourceFile, []string, bool) {
	if s.snapshots == nil {
		return nil, nil, false
	}
	logger := logutil.GetLogger(ctx).With(zap.String("repo_url", repoURL))
	key := SnapshotKey(repoURL, ownerID)
	rc, err := s.snapshots.Open(ctx, key)
	if err != nil {
		logger.Debug("no snapshot available, fetching", zap.String("key", key), zap.Error(err))
		return nil, nil, false
	}
	defer rc.Close()
	blob, err := io.ReadAll(rc)
	if err != nil {
		logger.Warn("read snapshot failed", zap.String("key", key), zap.Error(err))
		return nil, nil, false
	}
	snap := &repoSnapshot{}
	if err := json.Unmarshal(blob, snap); err != nil {
		logger.Warn("decode snapshot failed", zap.String("key", key), zap.Error(err))
		return nil, nil, false
	}
	if snap.RepoURL != repoURL || snap.OwnerID != ownerID || len(snap.Files) == 0 {
		logger.Warn("snapshot does not match partition, refetching", zap.String("key", key))
		return nil, nil, false
	}
	logger.Info("repository restored from snapshot", zap.String("key", key), zap.Int("files", len(snap.Files)))
	return snap.Files, snap.AllPaths, true
}

// SnapshotKey derives a flat, store-safe key for a partition.
func SnapshotKey(repoURL, ownerID string) string {
	sum := sha256.Sum256([]byte(repoURL + "\n" + ownerID))
	return hex.EncodeToString(sum[:16]) + ".json"
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }
