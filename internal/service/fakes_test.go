package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/xxxsen/repochat/internal/filestore"
	"github.com/xxxsen/repochat/internal/model"
)

type fakeFetcher struct {
	files    []model.SourceFile
	allPaths []string
	err      error
	calls    int
}

func (f *fakeFetcher) FetchRepository(ctx context.Context, repoURL string) ([]model.SourceFile, []string, error) {
	f.calls++
	return f.files, f.allPaths, f.err
}

type fakeEmbedder struct {
	batchCalls int
	queryCalls int
	err        error
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, []float32{float32(len(text)), 1, 0})
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.queryCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (f *fakeEmbedder) ModelName() string {
	return "fake-embed"
}

type fakeGenerator struct {
	answer  string
	err     error
	calls   int
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeStore struct {
	mu        sync.Mutex
	records   []model.FragmentRecord
	insertErr error
	failAfter int // fail inserts once this many batches succeeded, -1 disables
	batches   int

	searchDocs []model.RetrievedDocument
	searchErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{failAfter: -1}
}

func (f *fakeStore) InsertBatch(ctx context.Context, records []model.FragmentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil && (f.failAfter < 0 || f.batches >= f.failAfter) {
		return f.insertErr
	}
	f.batches++
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, repoURL, ownerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		if record.RepoURL == repoURL && record.OwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DeleteByRepo(ctx context.Context, repoURL, ownerID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []model.FragmentRecord
	var deleted int64
	for _, record := range f.records {
		if record.RepoURL == repoURL && record.OwnerID == ownerID {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	f.records = kept
	return deleted, nil
}

func (f *fakeStore) SimilaritySearch(ctx context.Context, repoURL, ownerID string, embedding []float32, threshold float64, limit int) ([]model.RetrievedDocument, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.searchDocs) > limit {
		return f.searchDocs[:limit], nil
	}
	return f.searchDocs, nil
}

func (f *fakeStore) MatchByPath(ctx context.Context, repoURL, ownerID, name string, limit int) ([]model.RetrievedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var docs []model.RetrievedDocument
	for _, record := range f.records {
		if record.RepoURL != repoURL || record.OwnerID != ownerID {
			continue
		}
		if !strings.Contains(strings.ToLower(record.FilePath), strings.ToLower(name)) {
			continue
		}
		docs = append(docs, model.RetrievedDocument{
			FilePath:   record.FilePath,
			Content:    record.Content,
			FileType:   record.FileType,
			Similarity: 1.0,
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].FilePath < docs[j].FilePath })
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (f *fakeStore) ListAny(ctx context.Context, repoURL, ownerID string, limit int) ([]model.RetrievedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var docs []model.RetrievedDocument
	for _, record := range f.records {
		if record.RepoURL != repoURL || record.OwnerID != ownerID {
			continue
		}
		docs = append(docs, model.RetrievedDocument{
			FilePath:   record.FilePath,
			Content:    record.Content,
			FileType:   record.FileType,
			Similarity: 0.5,
		})
		if len(docs) == limit {
			break
		}
	}
	return docs, nil
}

func (f *fakeStore) GetListing(ctx context.Context, repoURL, ownerID string) (*model.RetrievedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		if record.RepoURL == repoURL && record.OwnerID == ownerID && record.FilePath == model.FileListPath {
			return &model.RetrievedDocument{
				FilePath:   record.FilePath,
				Content:    record.Content,
				FileType:   record.FileType,
				Similarity: 1.0,
			}, nil
		}
	}
	return nil, nil
}

type fakeSnapshotStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saves   int
	opens   int
	openErr error
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{blobs: map[string][]byte{}}
}

func (f *fakeSnapshotStore) Type() string {
	return "fake"
}

func (f *fakeSnapshotStore) Save(ctx context.Context, key string, r filestore.ReadSeekCloser, size int64) error {
	blob, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.blobs[key] = blob
	return nil
}

func (f *fakeSnapshotStore) Open(ctx context.Context, key string) (filestore.ReadSeekCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if f.openErr != nil {
		return nil, f.openErr
	}
	blob, ok := f.blobs[key]
	if !ok {
		return nil, fmt.Errorf("no blob for key %s", key)
	}
	return nopSeekCloser{bytes.NewReader(blob)}, nil
}

func sampleFiles() []model.SourceFile {
	return []model.SourceFile{
		{Path: "README.md", Content: "# demo\n\nA sample project for testing.\n"},
		{Path: "app.py", Content: "import os\n\ndef main():\n    print(\"hello\")\n\nmain()\n"},
	}
}

func samplePaths() []string {
	return []string{"README.md", "app.py", "assets/logo.png"}
}
