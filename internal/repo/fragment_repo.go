package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/repochat/internal/model"
	"github.com/xxxsen/repochat/internal/pkg/dbutil"
)

// FragmentRepo persists embedded document fragments. Every query is
// scoped by (repo_url, owner_id) so the same repository can be
// ingested independently by different owners.
type FragmentRepo struct {
	db *sql.DB
}

func NewFragmentRepo(db *sql.DB) *FragmentRepo {
	return &FragmentRepo{db: db}
}

// InsertBatch writes one batch of fragments in a single statement.
func (r *FragmentRepo) InsertBatch(ctx context.Context, records []model.FragmentRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		rows = append(rows, map[string]interface{}{
			"repo_url":  record.RepoURL,
			"file_path": record.FilePath,
			"content":   record.Content,
			"embedding": pgvector.NewVector(record.Embedding),
			"metadata":  []byte(record.Metadata),
			"owner_id":  record.OwnerID,
			"file_type": record.FileType,
			"ctime":     record.Ctime,
		})
	}
	sqlStr, args, err := builder.BuildInsert("documents", rows)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// Exists reports whether any fragment is stored for the partition.
func (r *FragmentRepo) Exists(ctx context.Context, repoURL, ownerID string) (bool, error) {
	query, args := dbutil.Finalize(
		"SELECT 1 FROM documents WHERE repo_url = ? AND owner_id = ? LIMIT 1",
		[]interface{}{repoURL, ownerID},
	)
	var one int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *FragmentRepo) DeleteByRepo(ctx context.Context, repoURL, ownerID string) (int64, error) {
	query, args := dbutil.Finalize(
		"DELETE FROM documents WHERE repo_url = ? AND owner_id = ?",
		[]interface{}{repoURL, ownerID},
	)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteOlderThan removes fragments ingested before the cutoff, for
// the retention job.
func (r *FragmentRepo) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	query, args := dbutil.Finalize(
		"DELETE FROM documents WHERE ctime < ?",
		[]interface{}{cutoff},
	)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SimilaritySearch returns the fragments closest to the query vector
// by cosine similarity, keeping only rows at or above threshold.
func (r *FragmentRepo) SimilaritySearch(ctx context.Context, repoURL, ownerID string, embedding []float32, threshold float64, limit int) ([]model.RetrievedDocument, error) {
	query, args := dbutil.Finalize(`
		SELECT file_path, content, file_type, 1 - (embedding <=> ?) AS similarity
		FROM documents
		WHERE repo_url = ? AND owner_id = ? AND embedding IS NOT NULL
			AND 1 - (embedding <=> ?) >= ?
		ORDER BY embedding <=> ?
		LIMIT ?`,
		[]interface{}{
			pgvector.NewVector(embedding),
			repoURL, ownerID,
			pgvector.NewVector(embedding), threshold,
			pgvector.NewVector(embedding),
			limit,
		},
	)
	return r.queryDocuments(ctx, query, args...)
}

// MatchByPath returns fragments whose file path contains the given
// name, ordered by path so chunks of the same file stay adjacent.
func (r *FragmentRepo) MatchByPath(ctx context.Context, repoURL, ownerID, name string, limit int) ([]model.RetrievedDocument, error) {
	query, args := dbutil.Finalize(`
		SELECT file_path, content, file_type, 1.0 AS similarity
		FROM documents
		WHERE repo_url = ? AND owner_id = ? AND file_path ILIKE ?
		ORDER BY file_path
		LIMIT ?`,
		[]interface{}{repoURL, ownerID, "%" + name + "%", limit},
	)
	return r.queryDocuments(ctx, query, args...)
}

// ListAny returns arbitrary fragments of the partition, used as the
// last-resort retrieval stage.
func (r *FragmentRepo) ListAny(ctx context.Context, repoURL, ownerID string, limit int) ([]model.RetrievedDocument, error) {
	query, args := dbutil.Finalize(`
		SELECT file_path, content, file_type, 0.5 AS similarity
		FROM documents
		WHERE repo_url = ? AND owner_id = ?
		ORDER BY id
		LIMIT ?`,
		[]interface{}{repoURL, ownerID, limit},
	)
	return r.queryDocuments(ctx, query, args...)
}

// GetListing fetches the file-listing fragment of the partition.
func (r *FragmentRepo) GetListing(ctx context.Context, repoURL, ownerID string) (*model.RetrievedDocument, error) {
	query, args := dbutil.Finalize(`
		SELECT file_path, content, file_type, 1.0 AS similarity
		FROM documents
		WHERE repo_url = ? AND owner_id = ? AND file_path = ?
		LIMIT 1`,
		[]interface{}{repoURL, ownerID, model.FileListPath},
	)
	docs, err := r.queryDocuments(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

func (r *FragmentRepo) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]model.RetrievedDocument, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.RetrievedDocument
	for rows.Next() {
		var doc model.RetrievedDocument
		if err := rows.Scan(&doc.FilePath, &doc.Content, &doc.FileType, &doc.Similarity); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
