package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// RepoService covers repository-level maintenance: existence checks
// and full deletion of a partition.
type RepoService struct {
	fragments FragmentStore
}

func NewRepoService(fragments FragmentStore) *RepoService {
	return &RepoService{fragments: fragments}
}

func (s *RepoService) Exists(ctx context.Context, repoURL, ownerID string) (bool, error) {
	return s.fragments.Exists(ctx, repoURL, ownerID)
}

// Delete removes every fragment of the partition and returns the
// number of rows removed.
func (s *RepoService) Delete(ctx context.Context, repoURL, ownerID string) (int64, error) {
	deleted, err := s.fragments.DeleteByRepo(ctx, repoURL, ownerID)
	if err != nil {
		return 0, err
	}
	logutil.GetLogger(ctx).Info("repository deleted",
		zap.String("repo_url", repoURL),
		zap.String("owner_id", ownerID),
		zap.Int64("fragments", deleted),
	)
	return deleted, nil
}
