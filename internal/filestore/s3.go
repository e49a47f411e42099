package filestore

import (
	"context"
	"fmt"
	"path"
	"strings"

	commons3 "github.com/xxxsen/common/s3"

	"github.com/xxxsen/repochat/internal/config"
)

type s3Store struct {
	client *commons3.S3Client
	prefix string
}

func init() {
	Register("s3", createS3Store)
}

func createS3Store(cfg config.FileStoreConfig) (Store, error) {
	s3cfg := cfg.S3
	if s3cfg.Endpoint == "" || s3cfg.Bucket == "" || s3cfg.SecretID == "" || s3cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 endpoint/bucket/secret_id/secret_key are required")
	}
	if s3cfg.Region == "" {
		s3cfg.Region = "cn"
	}
	client, err := commons3.New(
		commons3.WithEndpoint(s3cfg.Endpoint),
		commons3.WithSecret(s3cfg.SecretID, s3cfg.SecretKey),
		commons3.WithBucket(s3cfg.Bucket),
		commons3.WithRegion(s3cfg.Region),
		commons3.WithSSL(s3cfg.UseSSL),
	)
	if err != nil {
		return nil, err
	}
	return &s3Store{
		client: client,
		prefix: strings.Trim(s3cfg.Prefix, "/"),
	}, nil
}

func (s *s3Store) Type() string {
	return "s3"
}

func (s *s3Store) Save(ctx context.Context, key string, r ReadSeekCloser, size int64) error {
	if key == "" {
		return fmt.Errorf("file key is required")
	}
	objectKey := key
	if s.prefix != "" {
		objectKey = path.Join(s.prefix, key)
	}
	if _, err := s.client.Upload(ctx, objectKey, r, size); err != nil {
		return err
	}
	return nil
}

func (s *s3Store) Open(ctx context.Context, key string) (ReadSeekCloser, error) {
	_ = ctx
	_ = key
	return nil, fmt.Errorf("s3 store does not support open")
}
