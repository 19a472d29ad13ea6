package artifact

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps artifacts in an S3-compatible bucket. Object names are
// <session>/<key>.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// MinioConfig configures the object-store backend.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioStore connects and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func objectName(sessionID, key string) string {
	return sessionID + "/" + key
}

func (s *MinioStore) Put(ctx context.Context, sessionID, key string, r io.Reader) error {
	if err := validKey(key); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, objectName(sessionID, key), r, -1, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("put artifact: %w", err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, sessionID, key string) (io.ReadCloser, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, objectName(sessionID, key), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	// GetObject is lazy; Stat forces the existence check.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("stat artifact: %w", err)
	}
	return obj, nil
}

func (s *MinioStore) List(ctx context.Context, sessionID, prefix string) ([]string, error) {
	var keys []string
	opts := minio.ListObjectsOptions{Prefix: objectName(sessionID, prefix), Recursive: true}
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list artifacts: %w", obj.Err)
		}
		keys = append(keys, obj.Key[len(sessionID)+1:])
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MinioStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectName(sessionID, key), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}

func (s *MinioStore) DeleteSession(ctx context.Context, sessionID string) error {
	keys, err := s.List(ctx, sessionID, "")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.Delete(ctx, sessionID, key); err != nil {
			return err
		}
	}
	return nil
}
