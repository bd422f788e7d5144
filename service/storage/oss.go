package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"github.com/google/uuid"

	"media-engine-backend/config"
)

// ObjectStore is the uploaded-media store. The orchestrator fetches
// objects into the scratch directory shared with the AI backend
// before analysis.
type ObjectStore interface {
	Fetch(ctx context.Context, objectName string) (string, error)
	Delete(ctx context.Context, objectName string) error
	PresignGet(ctx context.Context, objectName string, expires time.Duration) (string, error)
	PresignPut(ctx context.Context, objectName string, expires time.Duration) (string, error)
}

type OSSStore struct {
	client     *oss.Client
	bucket     string
	scratchDir string
}

var _ ObjectStore = &OSSStore{}

func NewOSSStore() *OSSStore {
	cfg := &oss.Config{
		Region: oss.Ptr(config.Cfg.OSS.Region),
		CredentialsProvider: credentials.NewStaticCredentialsProvider(
			config.Cfg.OSS.AccessKeyID,
			config.Cfg.OSS.AccessKeySecret,
		),
	}
	return &OSSStore{
		client:     oss.NewClient(cfg),
		bucket:     config.Cfg.OSS.BucketName,
		scratchDir: config.Cfg.Server.ScratchDir,
	}
}

// Fetch downloads objectName into the scratch directory and returns
// the local path. The caller removes the file when done.
func (s *OSSStore) Fetch(ctx context.Context, objectName string) (string, error) {
	result, err := s.client.GetObject(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(objectName),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get object from oss: %v", err)
	}
	defer result.Body.Close()

	localPath := filepath.Join(s.scratchDir, uuid.NewString()+filepath.Ext(objectName))
	f, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %v", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, result.Body); err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("failed to write scratch file: %v", err)
	}
	return localPath, nil
}

func (s *OSSStore) Delete(ctx context.Context, objectName string) error {
	_, err := s.client.DeleteObject(ctx, &oss.DeleteObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(objectName),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from oss: %v", err)
	}
	return nil
}

func (s *OSSStore) PresignGet(ctx context.Context, objectName string, expires time.Duration) (string, error) {
	result, err := s.client.Presign(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(objectName),
	}, oss.PresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign object url: %v", err)
	}
	return result.URL, nil
}

// PresignPut returns a direct-upload URL so files never pass through
// the API server.
func (s *OSSStore) PresignPut(ctx context.Context, objectName string, expires time.Duration) (string, error) {
	result, err := s.client.Presign(ctx, &oss.PutObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(objectName),
	}, oss.PresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload url: %v", err)
	}
	return result.URL, nil
}
