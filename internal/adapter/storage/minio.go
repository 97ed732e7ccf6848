package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioSigner struct {
	client *minio.Client
	bucket string
}

// NewMinioSigner builds a signer for a MinIO or S3-compatible gateway.
// Setting region avoids a bucket-location lookup on every presign.
func NewMinioSigner(endpoint, accessKey, secretKey, region, bucket string, useSSL bool) (*MinioSigner, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioSigner{client: client, bucket: bucket}, nil
}

func (s *MinioSigner) SignGet(ctx context.Context, path string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", path, err)
	}
	return u.String(), nil
}
