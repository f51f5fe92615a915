// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package publish

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/walteh/docfetch/pkg/config"
	"gitlab.com/tozd/go/errors"
)

const defaultRegion = "us-east-1"

// ObjectStore is where published files end up.
type ObjectStore interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
}

// 🪣 MinioStore writes to any S3-compatible bucket. The bucket is created on first use;
// a failed check is retried by the next Put.
type MinioStore struct {
	client *minio.Client
	bucket string
	region string

	mu    sync.Mutex
	ready bool
}

var _ ObjectStore = (*MinioStore)(nil)

func NewMinioStore(cfg config.PublishConfig) (*MinioStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.Errorf("%w: publish endpoint is required", config.ErrInvalid)
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.Errorf("%w: publish bucket is required", config.ErrInvalid)
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, errors.Errorf("creating s3 client for %s: %w", endpoint, err)
	}

	return &MinioStore{client: client, bucket: bucket, region: region}, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Errorf("checking bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return errors.Errorf("creating bucket %s: %w", s.bucket, err)
		}
	}
	s.ready = true
	return nil
}

func (s *MinioStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	if content == nil {
		content = []byte{}
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return errors.Errorf("uploading %s: %w", key, err)
	}
	return nil
}

func (s *MinioStore) String() string {
	return "s3{bucket=" + s.bucket + "}"
}
