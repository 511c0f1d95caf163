package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/slidecast/slidecast/pkg/config"
	"github.com/slidecast/slidecast/pkg/logger"
)

// S3 mirrors segments into an S3-compatible bucket, keyed
// <sessionID>/chunk-<index>.bin.
type S3 struct {
	c      *minio.Client
	bucket string
	log    *logger.Logger
}

func NewS3(conf config.Storage, log *logger.Logger) (*S3, error) {
	client, err := minio.New(conf.S3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.S3.Key, conf.S3.Secret, ""),
		Secure: true,
	})
	if err != nil {
		return nil, err
	}
	exists, err := client.BucketExists(context.Background(), conf.S3.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("bucket doesn't exist")
	}
	return &S3{c: client, bucket: conf.S3.Bucket, log: log}, nil
}

func (s *S3) SaveChunk(ctx context.Context, sessionID string, index int, data []byte) error {
	if s == nil || s.c == nil {
		return errors.New("s3 client was not initialised")
	}
	name := fmt.Sprintf("%s/%s", sessionID, chunkName(index))
	info, err := s.c.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream", SendContentMd5: true})
	if err != nil {
		return err
	}
	s.log.Debug().Msgf("uploaded: %v (%v bytes)", info.Key, info.Size)
	return nil
}

func (s *S3) DeleteSession(ctx context.Context, sessionID string) error {
	if s == nil || s.c == nil {
		return errors.New("s3 client was not initialised")
	}
	var err error
	for obj := range s.c.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: sessionID + "/"}) {
		if obj.Err != nil {
			err = errors.Join(err, obj.Err)
			continue
		}
		err = errors.Join(err, s.c.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}))
	}
	return err
}
