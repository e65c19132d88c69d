package minio

import (
	"bytes"
	"context"
	"io"

	"retailops-dashboard/pkg/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("minio.client", fx.Provide(registerClient, NewBucket))

func registerClient(c *config.Config) (*minio.Client, error) {
	client, err := minio.New(c.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Minio.AccessKey, c.Minio.SecretKey, ""),
		Secure: c.Minio.Secure,
	})
	if err != nil {
		zap.L().Error("failed to create MinIO client", zap.Error(err))
		return nil, err
	}
	zap.L().Info("MinIO client initialized", zap.String("endpoint", c.Minio.Endpoint))
	return client, nil
}

// Bucket is the upload store for automated-task spreadsheets.
type Bucket struct {
	client *minio.Client
	name   string
}

func NewBucket(lc fx.Lifecycle, client *minio.Client, c *config.Config) *Bucket {
	b := &Bucket{client: client, name: c.Minio.BucketName}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			exists, err := client.BucketExists(ctx, b.name)
			if err != nil {
				zap.L().Warn("failed to check bucket", zap.String("bucket", b.name), zap.Error(err))
				return nil
			}
			if !exists {
				if err := client.MakeBucket(ctx, b.name, minio.MakeBucketOptions{}); err != nil {
					zap.L().Warn("failed to create bucket", zap.String("bucket", b.name), zap.Error(err))
				}
			}
			return nil
		},
	})

	return b
}

func (b *Bucket) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, b.name, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (b *Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.name, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}
