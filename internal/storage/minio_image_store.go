package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"storybook-server/internal/interfaces"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Политика анонимного чтения: иллюстрации открываются браузером напрямую.
const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

// MinioConfig параметры подключения к объектному хранилищу.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL переопределяет базовый адрес в ссылках (например, CDN перед MinIO).
	PublicURL string
}

// MinioImageStore хранит PNG-иллюстрации в бакете MinIO.
type MinioImageStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *zap.Logger
}

var _ interfaces.ImageStore = (*MinioImageStore)(nil)

// NewMinioImageStore подключается к MinIO и создает бакет при необходимости.
func NewMinioImageStore(ctx context.Context, cfg MinioConfig, logger *zap.Logger) (*MinioImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	store := &MinioImageStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: PublicBaseURL(cfg),
		logger:  logger.Named("MinioImageStore"),
	}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MinioImageStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to connect to minio server: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, fmt.Sprintf(publicReadPolicy, s.bucket)); err != nil {
		return fmt.Errorf("failed to set bucket policy for %s: %w", s.bucket, err)
	}
	s.logger.Info("Bucket created", zap.String("bucket", s.bucket))
	return nil
}

// SavePNG загружает изображение и возвращает его публичный URL.
func (s *MinioImageStore) SavePNG(ctx context.Context, objectName string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "image/png",
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	s.logger.Debug("Image uploaded", zap.String("object", objectName), zap.Int("bytes", len(data)))
	return s.ObjectURL(objectName), nil
}

// ObjectURL строит публичную ссылку на объект.
func (s *MinioImageStore) ObjectURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, objectName)
}

// PublicBaseURL возвращает базовый адрес для ссылок на объекты.
func PublicBaseURL(cfg MinioConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimSuffix(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}
