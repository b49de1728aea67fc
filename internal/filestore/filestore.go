// Package filestore выдаёт presigned-ссылки на объектное хранилище,
// совместимое с S3 (MinIO). Сами файлы сервис не принимает и не отдаёт.
package filestore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/studysprint/internal/config"
)

// Store клиент объектного хранилища.
type Store struct {
	presign    *s3.PresignClient
	bucket     string
	presignTTL time.Duration
}

// New собирает presign-клиент по настройкам файлового хранилища.
func New(ctx context.Context, cfg config.FileStorage) (*Store, error) {
	const op = "filestore.New"

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &Store{
		presign:    s3.NewPresignClient(client),
		bucket:     cfg.S3Bucket,
		presignTTL: cfg.PresignTTL,
	}, nil
}

// NewStorageKey генерирует ключ объекта вида users/<год>/<месяц>/<день>/<uuid>.
func NewStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

// PresignedPutURL возвращает ключ объекта и ссылку для загрузки файла клиентом.
func (s *Store) PresignedPutURL(ctx context.Context) (string, string, error) {
	const op = "filestore.PresignedPutURL"

	key := NewStorageKey()
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return key, req.URL, nil
}

// PresignedGetURL возвращает ссылку для скачивания объекта по ключу.
func (s *Store) PresignedGetURL(ctx context.Context, key string) (string, error) {
	const op = "filestore.PresignedGetURL"

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return req.URL, nil
}
