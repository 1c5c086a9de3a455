package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API — часть клиента S3, которой пользуется S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store загружает изображения в бакет S3 и возвращает публичный URL.
type S3Store struct {
	client S3API
	bucket string
	region string
	prefix string
}

var _ ObjectStore = (*S3Store)(nil)

// NewS3Store создаёт хранилище с клиентом из стандартной цепочки AWS-конфигурации.
func NewS3Store(ctx context.Context, bucket, region string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("storage: s3 bucket is required")
	}
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("storage: load AWS config: %w", err)
	}
	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, region), nil
}

// NewS3StoreWithClient — для подмены клиента в тестах.
func NewS3StoreWithClient(client S3API, bucket, region string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region, prefix: "donations/"}
}

// Put загружает объект под уникальным ключом.
func (s *S3Store) Put(ctx context.Context, filename string, data []byte) (string, error) {
	key := s.prefix + NewKey(filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(DetectContentType(data)),
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload to S3: %w", err)
	}
	return s.publicURL(key), nil
}

func (s *S3Store) publicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// Delete удаляет объект по публичному URL. S3 не сообщает об отсутствии ключа.
func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL(""))
	if !ok || key == "" {
		return ErrForeignURL
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete from S3: %w", err)
	}
	return nil
}
