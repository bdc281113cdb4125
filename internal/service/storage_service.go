package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "instapilot/configs"
)

// StorageService uploads generated images to an S3-compatible bucket
// (MinIO in development, any S3 endpoint in production).
type StorageService struct {
	config config.Config
}

func NewStorageService(cfg config.Config) *StorageService {
	return &StorageService{config: cfg}
}

func (s *StorageService) client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.config.S3.AccessKey, s.config.S3.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3.Endpoint)
		o.UsePathStyle = true
	}), nil
}

// Upload sniffs the image type, stores the bytes under a random key and
// returns the public URL. Only jpeg and png are accepted.
func (s *StorageService) Upload(ctx context.Context, data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("detecting file type: %w", err)
	}
	if kind.Extension != "jpg" && kind.Extension != "jpeg" && kind.Extension != "png" {
		return "", fmt.Errorf("file type %q is not allowed", kind.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key = fmt.Sprintf("%s.%s", key, kind.Extension)

	client, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(kind.MIME.Value),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return fmt.Sprintf("%s/%s", s.config.S3.PublicURL, key), nil
}
