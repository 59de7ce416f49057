package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	config "github.com/maheshrc27/instaflow/configs"
	"github.com/maheshrc27/instaflow/internal/models"
)

const (
	r2Scheme         = "r2://"
	presignedURLLife = time.Hour
)

var ErrR2NotConfigured = errors.New("r2 storage is not configured")

type MediaService interface {
	Resolve(ctx context.Context, refs []string) ([]string, error)
	Kind(ref string) string
}

type mediaService struct {
	bucket    string
	presigner *s3.PresignClient
}

// NewMediaService returns a resolver that turns r2://key references into
// presigned URLs the Graph API can download. Plain http(s) URLs pass through.
func NewMediaService(ctx context.Context, cfg config.Config) (MediaService, error) {
	ms := &mediaService{bucket: cfg.R2.BucketName}
	if cfg.R2.AccountID == "" || cfg.R2.AccessKey == "" || cfg.R2.BucketName == "" {
		return ms, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2.AccessKey, cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2.AccountID))
	})
	ms.presigner = s3.NewPresignClient(client)

	return ms, nil
}

func (m *mediaService) Resolve(ctx context.Context, refs []string) ([]string, error) {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}

		if !strings.HasPrefix(ref, r2Scheme) {
			urls = append(urls, ref)
			continue
		}

		if m.presigner == nil {
			return nil, ErrR2NotConfigured
		}

		req, err := m.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(m.bucket),
			Key:    aws.String(strings.TrimPrefix(ref, r2Scheme)),
		}, s3.WithPresignExpires(presignedURLLife))
		if err != nil {
			return nil, fmt.Errorf("failed to presign %s: %w", ref, err)
		}
		urls = append(urls, req.URL)
	}

	return urls, nil
}

// Kind classifies a media reference as image or video from its extension.
// Unknown extensions are treated as images.
func (m *mediaService) Kind(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	if ext == "" {
		return models.MediaTypeImage
	}

	if filetype.GetType(ext).MIME.Type == "video" {
		return models.MediaTypeVideo
	}
	return models.MediaTypeImage
}
