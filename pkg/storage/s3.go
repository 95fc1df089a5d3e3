// Package storage stores activity photos and derived thumbnails on S3.
// Originals live under activities/, thumbnails under activities/thumbs/,
// sharing the same filename so one stem addresses both areas.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const (
	// MaxPhotoSize is the maximum allowed upload size for activity photos (10MB).
	MaxPhotoSize = 10 * 1024 * 1024
	// FolderPhotos is the S3 prefix for original activity photos.
	FolderPhotos = "activities"
	// FolderThumbs is the S3 prefix for derived thumbnails.
	FolderThumbs = "activities/thumbs"
)

// Allowed photo MIME types and extensions.
var (
	AllowedPhotoTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
	}
	AllowedPhotoExtensions = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
	}
)

// S3Config holds S3 client configuration.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PhotosBucket    string
}

// S3 provides photo storage with validation.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or the environment.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
	} else if logger != nil {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
	})
	return &S3{
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ValidatePhotoType returns true if the content type and/or extension are allowed.
func ValidatePhotoType(contentType, filename string) bool {
	if contentType != "" {
		if _, ok := AllowedPhotoTypes[strings.ToLower(contentType)]; ok {
			return true
		}
	}
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		if _, ok := AllowedPhotoExtensions[ext]; ok {
			return true
		}
	}
	return false
}

// ContentTypeForFilename returns the MIME type for a photo filename extension.
func ContentTypeForFilename(filename string) string {
	if ct, ok := AllowedPhotoExtensions[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// PhotoKey returns the S3 object key for an original photo.
func PhotoKey(filename string) string {
	return path.Join(FolderPhotos, path.Base(filename))
}

// ThumbKey returns the S3 object key for the thumbnail sharing the photo's filename.
func ThumbKey(filename string) string {
	return path.Join(FolderThumbs, path.Base(filename))
}

// PhotoURL returns the public URL for an original photo.
func (s *S3) PhotoURL(filename string) string {
	return s.objectURL(PhotoKey(filename))
}

// ThumbURL returns the public URL for a thumbnail.
func (s *S3) ThumbURL(filename string) string {
	return s.objectURL(ThumbKey(filename))
}

func (s *S3) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.PhotosBucket, s.cfg.Region, key)
}

// UploadPhoto stores an original photo under activities/{filename}.
func (s *S3) UploadPhoto(ctx context.Context, filename, contentType string, body io.Reader) error {
	return s.upload(ctx, PhotoKey(filename), contentType, body)
}

// UploadThumbnail stores a thumbnail under activities/thumbs/{filename}.
func (s *S3) UploadThumbnail(ctx context.Context, filename string, body io.Reader) error {
	return s.upload(ctx, ThumbKey(filename), "image/jpeg", body)
}

func (s *S3) upload(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.PhotosBucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// DeletePhotoFiles removes a photo and its thumbnail. S3 DeleteObject succeeds
// on absent keys, so the call is idempotent.
func (s *S3) DeletePhotoFiles(ctx context.Context, filename string) error {
	if filename == "" {
		return nil
	}
	var firstErr error
	for _, key := range []string{PhotoKey(filename), ThumbKey(filename)} {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.PhotosBucket),
			Key:    aws.String(key),
		})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete object %s: %w", key, err)
		}
	}
	return firstErr
}
