// Package storage copies device-local images to S3-compatible object
// storage so entries can carry durable URLs instead of local paths.
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrUnsupportedRef is returned for local references that cannot be read
// from the filesystem, e.g. content:// or ph:// handles.
var ErrUnsupportedRef = errors.New("unsupported image reference")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3Config holds object storage settings. BaseEndpoint is set for MinIO and
// other non-AWS endpoints; PublicBaseURL, when set, prefixes stored URLs.
type S3Config struct {
	Bucket        string
	Region        string
	BaseEndpoint  string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

type S3Uploader struct {
	cfg    S3Config
	client *s3.Client
	now    func() time.Time
}

func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {

	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{cfg: cfg, client: client, now: time.Now}, nil
}

// Upload stores the file behind ref and returns its public URL and the
// object key.
func (u *S3Uploader) Upload(ctx context.Context, ref string) (string, string, error) {

	path, err := LocalPath(ref)
	if err != nil {
		return "", "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	key := ObjectKey(u.now(), ext)

	in := &s3.PutObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if _, err := putObject(u.client, ctx, in); err != nil {
		return "", "", fmt.Errorf("put object %s: %w", key, err)
	}

	return u.PublicURL(key), key, nil
}

// PublicURL is where a stored object can be read from.
func (u *S3Uploader) PublicURL(key string) string {
	switch {
	case u.cfg.PublicBaseURL != "":
		return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key
	case u.cfg.BaseEndpoint != "":
		return strings.TrimRight(u.cfg.BaseEndpoint, "/") + "/" + u.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
	}
}

// ObjectKey spreads uploads by day: entries/2024/05/01/<uuid>.jpg.
func ObjectKey(t time.Time, ext string) string {
	t = t.UTC()
	return fmt.Sprintf("entries/%04d/%02d/%02d/%s%s", t.Year(), t.Month(), t.Day(), uuid.New(), ext)
}

// LocalPath maps file:// URLs and bare paths to a filesystem path.
func LocalPath(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" {
		return ref, nil
	}
	if u.Scheme == "file" && u.Path != "" {
		return u.Path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)
}
