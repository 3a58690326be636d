// Package artifacts writes binary artifacts to S3-compatible object storage
// and resolves the public locator of each stored object.
package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/agritrack/internal/common"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	newObjectID = func() string { return uuid.NewString() }
)

// Artifact is a binary payload submitted alongside a resource.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Store is implemented by S3Store and by test doubles.
type Store interface {
	Put(ctx context.Context, a Artifact) (string, error)
}

type Options struct {
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	BaseEndpoint  string
	PublicBaseURL string
}

type S3Store struct {
	client *s3.Client
	opts   Options
	now    func() time.Time
}

// NewS3Store builds the S3 client once; the returned store is safe for
// concurrent use.
func NewS3Store(ctx context.Context, opts Options) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			// MinIO and most S3-compatible servers need path-style addressing
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, opts: opts, now: time.Now}, nil
}

// Put uploads a and returns its public URL once the write has completed.
// Any storage failure is reported as common.ErrArtifactStore.
func (s *S3Store) Put(ctx context.Context, a Artifact) (string, error) {
	key := s.objectKey(a.Name)

	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(a.Data),
		ContentLength: aws.Int64(int64(len(a.Data))),
		ContentType:   aws.String(contentType),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrArtifactStore, err)
	}

	return s.publicURL(key), nil
}

func (s *S3Store) objectKey(name string) string {
	d := s.now().UTC()
	base := sanitizeName(name)
	return fmt.Sprintf("products/%d/%02d/%02d/%d-%s-%s",
		d.Year(), d.Month(), d.Day(), d.UnixMilli(), newObjectID(), base)
}

// publicURL prefers the configured public base, then the custom endpoint in
// path style, then the AWS virtual-hosted form.
func (s *S3Store) publicURL(key string) string {
	base := s.opts.PublicBaseURL
	switch {
	case base != "":
	case s.opts.BaseEndpoint != "":
		base = strings.TrimRight(s.opts.BaseEndpoint, "/") + "/" + s.opts.Bucket
	case s.opts.Region != "":
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.opts.Bucket, s.opts.Region)
	default:
		base = fmt.Sprintf("https://%s.s3.amazonaws.com", s.opts.Bucket)
	}
	return strings.TrimRight(base, "/") + "/" + key
}

// sanitizeName keeps the last path element of the original file name and
// replaces characters that are awkward in object keys and URLs.
func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "artifact"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
