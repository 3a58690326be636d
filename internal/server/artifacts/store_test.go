package artifacts

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/agritrack/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubSeams(t *testing.T) {
	t.Helper()
	origLoad, origNew, origPut, origID := loadDefaultAWSConfig, newS3ClientFromConfig, putObject, newObjectID
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
		newObjectID = origID
	})
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newObjectID = func() string { return "0000-uuid" }
}

func testOptions() Options {
	return Options{
		Region:       "us-east-1",
		AccessKey:    "admin",
		SecretKey:    "secretpassword",
		Bucket:       "agritrack",
		BaseEndpoint: "http://127.0.0.1:9000/",
	}
}

func TestNewS3Store_AppliesRegionAndEndpoint(t *testing.T) {
	stubSeams(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	_, err := NewS3Store(context.Background(), testOptions())
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Store_ConfigError(t *testing.T) {
	stubSeams(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3Store(context.Background(), testOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no creds")
}

func TestPut_UploadsPublicReadAndReturnsURL(t *testing.T) {
	stubSeams(t)

	var got *s3.PutObjectInput
	var body []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		got = in
		var err error
		body, err = io.ReadAll(in.Body)
		require.NoError(t, err)
		return &s3.PutObjectOutput{}, nil
	}

	store, err := NewS3Store(context.Background(), testOptions())
	require.NoError(t, err)
	store.now = func() time.Time { return time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC) }

	url, err := store.Put(context.Background(), Artifact{Name: "rice pic.png", ContentType: "image/png", Data: []byte("PNGDATA")})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "agritrack", aws.ToString(got.Bucket))
	assert.Equal(t, types.ObjectCannedACLPublicRead, got.ACL)
	assert.Equal(t, "image/png", aws.ToString(got.ContentType))
	assert.EqualValues(t, 7, aws.ToInt64(got.ContentLength))
	assert.Equal(t, []byte("PNGDATA"), body)

	key := aws.ToString(got.Key)
	assert.True(t, strings.HasPrefix(key, "products/2024/03/07/"))
	assert.True(t, strings.HasSuffix(key, "-0000-uuid-rice_pic.png"))
	assert.Equal(t, "http://127.0.0.1:9000/agritrack/"+key, url)
}

func TestPut_UsesPublicBaseURL(t *testing.T) {
	stubSeams(t)
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return &s3.PutObjectOutput{}, nil
	}

	opts := testOptions()
	opts.PublicBaseURL = "https://cdn.example.com/media/"
	store, err := NewS3Store(context.Background(), opts)
	require.NoError(t, err)

	url, err := store.Put(context.Background(), Artifact{Name: "a.jpg", Data: []byte("x")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/media/products/"))
}

func TestPut_AWSVirtualHostedURL(t *testing.T) {
	stubSeams(t)
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return &s3.PutObjectOutput{}, nil
	}

	tests := []struct {
		name, region, prefix string
	}{
		{"with region", "ap-southeast-1", "https://agritrack.s3.ap-southeast-1.amazonaws.com/products/"},
		{"no region", "", "https://agritrack.s3.amazonaws.com/products/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewS3Store(context.Background(), Options{Region: tt.region, Bucket: "agritrack"})
			require.NoError(t, err)

			url, err := store.Put(context.Background(), Artifact{Name: "a.png", Data: []byte("x")})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(url, tt.prefix), url)
			assert.True(t, strings.HasSuffix(url, "-0000-uuid-a.png"), url)
		})
	}
}

func TestPut_DefaultsContentType(t *testing.T) {
	stubSeams(t)
	var ct string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		ct = aws.ToString(in.ContentType)
		return &s3.PutObjectOutput{}, nil
	}

	store, err := NewS3Store(context.Background(), testOptions())
	require.NoError(t, err)
	_, err = store.Put(context.Background(), Artifact{Name: "blob", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", ct)
}

func TestPut_FailureIsArtifactStoreError(t *testing.T) {
	stubSeams(t)
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("connection refused")
	}

	store, err := NewS3Store(context.Background(), testOptions())
	require.NoError(t, err)

	url, err := store.Put(context.Background(), Artifact{Name: "a.png", Data: []byte("x")})
	assert.ErrorIs(t, err, common.ErrArtifactStore)
	assert.Empty(t, url)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\img 1.jpg`, "img_1.jpg"},
		{"", "artifact"},
		{"beras?x=1", "beras_x_1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.in))
		})
	}
}
