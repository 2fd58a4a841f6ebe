package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() S3Options {
	return S3Options{
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
		Bucket:    "taskkeeper",
		Endpoint:  "http://127.0.0.1:9000",
		TTL:       15 * time.Minute,
	}
}

func TestS3Presigner_SignsPathStyleURLs(t *testing.T) {
	p, err := NewS3Presigner(context.Background(), testOptions())
	require.NoError(t, err)

	put, err := p.PresignPut(context.Background(), "todos/u1/t1/abc")
	require.NoError(t, err)

	u, err := url.Parse(put)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/taskkeeper/todos/u1/t1/abc", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.True(t, strings.HasPrefix(u.Query().Get("X-Amz-Credential"), "minioadmin/"))

	get, err := p.PresignGet(context.Background(), "todos/u1/t1/abc")
	require.NoError(t, err)
	assert.NotEqual(t, put, get)
	assert.Contains(t, get, "/taskkeeper/todos/u1/t1/abc")
}

func TestNewS3Presigner_AppliesOptions(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var captured s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&captured)
		}
		return &s3.Client{}
	}

	opts := testOptions()
	opts.Region = "eu-west-1"
	_, err := NewS3Presigner(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, captured.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *captured.BaseEndpoint)
	assert.True(t, captured.UsePathStyle)

	captured = s3.Options{}
	opts.Endpoint = ""
	_, err = NewS3Presigner(context.Background(), opts)
	require.NoError(t, err)
	assert.Nil(t, captured.BaseEndpoint, "no endpoint override for AWS")
}

func TestNewS3Presigner_LoadError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := NewS3Presigner(context.Background(), testOptions())
	assert.ErrorContains(t, err, "load-fail")
}

func TestPresign_Errors(t *testing.T) {
	p, err := NewS3Presigner(context.Background(), testOptions())
	require.NoError(t, err)

	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() {
		presignPutObject = origPut
		presignGetObject = origGet
	})

	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("put-fail")
	}
	presignGetObject = func(*s3.PresignClient, context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("get-fail")
	}

	_, err = p.PresignPut(context.Background(), "k")
	assert.ErrorContains(t, err, "put-fail")
	_, err = p.PresignGet(context.Background(), "k")
	assert.ErrorContains(t, err, "get-fail")
}
