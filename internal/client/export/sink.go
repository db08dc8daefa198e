package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/billkeeper/internal/filex"
)

// FileSink writes reports into a local directory.
type FileSink struct {
	Dir string
}

func (s FileSink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	dir, err := filex.EnsureSubDir("", s.Dir)
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, filepath.Base(name))
	if err := filex.WriteFileAtomic(p, data); err != nil {
		return "", err
	}
	return p, nil
}

// ObjectPutter is the part of the S3 client S3Sink uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options addresses an S3-compatible bucket with static credentials.
type S3Options struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
	User     string
	Password string
}

// S3Sink uploads reports to an S3-compatible bucket.
type S3Sink struct {
	client ObjectPutter
	bucket string
	prefix string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

func NewS3Sink(ctx context.Context, o S3Options) (*S3Sink, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.User, o.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	c := s3.NewFromConfig(cfg, func(opts *s3.Options) {
		if o.Endpoint != "" {
			opts.BaseEndpoint = aws.String(o.Endpoint)
			opts.UsePathStyle = true
		}
	})
	return NewS3SinkWithClient(c, o.Bucket, o.Prefix), nil
}

func NewS3SinkWithClient(c ObjectPutter, bucket, prefix string) *S3Sink {
	return &S3Sink{client: c, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Sink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := path.Join(s.prefix, path.Base(name))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}
