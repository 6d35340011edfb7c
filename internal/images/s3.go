package images

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures NewS3.
type S3Options struct {
	Bucket        string
	Region        string // "auto" works for R2
	Endpoint      string // S3-compatible endpoint, empty for AWS
	AccessKey     string
	SecretKey     string
	PublicBaseURL string // ex: https://cdn.example.com, defaults to <endpoint>/<bucket>
	Prefix        string // key prefix, default "gifts"
}

// S3 uploads gift images to an object storage bucket.
type S3 struct {
	client     ObjectPutter
	bucket     string
	publicBase string
	prefix     string
}

// NewS3 builds the client from static credentials.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	if opts.Bucket == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("s3 image storage not configured (bucket, access key, secret key)")
	}

	region := opts.Region
	if region == "" {
		region = "auto"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3WithClient(client, opts), nil
}

// NewS3WithClient wraps an existing client.
func NewS3WithClient(client ObjectPutter, opts S3Options) *S3 {
	base := strings.TrimRight(opts.PublicBaseURL, "/")
	if base == "" {
		switch {
		case opts.Endpoint != "":
			base = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
		default:
			base = fmt.Sprintf("https://%s.s3.amazonaws.com", opts.Bucket)
		}
	}

	prefix := strings.Trim(opts.Prefix, "/")
	if prefix == "" {
		prefix = "gifts"
	}

	return &S3{
		client:     client,
		bucket:     opts.Bucket,
		publicBase: base,
		prefix:     prefix,
	}
}

func (s *S3) Upload(ctx context.Context, img Image) (string, error) {
	key := fmt.Sprintf("%s/%s%s", s.prefix, uuid.NewString(), img.Ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.MIME),
	})
	if err != nil {
		return "", fmt.Errorf("upload to S3: %w", err)
	}

	return s.publicBase + "/" + key, nil
}
