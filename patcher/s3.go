package patcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client reads patch archives from an S3-compatible mirror.
type S3Client struct {
	client *s3.Client
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
}

func NewS3Client(cfg S3Config) *S3Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: true,
		// Failures surface once; the caller decides whether to run again.
		Retryer: aws.NopRetryer{},
	}
	if endpoint := cfg.Endpoint; endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
	}
	if cfg.AccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	return &S3Client{client: s3.New(opts)}
}

// Open starts streaming the object. The returned length is UnknownLength when
// the mirror does not report one.
func (s *S3Client) Open(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		rawURL := "s3://" + bucket + "/" + key
		var status interface{ HTTPStatusCode() int }
		if errors.As(err, &status) && status.HTTPStatusCode() != 0 {
			return nil, 0, &HTTPStatusError{URL: rawURL, StatusCode: status.HTTPStatusCode()}
		}
		return nil, 0, &TransferError{URL: rawURL, Err: err}
	}

	length := int64(UnknownLength)
	if output.ContentLength != nil && *output.ContentLength >= 0 {
		length = *output.ContentLength
	}
	return output.Body, length, nil
}

func parseS3URL(u *url.URL) (bucket, key string, err error) {
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url %q must be s3://bucket/key", u.String())
	}
	return bucket, key, nil
}
