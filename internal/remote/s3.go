package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tetete478/Snipee-sub000/internal/logging"
	"github.com/tetete478/Snipee-sub000/internal/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// s3API is the subset of the S3 client the document store uses.
type s3API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures access to the bucket holding the shared document.
type S3Options struct {
	Region       string
	BaseEndpoint string
	User         string // MINIO_ROOT_USER
	Password     string // MINIO_ROOT_PASSWORD
	Bucket       string
	ObjectKey    string
}

// S3Client stores the shared sync document as a single object in an
// S3-compatible bucket.
type S3Client struct {
	api    s3API
	opts   S3Options
	codec  *Codec
	logger logging.Logger
}

func NewS3Client(ctx context.Context, opts S3Options, codec *Codec, logger logging.Logger) (*S3Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.User,
			opts.Password,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	api := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Client{api: api, opts: opts, codec: codec, logger: logger}, nil
}

// ResolveHandle checks that the bucket exists, creating it on first use.
func (c *S3Client) ResolveHandle(ctx context.Context) (Handle, error) {
	h := Handle{Bucket: c.opts.Bucket, Key: c.opts.ObjectKey}

	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &h.Bucket})
	if err == nil {
		return h, nil
	}

	_, err = c.api.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &h.Bucket})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return h, nil
		}
		return Handle{}, fmt.Errorf("creating bucket %s: %w", h.Bucket, err)
	}

	c.logger.Info(ctx, "created sync bucket", "bucket", h.Bucket)
	return h, nil
}

func (c *S3Client) Download(ctx context.Context, h Handle) (*models.SyncDocument, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{Bucket: &h.Bucket, Key: &h.Key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting object %s: %w", h.Key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", h.Key, err)
	}

	doc, err := c.codec.Decode(data)
	if err != nil {
		// An unreadable document is treated like a missing one so that a
		// corrupted upload never blocks the round; the next upload
		// replaces it.
		c.logger.Warn(ctx, "remote document is unreadable, treating as absent", "key", h.Key, "error", err.Error())
		return nil, nil
	}
	return doc, nil
}

func (c *S3Client) Encode(doc *models.SyncDocument) ([]byte, error) {
	return c.codec.Encode(doc)
}

func (c *S3Client) Upload(ctx context.Context, h Handle, data []byte) error {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &h.Bucket,
		Key:         &h.Key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("putting object %s: %w", h.Key, err)
	}
	return nil
}
