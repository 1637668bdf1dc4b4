package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PlaceholderLinker links to a seeded placeholder image service.
type PlaceholderLinker struct {
	BaseURL string
}

const defaultPlaceholderBase = "https://picsum.photos/seed"

func (l PlaceholderLinker) Link(_ context.Context, id, _ string) (string, error) {
	base := l.BaseURL
	if base == "" {
		base = defaultPlaceholderBase
	}
	return fmt.Sprintf("%s/%s/1024/1024", base, url.PathEscape(id)), nil
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Options configures an S3Linker.
type S3Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	LinkTTL      time.Duration
	// Now stamps the object key; defaults to time.Now.
	Now func() time.Time
}

// S3Linker returns presigned GET links for rendered images stored under
// images/<yyyy>/<mm>/<dd>/<id>.png.
type S3Linker struct {
	opts S3Options
}

func NewS3Linker(opts S3Options) *S3Linker {
	if opts.LinkTTL <= 0 {
		opts.LinkTTL = 15 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &S3Linker{opts: opts}
}

// ObjectKey is the bucket key of the image with the given id.
func (l *S3Linker) ObjectKey(id string) string {
	return fmt.Sprintf("images/%s/%s.png", l.opts.Now().UTC().Format("2006/01/02"), id)
}

func (l *S3Linker) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(l.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			l.opts.AccessKey,
			l.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if l.opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(l.opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// Link presigns a GET for the object key of id. It does not upload
// anything: the link resolves only once a provider that renders real images
// has put the object under ObjectKey(id). The simulated provider never does,
// so its S3 links point at objects that do not exist.
func (l *S3Linker) Link(ctx context.Context, id, _ string) (string, error) {
	presignClient, err := l.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 config: %w", err)
	}

	bucket := l.opts.Bucket
	key := l.ObjectKey(id)

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(l.opts.LinkTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}

	return req.URL, nil
}
