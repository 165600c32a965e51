// Package blobstore is the server's gateway to S3-compatible object storage.
// It never moves document bytes itself: it hands out presigned URLs and
// probes for object existence.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
)

// Options configure a Gateway.
type Options struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Bucket    string

	// SlotTTL is how long a presigned PUT stays valid.
	SlotTTL time.Duration
	// FetchTTL is how long a presigned GET stays valid.
	FetchTTL time.Duration
}

// Slot is a one-time upload destination.
type Slot struct {
	URL           string
	StorageHandle string
	ExpiresAt     time.Time
}

// Gateway presigns object URLs for one bucket.
type Gateway struct {
	client  *s3.Client
	presign *s3.PresignClient
	opts    Options
	now     func() time.Time
}

// New builds the S3 client once. Path-style addressing is used so MinIO and
// other self-hosted endpoints work without wildcard DNS.
func New(ctx context.Context, opts Options) (*Gateway, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Gateway{
		client:  client,
		presign: newS3PresignClient(client),
		opts:    opts,
		now:     time.Now,
	}, nil
}

// NewStorageHandle returns a fresh, unguessable object key.
func NewStorageHandle(t time.Time) string {
	return fmt.Sprintf("users/%d/%02d/%02d/%s", t.Year(), t.Month(), t.Day(), uuid.New())
}

// AllocateUploadSlot presigns a PUT for a brand-new handle. If-None-Match is
// part of the signature, so the store accepts only the first object at that
// key; the URL stops working after SlotTTL.
func (g *Gateway) AllocateUploadSlot(ctx context.Context) (*Slot, error) {
	now := g.now()
	key := NewStorageHandle(now)

	req, err := presignPutObject(g.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.opts.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String("application/octet-stream"),
		IfNoneMatch: aws.String("*"),
	}, s3.WithPresignExpires(g.opts.SlotTTL))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &Slot{URL: req.URL, StorageHandle: key, ExpiresAt: now.Add(g.opts.SlotTTL)}, nil
}

// Resolve presigns a short-lived GET for storageHandle. Callers must have
// authorized the requester first.
func (g *Gateway) Resolve(ctx context.Context, storageHandle string) (string, error) {
	req, err := presignGetObject(g.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.opts.Bucket),
		Key:    aws.String(storageHandle),
	}, s3.WithPresignExpires(g.opts.FetchTTL))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// Exists reports whether an object is stored under storageHandle.
func (g *Gateway) Exists(ctx context.Context, storageHandle string) (bool, error) {
	_, err := headObject(g.client, ctx, &s3.HeadObjectInput{
		Bucket: aws.String(g.opts.Bucket),
		Key:    aws.String(storageHandle),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head object: %w", err)
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", http.StatusText(http.StatusNotFound):
			return true
		}
	}
	return false
}
