package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 stores blobs under users/{id}/{kind}.json in a single bucket.
type S3 struct {
	client *s3.Client
	bucket string
}

var _ Store = (*S3)(nil)

// NewS3 creates an S3 blob store using the default AWS credential chain.
func NewS3(ctx context.Context, bucket, region string) (*S3, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket name required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &S3{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// NewS3WithClient wraps an existing client (for tests against localstack
// or custom endpoints).
func NewS3WithClient(client *s3.Client, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

func key(userID string, kind Kind) string {
	return fmt.Sprintf("users/%s/%s.json", userID, kind)
}

func prefix(userID string) string {
	return fmt.Sprintf("users/%s/", userID)
}

func (s *S3) Save(ctx context.Context, userID string, kind Kind, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key(userID, kind)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("save %s for user %s: %w", kind, userID, err)
	}
	slog.Debug("saved blob", "user", userID, "kind", kind, "bytes", len(data))
	return nil
}

func (s *S3) Load(ctx context.Context, userID string, kind Kind) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key(userID, kind)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			// First-time user: nothing saved yet.
			return nil, fmt.Errorf("%w: %s for user %s", ErrNotFound, kind, userID)
		}
		return nil, fmt.Errorf("load %s for user %s: %w", kind, userID, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s for user %s: %w", kind, userID, err)
	}
	return data, nil
}

func (s *S3) Exists(ctx context.Context, userID string) (map[Kind]bool, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix(userID)),
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs for user %s: %w", userID, err)
	}

	found := make(map[string]bool, len(out.Contents))
	for _, obj := range out.Contents {
		found[aws.ToString(obj.Key)] = true
	}

	status := make(map[Kind]bool, len(Kinds))
	for _, kind := range Kinds {
		status[kind] = found[key(userID, kind)]
	}
	return status, nil
}

func (s *S3) DeleteAll(ctx context.Context, userID string) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix(userID)),
	})

	deleted := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list blobs for user %s: %w", userID, err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}

		_, err = s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects},
		})
		if err != nil {
			return fmt.Errorf("delete blobs for user %s: %w", userID, err)
		}
		deleted += len(objects)
	}

	slog.Info("deleted user blobs", "user", userID, "objects", deleted)
	return nil
}
