// Package archive copies checklist rows to object storage before retention cleanup
// deletes them.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mapletrack/internal/store"
)

// Archiver stores rows that are about to expire.
type Archiver interface {
	Archive(ctx context.Context, rows []store.Row) error
}

// Nop discards rows. Used when no archive bucket is configured.
type Nop struct{}

func (Nop) Archive(context.Context, []store.Row) error { return nil }

// Config describes the S3-compatible endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// Record is the JSON document written per archived row.
type Record struct {
	UserID     string          `json:"userId"`
	Category   store.Category  `json:"category"`
	PeriodKey  string          `json:"periodKey"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	ArchivedAt time.Time       `json:"archivedAt"`
	Data       json.RawMessage `json:"data"`
}

type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioArchiver writes one object per row under <user>/<category>/<periodKey>.json.
type MinioArchiver struct {
	client objectPutter
	bucket string
	now    func() time.Time
}

// NewMinioArchiver connects to the endpoint and creates the bucket if it is missing.
func NewMinioArchiver(ctx context.Context, cfg Config) (*MinioArchiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check archive bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create archive bucket: %w", err)
		}
	}

	return &MinioArchiver{client: client, bucket: cfg.Bucket, now: time.Now}, nil
}

func (a *MinioArchiver) Archive(ctx context.Context, rows []store.Row) error {
	for _, row := range rows {
		body, err := json.Marshal(Record{
			UserID:     row.UserID,
			Category:   row.Category,
			PeriodKey:  row.PeriodKey,
			UpdatedAt:  row.UpdatedAt.UTC(),
			ArchivedAt: a.now().UTC(),
			Data:       row.Data,
		})
		if err != nil {
			return fmt.Errorf("marshal archive record: %w", err)
		}

		name := ObjectName(row)
		_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
			ContentType: "application/json",
		})
		if err != nil {
			return fmt.Errorf("put archive object %s: %w", name, err)
		}
	}
	return nil
}

// ObjectName is the object key for row. The user id is path-escaped.
func ObjectName(row store.Row) string {
	return path.Join(url.PathEscape(row.UserID), string(row.Category), row.PeriodKey+".json")
}
