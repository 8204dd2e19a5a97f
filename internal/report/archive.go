package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/Spok95/stock-intake/internal/infra/objstore"
	"github.com/minio/minio-go/v7"
)

// ContentTypeXLSX MIME-тип выгрузок.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Archiver складывает выгруженные xlsx в бакет (reports/<file>).
type Archiver struct {
	client objstore.Client
	bucket string
	log    *slog.Logger
}

func NewArchiver(client objstore.Client, bucket string, log *slog.Logger) *Archiver {
	return &Archiver{client: client, bucket: bucket, log: log}
}

// EnsureBucket создаёт бакет, если его нет.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	ok, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists: %w", err)
	}
	if ok {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

// Archive загружает файл; ключ — reports/<store>/<fileName>.
func (a *Archiver) Archive(ctx context.Context, store, fileName string, data []byte) (string, error) {
	key := fmt.Sprintf("reports/%s/%s", store, fileName)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: ContentTypeXLSX})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	a.log.Info("report archived", "bucket", a.bucket, "key", key, "size", len(data))
	return key, nil
}
