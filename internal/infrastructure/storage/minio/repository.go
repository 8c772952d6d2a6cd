package minio

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")
)

// PageStore reads and writes published site files by object key.
type PageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (*UploadResult, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Stat(ctx context.Context, key string) (*ObjectMetadata, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string, maxKeys int) ([]ObjectMetadata, error)
}

type UploadResult struct {
	Key        string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

type ObjectMetadata struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

type minioRepository struct {
	client *MinIOClient
	logger logging.Logger
	now    func() time.Time
}

// NewPageStore returns a PageStore writing into the client's bucket.
func NewPageStore(client *MinIOClient, log logging.Logger) PageStore {
	return &minioRepository{client: client, logger: log, now: time.Now}
}

func (r *minioRepository) Put(ctx context.Context, key string, data []byte, contentType string) (*UploadResult, error) {
	if key == "" {
		return nil, ErrInvalidRequest.WithDetail("empty object key")
	}
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	opts := minio.PutObjectOptions{ContentType: contentType, CacheControl: "public, max-age=86400"}

	info, err := r.client.api.PutObject(ctx, r.client.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "upload failed").WithDetail(key)
	}
	return &UploadResult{Key: key, ETag: info.ETag, Size: info.Size, UploadedAt: r.now()}, nil
}

func (r *minioRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	obj, err := r.client.api.GetObject(ctx, r.client.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, r.mapError(err, key, "download failed")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, r.mapError(err, key, "download failed")
	}
	return data, nil
}

func (r *minioRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.Stat(ctx, key)
	if errors.IsCode(err, errors.ErrCodeNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *minioRepository) Stat(ctx context.Context, key string) (*ObjectMetadata, error) {
	info, err := r.client.api.StatObject(ctx, r.client.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, r.mapError(err, key, "stat failed")
	}
	return &ObjectMetadata{
		Key:          key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

func (r *minioRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.api.RemoveObject(ctx, r.client.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return r.mapError(err, key, "delete failed")
	}
	return nil
}

func (r *minioRepository) List(ctx context.Context, prefix string, maxKeys int) ([]ObjectMetadata, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := r.client.api.ListObjects(ctx, r.client.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	var out []ObjectMetadata
	for obj := range ch {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorageError, "list failed").WithDetail(prefix)
		}
		out = append(out, ObjectMetadata{Key: obj.Key, Size: obj.Size, ETag: obj.ETag, LastModified: obj.LastModified})
		if maxKeys > 0 && len(out) >= maxKeys {
			break
		}
	}
	return out, nil
}

func (r *minioRepository) mapError(err error, key, msg string) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrObjectNotFound.WithDetail(key)
	}
	return errors.Wrap(err, errors.ErrCodeStorageError, msg).WithDetail(key)
}
