package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// imageExts maps the accepted product-image content types to the object
// key extension they are stored under.
var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageExt returns the object key extension for an accepted image content
// type, or ok=false for anything that is not a product image.
func ImageExt(contentType string) (string, bool) {
	ext, ok := imageExts[contentType]
	return ext, ok
}

// ImageKey builds the object key for an uploaded product image. Images are
// grouped per uploading user.
func ImageKey(userID, imageID, ext string) string {
	return fmt.Sprintf("%s/%s%s", userID, imageID, ext)
}

// ImageStore keeps product images in a MinIO bucket. Only image content
// types are accepted; the bucket never holds anything else.
type ImageStore struct {
	client *minio.Client
	bucket string
}

func NewImageStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*ImageStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &ImageStore{client: client, bucket: bucket}, nil
}

// Upload stores image bytes under the given object key. Non-image content
// types are refused here as well as at the route, so a miswired caller
// cannot turn the bucket into generic file storage.
func (s *ImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if _, ok := ImageExt(contentType); !ok {
		return fmt.Errorf("unsupported image type %q", contentType)
	}
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Download retrieves the image bytes and content type for an object key.
func (s *ImageStore) Download(ctx context.Context, key string) ([]byte, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", err
	}
	return data, info.ContentType, nil
}
