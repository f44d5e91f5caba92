package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Uploader writes receipt files and shipping photos to a GCS bucket and
// returns their public URLs.
type Uploader struct {
	client *gcs.Client
	bucket string
}

func NewUploader(ctx context.Context, bucket, credentialsFile string) (*Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is not set")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Uploader{client: client, bucket: bucket}, nil
}

// Upload streams r into <prefix>/<uuid>-<name> and returns the object's
// public URL. Callers own the lifetime of r.
func (u *Uploader) Upload(ctx context.Context, prefix, name, contentType string, r io.Reader) (string, error) {
	object := fmt.Sprintf("%s/%s-%s", prefix, uuid.NewString(), name)
	w := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", object, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, object), nil
}

func (u *Uploader) Close() error {
	return u.client.Close()
}
