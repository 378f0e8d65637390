package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// MediaFetcher downloads an attachment from the relay
type MediaFetcher interface {
	Fetch(ctx context.Context, url, contentType string) (*Media, error)
}

// RelayMediaFetcher downloads relay-hosted media with account credentials
type RelayMediaFetcher struct {
	client   *http.Client
	username string
	password string
	maxBytes int64
	timeout  time.Duration
}

func NewRelayMediaFetcher(username, password string, maxBytes int64, timeout time.Duration) *RelayMediaFetcher {
	return &RelayMediaFetcher{
		client:   &http.Client{},
		username: username,
		password: password,
		maxBytes: maxBytes,
		timeout:  timeout,
	}
}

func (f *RelayMediaFetcher) Fetch(ctx context.Context, url, contentType string) (*Media, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build media request: %w", err)
	}
	if f.username != "" {
		req.SetBasicAuth(f.username, f.password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch media: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read media: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("media exceeds %d bytes", f.maxBytes)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		contentType = ct
	}
	return &Media{ContentType: contentType, Data: data}, nil
}

// ReceiptArchiver keeps a copy of a receipt image and returns its reference
type ReceiptArchiver interface {
	Archive(ctx context.Context, ownerID string, media *Media) (string, error)
}

// GCSReceiptArchiver writes receipts to a Cloud Storage bucket
type GCSReceiptArchiver struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

// NewGCSReceiptArchiver uses Application Default Credentials
func NewGCSReceiptArchiver(ctx context.Context, bucket string) (*GCSReceiptArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSReceiptArchiver{client: client, bucket: bucket, now: time.Now}, nil
}

func (a *GCSReceiptArchiver) Archive(ctx context.Context, ownerID string, media *Media) (string, error) {
	object := receiptObjectName(ownerID, media.ContentType, a.now())

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(object).NewWriter(ctx)
	w.ContentType = media.ContentType

	if _, err := w.Write(media.Data); err != nil {
		w.Close()
		return "", fmt.Errorf("write receipt to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize receipt upload: %w", err)
	}
	return "gs://" + a.bucket + "/" + object, nil
}

func (a *GCSReceiptArchiver) Close() error {
	return a.client.Close()
}

func receiptObjectName(ownerID, contentType string, at time.Time) string {
	ext := ".bin"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	}
	return path.Join("receipts", ownerID, at.UTC().Format("2006/01/02"), uuid.NewString()+ext)
}
