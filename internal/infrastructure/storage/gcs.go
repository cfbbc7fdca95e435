package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	gcs "cloud.google.com/go/storage"
	"github.com/sanad/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GCSStore stores PDFs in a Google Cloud Storage bucket
type GCSStore struct {
	client *gcs.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewGCSStore creates a GCSStore. Credentials come from cfg.CredentialsFile
// or Application Default Credentials. A non-empty cfg.Endpoint targets an
// emulator without authentication.
func NewGCSStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.Endpoint != "":
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, logger: logger}, nil
}

// Driver implements PDFStore
func (s *GCSStore) Driver() string { return DriverGCS }

// Put uploads data. Without Overwrite the write is conditioned on the
// object not existing yet.
func (s *GCSStore) Put(ctx context.Context, key string, data []byte, opts PutOptions) error {
	objectKey, err := cleanKey(s.prefix, key)
	if err != nil {
		return err
	}

	obj := s.client.Bucket(s.bucket).Object(objectKey)
	if !opts.Overwrite {
		obj = obj.If(gcs.Conditions{DoesNotExist: true})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := obj.NewWriter(ctx)
	w.ContentType = PDFContentType
	if _, err := w.Write(data); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", objectKey, mapGCSError(err))
	}
	if err := w.Close(); err != nil {
		err = mapGCSError(err)
		if errors.Is(err, ErrObjectExists) {
			return fmt.Errorf("%w: %s", ErrObjectExists, objectKey)
		}
		return fmt.Errorf("finalize upload %s: %w", objectKey, err)
	}

	s.logger.Debug("PDF uploaded",
		zap.String("key", objectKey),
		zap.Int("size", len(data)),
		zap.Bool("overwrite", opts.Overwrite),
	)
	return nil
}

// Get downloads the object stored under key
func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	objectKey, err := cleanKey(s.prefix, key)
	if err != nil {
		return nil, err
	}

	r, err := s.client.Bucket(s.bucket).Object(objectKey).NewReader(ctx)
	if err != nil {
		err = mapGCSError(err)
		if errors.Is(err, ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, objectKey)
		}
		return nil, fmt.Errorf("open GCS object reader %s: %w", objectKey, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object %s: %w", objectKey, err)
	}
	return data, nil
}

// Close releases the client
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// mapGCSError translates failed preconditions and missing objects into the
// package sentinels. Other errors pass through.
func mapGCSError(err error) error {
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusPreconditionFailed:
			return ErrObjectExists
		case http.StatusNotFound:
			return ErrObjectNotFound
		}
	}
	return err
}
