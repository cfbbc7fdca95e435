// Package storage persists rendered voucher PDFs in object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/sanad/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Drivers accepted by New
const (
	DriverS3         = "s3"
	DriverGCS        = "gcs"
	DriverFilesystem = "filesystem"
)

// PDFContentType is stored with every uploaded object
const PDFContentType = "application/pdf"

var (
	// ErrObjectExists is returned by Put without Overwrite when the key is taken
	ErrObjectExists = errors.New("storage: object already exists")
	// ErrObjectNotFound is returned by Get for a missing key
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrInvalidKey is returned for empty, absolute or escaping keys
	ErrInvalidKey = errors.New("storage: invalid object key")
)

// PutOptions controls a single upload
type PutOptions struct {
	// Overwrite replaces an existing object. When false an existing object
	// is left untouched and ErrObjectExists is returned.
	Overwrite bool
}

// PDFStore is the object store holding rendered vouchers
type PDFStore interface {
	Put(ctx context.Context, key string, data []byte, opts PutOptions) error
	Get(ctx context.Context, key string) ([]byte, error)
	Driver() string
}

// New builds the store selected by cfg.Driver
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (PDFStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("storage").With(zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case DriverS3:
		return NewS3Store(ctx, cfg, WithLogger(logger))
	case DriverGCS:
		return NewGCSStore(ctx, cfg, logger)
	case DriverFilesystem, "":
		return NewFileStore(cfg.FilesystemRoot)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NormalizeStoredPath turns a stored PDF pointer into an object key.
// Older rows hold the full public URL of the object; the key is the part
// after the "/receipts/" bucket segment.
func NormalizeStoredPath(stored string) string {
	stored = strings.TrimSpace(stored)
	if !strings.HasPrefix(stored, "http://") && !strings.HasPrefix(stored, "https://") {
		return stored
	}
	if _, after, found := strings.Cut(stored, "/receipts/"); found {
		return after
	}
	return stored
}

// cleanKey validates key and joins it under prefix
func cleanKey(prefix, key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." || segment == "." || segment == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	if prefix == "" {
		return key, nil
	}
	return path.Join(strings.Trim(prefix, "/"), key), nil
}
