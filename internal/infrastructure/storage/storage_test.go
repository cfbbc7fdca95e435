package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/sanad/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStoredPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"org-1/REC-2024-000042-1700000000000.pdf", "org-1/REC-2024-000042-1700000000000.pdf"},
		{"https://cdn.example.com/storage/v1/object/public/receipts/org-1/REC-1.pdf", "org-1/REC-1.pdf"},
		{"http://localhost:54321/receipts/org-1/REC-1.pdf", "org-1/REC-1.pdf"},
		{"https://cdn.example.com/files/REC-1.pdf", "https://cdn.example.com/files/REC-1.pdf"},
		{"  org-1/REC-1.pdf  ", "org-1/REC-1.pdf"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStoredPath(tt.in))
		})
	}
}

func TestCleanKey(t *testing.T) {
	key, err := cleanKey("", "org-1/REC-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "org-1/REC-1.pdf", key)

	key, err = cleanKey("/vouchers/", "org-1/REC-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "vouchers/org-1/REC-1.pdf", key)

	for _, bad := range []string{"", "/etc/passwd", "../secret.pdf", "org-1/../../x.pdf", "org-1//x.pdf", "./x.pdf", `org-1\x.pdf`} {
		_, err := cleanKey("", bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func TestNew(t *testing.T) {
	t.Run("filesystem", func(t *testing.T) {
		store, err := New(context.Background(), config.StorageConfig{
			Driver:         DriverFilesystem,
			FilesystemRoot: t.TempDir(),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, DriverFilesystem, store.Driver())
	})

	t.Run("s3 requires bucket", func(t *testing.T) {
		_, err := New(context.Background(), config.StorageConfig{Driver: DriverS3}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("gcs requires bucket", func(t *testing.T) {
		_, err := New(context.Background(), config.StorageConfig{Driver: DriverGCS}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"}, nil)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrInvalidKey))
		assert.Contains(t, err.Error(), `unknown storage driver "ftp"`)
	})
}
