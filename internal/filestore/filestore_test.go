package filestore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/studysprint/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(context.Background(), config.FileStorage{
		S3BaseEndpoint: "http://localhost:9000",
		S3Region:       "us-east-1",
		S3Bucket:       "studysprint-pdfs",
		S3AccessKey:    "minioadmin",
		S3SecretKey:    "minioadmin",
		PresignTTL:     15 * time.Minute,
	})
	require.NoError(t, err)
	return store
}

func TestPresignedPutURL(t *testing.T) {
	store := newTestStore(t)

	key, url, err := store.PresignedPutURL(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "users/"), "storage key should start with users/, got %s", key)
	assert.Contains(t, url, "/studysprint-pdfs/")
	assert.Contains(t, url, key)
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestPresignedGetURL(t *testing.T) {
	store := newTestStore(t)

	key := NewStorageKey()
	url, err := store.PresignedGetURL(context.Background(), key)
	require.NoError(t, err)

	assert.Contains(t, url, "/studysprint-pdfs/")
	assert.Contains(t, url, key)
	assert.Contains(t, url, "X-Amz-Expires=900")
}

func TestNewStorageKeyUnique(t *testing.T) {
	assert.NotEqual(t, NewStorageKey(), NewStorageKey())
}
