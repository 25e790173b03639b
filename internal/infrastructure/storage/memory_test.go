package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryObjectStorage(t *testing.T) {
	s := NewMemoryObjectStorage()
	require.NotNil(t, s)
	assert.Equal(t, "memory://documents", s.BaseURL)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryObjectStorage_Upload(t *testing.T) {
	s := NewMemoryObjectStorage()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		url, err := s.Upload(ctx, "loas/1/loa/a.pdf", []byte("%PDF"), "application/pdf")
		require.NoError(t, err)
		assert.Equal(t, "memory://documents/loas/1/loa/a.pdf", url)

		data, contentType, ok := s.Get("loas/1/loa/a.pdf")
		require.True(t, ok)
		assert.Equal(t, []byte("%PDF"), data)
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("empty storage key", func(t *testing.T) {
		_, err := s.Upload(ctx, "", []byte("x"), "text/plain")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.Upload(cctx, "k", []byte("x"), "text/plain")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("stored data is a copy", func(t *testing.T) {
		buf := []byte("abc")
		_, err := s.Upload(ctx, "copy", buf, "text/plain")
		require.NoError(t, err)
		buf[0] = 'z'

		data, _, _ := s.Get("copy")
		assert.Equal(t, []byte("abc"), data)
	})
}

func TestMemoryObjectStorage_Delete(t *testing.T) {
	s := NewMemoryObjectStorage()
	ctx := context.Background()

	url, err := s.Upload(ctx, "loas/2/invoice/b.pdf", []byte("x"), "application/pdf")
	require.NoError(t, err)

	t.Run("removes uploaded object", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, url))
		_, _, ok := s.Get("loas/2/invoice/b.pdf")
		assert.False(t, ok)
	})

	t.Run("missing object is not an error", func(t *testing.T) {
		assert.NoError(t, s.Delete(ctx, url))
	})

	t.Run("foreign url", func(t *testing.T) {
		err := s.Delete(ctx, "https://elsewhere.test/file.pdf")
		assert.ErrorIs(t, err, ErrForeignURL)
	})
}
