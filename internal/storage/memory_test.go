package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashdrive/service/internal/errs"
)

func keysOf(objs []Object) []string {
	keys := make([]string, len(objs))
	for i, o := range objs {
		keys[i] = o.Key
	}
	return keys
}

func TestMemoryStorage_UploadAndList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage("https://storage.googleapis.com/bucket")

	require.NoError(t, s.Upload(ctx, "b.txt", strings.NewReader("bb"), 2, "text/plain"))
	require.NoError(t, s.Upload(ctx, "a/c.txt", strings.NewReader("ccc"), -1, ""))
	require.NoError(t, s.Upload(ctx, "a/", strings.NewReader(""), 0, ""))

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/", "a/c.txt", "b.txt"}, keysOf(all))

	under, err := s.List(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/", "a/c.txt"}, keysOf(under))

	assert.Equal(t, int64(3), all[1].Size)
	assert.Equal(t, "text/plain", all[2].ContentType)
	assert.NotEmpty(t, all[2].ETag)
	assert.True(t, all[0].IsFolderMarker())
	assert.False(t, all[1].IsFolderMarker())

	data, ok := s.Content("a/c.txt")
	require.True(t, ok)
	assert.Equal(t, "ccc", string(data))
}

func TestMemoryStorage_UploadOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage("")

	require.NoError(t, s.Upload(ctx, "k", strings.NewReader("one"), 3, ""))
	require.NoError(t, s.Upload(ctx, "k", strings.NewReader("two!"), 4, ""))

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(4), all[0].Size)
}

func TestMemoryStorage_UploadEmptyKey(t *testing.T) {
	err := NewMemoryStorage("").Upload(context.Background(), "", strings.NewReader("x"), 1, "")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestMemoryStorage_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage("")
	require.NoError(t, s.Upload(ctx, "gone.txt", strings.NewReader("x"), 1, ""))

	require.NoError(t, s.Delete(ctx, "gone.txt"))
	assert.True(t, errs.IsNotFound(s.Delete(ctx, "gone.txt")))

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryStorage_Rename(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage("")
	require.NoError(t, s.Upload(ctx, "a/old.txt", strings.NewReader("payload"), 7, ""))

	require.NoError(t, s.Rename(ctx, "a/old.txt", "b/old.txt"))

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"b/old.txt"}, keysOf(all))
	data, ok := s.Content("b/old.txt")
	require.True(t, ok)
	assert.Equal(t, "payload", string(data))

	assert.True(t, errs.IsNotFound(s.Rename(ctx, "a/old.txt", "c/old.txt")))
}

func TestMemoryStorage_ListCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStorage("").List(ctx, "")
	assert.True(t, errs.IsTimeout(err))
}

func TestPublicURL(t *testing.T) {
	s := NewMemoryStorage("https://storage.googleapis.com/bucket/")
	assert.Equal(t, "https://storage.googleapis.com/bucket/docs/report.pdf", s.PublicURL("docs/report.pdf"))
	assert.Equal(t, "https://storage.googleapis.com/bucket/mix", s.PublicURL("/mix"))
}
