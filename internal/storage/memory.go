package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stashdrive/service/internal/errs"
)

// MemoryStorage keeps objects in process memory. Listing is sorted by key.
type MemoryStorage struct {
	mu         sync.RWMutex
	objects    map[string]*memObject
	publicBase string
	now        func() time.Time
}

type memObject struct {
	data []byte
	info Object
}

// NewMemoryStorage returns an empty in-memory store whose public URLs are
// rooted at publicBase.
func NewMemoryStorage(publicBase string) *MemoryStorage {
	return &MemoryStorage{
		objects:    make(map[string]*memObject),
		publicBase: publicBase,
		now:        time.Now,
	}
}

// List returns objects under prefix in lexicographic key order.
func (s *MemoryStorage) List(ctx context.Context, prefix string) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindTimeout, "list objects", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Object, 0, len(s.objects))
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, obj.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Upload reads reader fully and stores it under key, replacing any previous object.
func (s *MemoryStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if key == "" {
		return errs.New(errs.ErrKindInvalidInput, "object key is empty")
	}

	buf := &bytes.Buffer{}
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(buf, reader); err != nil {
		return errs.Wrap(errs.ErrKindOperationFailed, fmt.Sprintf("read object %q", key), err)
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.ErrKindTimeout, fmt.Sprintf("put object %q", key), err)
	}

	sum := md5.Sum(buf.Bytes())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = &memObject{
		data: buf.Bytes(),
		info: Object{
			Key:          key,
			Size:         int64(buf.Len()),
			ContentType:  contentType,
			ETag:         hex.EncodeToString(sum[:]),
			LastModified: s.now().UTC(),
		},
	}
	return nil
}

// Delete removes key. Deleting a missing key is a NotFound error.
func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return errs.New(errs.ErrKindNotFound, fmt.Sprintf("object %q not found", key))
	}
	delete(s.objects, key)
	return nil
}

// Rename moves oldKey to newKey, overwriting newKey if it exists.
func (s *MemoryStorage) Rename(ctx context.Context, oldKey, newKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[oldKey]
	if !ok {
		return errs.New(errs.ErrKindNotFound, fmt.Sprintf("object %q not found", oldKey))
	}
	if oldKey == newKey {
		return nil
	}
	obj.info.Key = newKey
	obj.info.LastModified = s.now().UTC()
	s.objects[newKey] = obj
	delete(s.objects, oldKey)
	return nil
}

// PublicURL returns publicBase + "/" + key.
func (s *MemoryStorage) PublicURL(key string) string {
	return publicURL(s.publicBase, key)
}

// Content returns a copy of the bytes stored at key.
func (s *MemoryStorage) Content(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), obj.data...), true
}
