// Package files implements the folder/file facade over object storage.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/stashdrive/service/internal/errs"
	"github.com/stashdrive/service/internal/hierarchy"
	"github.com/stashdrive/service/internal/storage"
)

// maxParallel bounds the per-request fan-out of folder uploads and deletes.
const maxParallel = 16

// folderContentType is stored on zero-length folder marker objects.
const folderContentType = "application/x-directory"

// Validation failures. Handlers answer these with 400 and the error message.
var (
	ErrFolderNameRequired = errs.New(errs.ErrKindInvalidInput, "Folder name is required")
	ErrNoFile             = errs.New(errs.ErrKindInvalidInput, "No file uploaded")
	ErrNoFiles            = errs.New(errs.ErrKindInvalidInput, "No files uploaded")
	ErrPathRequired       = errs.New(errs.ErrKindInvalidInput, "Item path is required")
	ErrMoveArgsRequired   = errs.New(errs.ErrKindInvalidInput, "File name and target folder are required")
	ErrQueryRequired      = errs.New(errs.ErrKindInvalidInput, "Search query is required")
)

// ErrItemNotFound is returned by DeleteItem when nothing matches the path.
var ErrItemNotFound = errs.New(errs.ErrKindNotFound, "Item not found")

var validationErrors = []*errs.Error{
	ErrFolderNameRequired, ErrNoFile, ErrNoFiles, ErrPathRequired, ErrMoveArgsRequired, ErrQueryRequired,
}

// IsValidation reports whether err is one of the request validation errors.
func IsValidation(err error) bool {
	_, ok := validationMessage(err)
	return ok
}

func validationMessage(err error) (string, bool) {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return v.Message, true
		}
	}
	return "", false
}

// File is one upload of a folder upload.
type File struct {
	Name        string
	Content     io.Reader
	Size        int64
	ContentType string
}

// DeleteResult describes what DeleteItem removed.
type DeleteResult struct {
	Folder  bool
	Deleted int
}

// SearchResult is one match returned by Search.
type SearchResult struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// Service contains the facade operations. It keeps no state of its own.
type Service struct {
	store storage.Storage
}

// NewService creates a Service delegating to store.
func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// CreateFolder writes the zero-length marker object "<folderName>/" and
// returns its key. Creating an existing folder overwrites the marker.
func (s *Service) CreateFolder(ctx context.Context, folderName string) (string, error) {
	name := normalize(folderName)
	if name == "" {
		return "", ErrFolderNameRequired
	}

	folderPath := name + storage.Separator
	if err := s.store.Upload(ctx, folderPath, strings.NewReader(""), 0, folderContentType); err != nil {
		return "", fmt.Errorf("create folder %q: %w", folderPath, err)
	}
	return folderPath, nil
}

// UploadFile streams content to key fileName and returns the object's public URL.
func (s *Service) UploadFile(ctx context.Context, f File) (string, error) {
	if f.Name == "" || f.Content == nil {
		return "", ErrNoFile
	}
	if err := s.store.Upload(ctx, f.Name, f.Content, f.Size, f.ContentType); err != nil {
		return "", fmt.Errorf("upload file %q: %w", f.Name, err)
	}
	return s.store.PublicURL(f.Name), nil
}

// UploadFolder writes every file under "<folderName>/" concurrently and
// waits for all of them. The first failure is returned; writes that already
// succeeded are kept.
func (s *Service) UploadFolder(ctx context.Context, folderName string, files []File) (string, error) {
	if len(files) == 0 {
		return "", ErrNoFiles
	}
	name := normalize(folderName)
	if name == "" {
		return "", ErrFolderNameRequired
	}

	var g errgroup.Group
	g.SetLimit(maxParallel)
	for _, f := range files {
		key := name + storage.Separator + f.Name
		g.Go(func() error {
			if err := s.store.Upload(ctx, key, f.Content, f.Size, f.ContentType); err != nil {
				return fmt.Errorf("upload %q: %w", key, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return s.store.PublicURL(name), nil
}

// ListHierarchy lists the whole bucket and folds it into a tree.
func (s *Service) ListHierarchy(ctx context.Context) (hierarchy.Result, error) {
	objs, err := s.store.List(ctx, "")
	if err != nil {
		return hierarchy.Result{}, fmt.Errorf("list objects: %w", err)
	}
	return hierarchy.Build(objs), nil
}

// DeleteItem removes a file, or every object under a folder prefix.
//
// A single listed object whose key equals the normalized path is deleted as
// a file. Any other non-empty match set is deleted concurrently as a folder.
// The match is a plain prefix match, so "doc" also removes "docs/a.txt".
func (s *Service) DeleteItem(ctx context.Context, itemPath string) (DeleteResult, error) {
	normalized := normalize(itemPath)
	if normalized == "" {
		return DeleteResult{}, ErrPathRequired
	}
	log := zerolog.Ctx(ctx)

	objs, err := s.store.List(ctx, normalized)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("list %q: %w", normalized, err)
	}
	log.Debug().Str("path", normalized).Int("matches", len(objs)).Msg("delete item")
	if len(objs) == 0 {
		return DeleteResult{}, ErrItemNotFound
	}

	if len(objs) == 1 && objs[0].Key == normalized {
		if err := s.store.Delete(ctx, normalized); err != nil {
			return DeleteResult{}, fmt.Errorf("delete %q: %w", normalized, err)
		}
		return DeleteResult{Folder: false, Deleted: 1}, nil
	}

	var g errgroup.Group
	g.SetLimit(maxParallel)
	for _, obj := range objs {
		key := obj.Key
		g.Go(func() error {
			log.Debug().Str("key", key).Msg("deleting object")
			if err := s.store.Delete(ctx, key); err != nil {
				return fmt.Errorf("delete %q: %w", key, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Folder: true, Deleted: len(objs)}, nil
}

// MoveFile renames fileName to "<targetFolder>/<base name of fileName>" and
// returns the new key. Only the single object is moved.
func (s *Service) MoveFile(ctx context.Context, fileName, targetFolder string) (string, error) {
	if fileName == "" || targetFolder == "" {
		return "", ErrMoveArgsRequired
	}

	newKey := strings.TrimPrefix(path.Join(targetFolder, path.Base(fileName)), storage.Separator)
	if err := s.store.Rename(ctx, fileName, newKey); err != nil {
		return "", fmt.Errorf("move %q to %q: %w", fileName, newKey, err)
	}
	return newKey, nil
}

// Search returns every key containing query, ignoring case, in listing order.
func (s *Service) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if query == "" {
		return nil, ErrQueryRequired
	}

	objs, err := s.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	needle := strings.ToLower(query)
	results := make([]SearchResult, 0)
	for _, obj := range objs {
		if !strings.Contains(strings.ToLower(obj.Key), needle) {
			continue
		}
		kind := string(hierarchy.KindFile)
		if obj.IsFolderMarker() {
			kind = string(hierarchy.KindFolder)
		}
		results = append(results, SearchResult{Name: obj.Key, Type: kind, Path: obj.Key})
	}
	return results, nil
}

// normalize strips leading and trailing separators.
func normalize(p string) string {
	return strings.Trim(p, storage.Separator)
}
