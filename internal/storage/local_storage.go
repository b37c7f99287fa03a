package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/pkg/errors"
)

// LocalImageStore keeps images on disk, for development without S3
type LocalImageStore struct {
	dir     string
	baseURL string
}

func NewLocalImageStore(dir, baseURL string) *LocalImageStore {
	return &LocalImageStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalImageStore) Upload(ctx context.Context, folder, image string) (*model.Image, error) {
	decoded, err := DecodeImage(image)
	if err != nil {
		return nil, err
	}

	key := path.Join(folder, uuid.New().String()+decoded.Extension)
	target, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, errors.Wrap(err, "create image folder")
	}
	if err := os.WriteFile(target, decoded.Data, 0o644); err != nil {
		return nil, errors.Wrap(err, "write image")
	}

	return &model.Image{PublicID: key, URL: s.baseURL + "/" + key}, nil
}

// Delete removes the file; a missing file is not an error
func (s *LocalImageStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	target, err := s.resolve(publicID)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete image")
	}
	return nil
}

func (s *LocalImageStore) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", errors.Errorf("invalid image key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}
