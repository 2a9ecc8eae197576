// Package storage persists uploaded image files. The rest of the application
// treats stored images as opaque references; only save and remove are
// supported here.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ImageStore saves and removes uploaded images by opaque filename.
type ImageStore interface {
	// Save writes content under a unique name derived from originalName and
	// returns that name.
	Save(originalName string, content []byte) (string, error)
	// Remove deletes a previously saved image.
	Remove(name string) error
}

// DiskStore is an ImageStore backed by a local directory.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns a DiskStore.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("could not initialize image storage: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Save(originalName string, content []byte) (string, error) {
	name := uuid.NewString() + "_" + filepath.Base(originalName)
	if err := os.WriteFile(filepath.Join(s.root, name), content, 0o644); err != nil {
		return "", fmt.Errorf("could not store image: %w", err)
	}
	return name, nil
}

func (s *DiskStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Base(name)))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
