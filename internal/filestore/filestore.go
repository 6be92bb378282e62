package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStore persists uploaded files and hands back an opaque path reference.
type FileStore interface {
	Save(ctx context.Context, dir, filename string, data io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Disk stores files below a base directory on the local filesystem.
type Disk struct {
	basepath string
	log      *zap.Logger
}

// NewDisk creates a disk-backed FileStore rooted at basepath.
func NewDisk(basepath string, log *zap.Logger) *Disk {
	log.Info("creating disk file store", zap.String("basepath", basepath))
	return &Disk{basepath: basepath, log: log}
}

func (d *Disk) fullpath(ref string) string {
	return filepath.Join(d.basepath, filepath.FromSlash(ref))
}

// Save writes data under dir using a random name that keeps the original extension.
// The returned reference is relative to the base directory and always uses forward slashes.
func (d *Disk) Save(ctx context.Context, dir, filename string, data io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	ref := path.Join(dir, uuid.NewString()+ext)
	fullpath := d.fullpath(ref)

	if err := os.MkdirAll(filepath.Dir(fullpath), 0o755); err != nil {
		d.log.Error("error creating parent directory", zap.String("path", fullpath), zap.Error(err))
		return "", fmt.Errorf("error creating parent directory for %s: %w", ref, err)
	}

	file, err := os.OpenFile(fullpath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		d.log.Error("error opening file for writing", zap.String("path", fullpath), zap.Error(err))
		return "", fmt.Errorf("error opening file %s: %w", ref, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		d.log.Error("error writing to file", zap.String("path", fullpath), zap.Error(err))
		_ = os.Remove(fullpath)
		return "", fmt.Errorf("error writing to file %s: %w", ref, err)
	}

	return ref, nil
}

// Delete removes a previously saved file. Missing files are not an error.
func (d *Disk) Delete(ctx context.Context, ref string) error {
	fullpath := d.fullpath(ref)
	if err := os.Remove(fullpath); err != nil && !os.IsNotExist(err) {
		d.log.Error("error deleting file", zap.String("path", fullpath), zap.Error(err))
		return fmt.Errorf("error deleting file %s: %w", ref, err)
	}
	return nil
}
